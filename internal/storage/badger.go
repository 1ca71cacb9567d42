package storage

import (
	"bytes"
	"fmt"

	"github.com/aleksaelezovic/metis/pkg/store"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/golang/glog"
)

// Options configures the badger backend.
type Options struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in memory and discards it on Close.
	InMemory bool
}

// BadgerStorage implements Storage using BadgerDB
type BadgerStorage struct {
	db *badger.DB
}

// Open creates a BadgerDB-backed storage
func Open(o Options) (*BadgerStorage, error) {
	var opts badger.Options
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if o.Path == "" {
			return nil, fmt.Errorf("badger: a path is required for on-disk storage")
		}
		opts = badger.DefaultOptions(o.Path)
	}
	opts = opts.WithLogger(glogLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	return &BadgerStorage{db: db}, nil
}

// NewBadgerStorage opens an on-disk storage at path
func NewBadgerStorage(path string) (*BadgerStorage, error) {
	return Open(Options{Path: path})
}

// Begin starts a new transaction
func (s *BadgerStorage) Begin(writable bool) (store.Transaction, error) {
	txn := s.db.NewTransaction(writable)
	return &BadgerTransaction{
		txn:      txn,
		writable: writable,
	}, nil
}

// Close closes the storage
func (s *BadgerStorage) Close() error {
	return s.db.Close()
}

// Sync flushes writes to disk
func (s *BadgerStorage) Sync() error {
	if s.db.Opts().InMemory {
		return nil
	}
	return s.db.Sync()
}

// glogLogger routes badger's log output through glog.
type glogLogger struct{}

func (glogLogger) Errorf(format string, args ...interface{}) {
	glog.ErrorDepth(1, fmt.Sprintf("badger: "+format, args...))
}

func (glogLogger) Warningf(format string, args ...interface{}) {
	glog.WarningDepth(1, fmt.Sprintf("badger: "+format, args...))
}

func (glogLogger) Infof(format string, args ...interface{}) {
	if glog.V(1) {
		glog.InfoDepth(1, fmt.Sprintf("badger: "+format, args...))
	}
}

func (glogLogger) Debugf(format string, args ...interface{}) {
	if glog.V(3) {
		glog.InfoDepth(1, fmt.Sprintf("badger: "+format, args...))
	}
}

// BadgerTransaction implements Transaction using BadgerDB
type BadgerTransaction struct {
	txn      *badger.Txn
	writable bool
}

// Get retrieves a value by key
func (t *BadgerTransaction) Get(table store.Table, key []byte) ([]byte, error) {
	prefixedKey := store.PrefixKey(table, key)
	item, err := t.txn.Get(prefixedKey)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return item.ValueCopy(nil)
}

// Set stores a key-value pair
func (t *BadgerTransaction) Set(table store.Table, key, value []byte) error {
	if !t.writable {
		return store.ErrTransactionRO
	}

	prefixedKey := store.PrefixKey(table, key)
	return t.txn.Set(prefixedKey, value)
}

// Delete removes a key
func (t *BadgerTransaction) Delete(table store.Table, key []byte) error {
	if !t.writable {
		return store.ErrTransactionRO
	}

	prefixedKey := store.PrefixKey(table, key)
	return t.txn.Delete(prefixedKey)
}

// Scan iterates over a key range [start, end)
func (t *BadgerTransaction) Scan(table store.Table, start, end []byte) (store.Iterator, error) {
	opts := badger.DefaultIteratorOptions
	tablePrefix := store.TablePrefix(table)
	opts.Prefix = tablePrefix

	seekKey := tablePrefix
	if start != nil {
		seekKey = store.PrefixKey(table, start)
	}

	var endKey []byte
	if end != nil {
		endKey = store.PrefixKey(table, end)
	}

	return &BadgerIterator{
		it:      t.txn.NewIterator(opts),
		prefix:  tablePrefix,
		endKey:  endKey,
		seekKey: seekKey,
	}, nil
}

// Commit commits the transaction
func (t *BadgerTransaction) Commit() error {
	return t.txn.Commit()
}

// Rollback rolls back the transaction
func (t *BadgerTransaction) Rollback() error {
	t.txn.Discard()
	return nil
}

// BadgerIterator implements Iterator using BadgerDB
type BadgerIterator struct {
	it       *badger.Iterator
	prefix   []byte // Table prefix for stripping from keys
	endKey   []byte
	seekKey  []byte
	started  bool
	hasValue bool
}

// Next advances to the next item
func (i *BadgerIterator) Next() bool {
	if !i.started {
		i.it.Seek(i.seekKey)
		i.started = true
	} else {
		i.it.Next()
	}

	if !i.it.Valid() {
		i.hasValue = false
		return false
	}

	if i.endKey != nil && bytes.Compare(i.it.Item().Key(), i.endKey) >= 0 {
		i.hasValue = false
		return false
	}

	i.hasValue = true
	return true
}

// Key returns a copy of the current key without the table prefix
func (i *BadgerIterator) Key() []byte {
	if !i.hasValue {
		return nil
	}

	key := i.it.Item().KeyCopy(nil)
	return key[len(i.prefix):]
}

// Value returns the current value
func (i *BadgerIterator) Value() ([]byte, error) {
	if !i.hasValue {
		return nil, store.ErrNotFound
	}
	return i.it.Item().ValueCopy(nil)
}

// Close closes the iterator
func (i *BadgerIterator) Close() error {
	i.it.Close()
	return nil
}

// PrefixEnd returns the smallest key greater than every key starting with
// prefix, or nil when no such key exists.
func PrefixEnd(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
