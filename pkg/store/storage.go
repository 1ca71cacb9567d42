package store

import (
	"errors"
)

var (
	// ErrNotFound is returned by Get for a key absent from its table.
	ErrNotFound = errors.New("key not found")
	// ErrTransactionRO is returned by writes in a transaction opened
	// without writable.
	ErrTransactionRO = errors.New("transaction is read-only")
)

// Storage holds the graph tables: the id2str term dictionary, the SPO and
// POS triple indexes, and the prolog of the last loaded document.
type Storage interface {
	// Begin opens a transaction. Loads and prolog updates need writable.
	Begin(writable bool) (Transaction, error)

	Close() error

	// Sync persists committed triples and terms.
	Sync() error
}

// Transaction sees one snapshot of all tables. A load batch or a prolog
// update is written through a single transaction and lands as a whole.
type Transaction interface {
	// Get returns the value under key in table, or ErrNotFound. For
	// TableID2Str that is the N-Triples form of an encoded term.
	Get(table Table, key []byte) ([]byte, error)

	Set(table Table, key, value []byte) error

	Delete(table Table, key []byte) error

	// Scan walks the keys of table in byte order from start up to, but
	// excluding, end. A nil bound is open. Index scans pass the encoded
	// prefix of the bound triple positions.
	Scan(table Table, start, end []byte) (Iterator, error)

	Commit() error

	// Rollback discards uncommitted writes. It is safe after Commit.
	Rollback() error
}

// Iterator yields the entries of a Scan. Keys come without the table
// prefix: a triple key for the indexes, a prefix name for TablePrefixes.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() ([]byte, error)
	Close() error
}

// Table selects one keyspace of the storage.
type Table byte

const (
	// TableID2Str maps an EncodedTerm to the term's N-Triples form.
	TableID2Str Table = iota

	// TableSPO and TablePOS hold triple keys with empty values, ordered
	// subject-predicate-object and predicate-object-subject.
	TableSPO
	TablePOS

	// TablePrefixes maps a prefix name to its namespace.
	TablePrefixes

	// TableMeta holds the stored base IRI and the load counter.
	TableMeta

	TableCount
)

func (t Table) String() string {
	switch t {
	case TableID2Str:
		return "id2str"
	case TableSPO:
		return "spo"
	case TablePOS:
		return "pos"
	case TablePrefixes:
		return "prefixes"
	case TableMeta:
		return "meta"
	default:
		return "unknown"
	}
}

// TablePrefix is the first byte of every key of table in the shared
// keyspace.
func TablePrefix(table Table) []byte {
	return []byte{byte(table)}
}

// PrefixKey places key in the keyspace of table.
func PrefixKey(table Table, key []byte) []byte {
	prefixed := make([]byte, 0, 1+len(key))
	prefixed = append(prefixed, byte(table))
	return append(prefixed, key...)
}
