package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/aleksaelezovic/metis/internal/encoding"
	"github.com/aleksaelezovic/metis/pkg/rdf"
	"github.com/aleksaelezovic/metis/pkg/store"
	"github.com/aleksaelezovic/metis/pkg/turtle"
	"github.com/golang/glog"
	"github.com/golang/groupcache/lru"
)

const (
	// LoadBatchSize is the number of triples written per transaction by Load.
	LoadBatchSize = 1000

	// DefaultCacheSize is the number of decoded terms kept in memory.
	DefaultCacheSize = 4096

	metaBase  = "base"
	metaLoads = "loads"
)

// GraphStore keeps the triples of parsed documents in SPO and POS indexes,
// together with the prolog of the last document loaded.
type GraphStore struct {
	storage store.Storage
	encoder store.TermEncoder
	decoder store.TermDecoder

	mu    sync.Mutex // guards cache
	cache *lru.Cache
}

// NewGraphStore creates a graph store on top of storage
func NewGraphStore(storage store.Storage, encoder store.TermEncoder, decoder store.TermDecoder) *GraphStore {
	return &GraphStore{
		storage: storage,
		encoder: encoder,
		decoder: decoder,
		cache:   lru.New(DefaultCacheSize),
	}
}

// Close closes the underlying storage
func (s *GraphStore) Close() error {
	return s.storage.Close()
}

type encodedTriple struct {
	subject, predicate, object store.EncodedTerm
}

func (s *GraphStore) encodeTriple(triple *rdf.Triple, values map[store.EncodedTerm]string) (encodedTriple, error) {
	var enc encodedTriple
	if triple == nil {
		return enc, fmt.Errorf("%w: nil triple", encoding.ErrUnsupportedTerm)
	}

	positions := []struct {
		name string
		term rdf.Term
		dst  *store.EncodedTerm
	}{
		{"subject", triple.Subject, &enc.subject},
		{"predicate", triple.Predicate, &enc.predicate},
		{"object", triple.Object, &enc.object},
	}
	for _, pos := range positions {
		encoded, str, err := s.encoder.EncodeTerm(pos.term)
		if err != nil {
			return enc, fmt.Errorf("failed to encode %s: %w", pos.name, err)
		}
		*pos.dst = encoded
		if values != nil {
			values[encoded] = str
		}
	}
	return enc, nil
}

func (s *GraphStore) spoKey(t encodedTriple) []byte {
	return s.encoder.EncodeTripleKey(t.subject, t.predicate, t.object)
}

func (s *GraphStore) posKey(t encodedTriple) []byte {
	return s.encoder.EncodeTripleKey(t.predicate, t.object, t.subject)
}

// InsertTriple inserts a single triple
func (s *GraphStore) InsertTriple(triple *rdf.Triple) error {
	return s.InsertTriples([]*rdf.Triple{triple})
}

// InsertTriples inserts all triples in one transaction. Nothing is written
// if any of them cannot be stored.
func (s *GraphStore) InsertTriples(triples []*rdf.Triple) error {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	for _, triple := range triples {
		if err := s.insertTripleInTxn(txn, triple); err != nil {
			return err
		}
	}

	return txn.Commit()
}

// insertTripleInTxn inserts a triple within an existing transaction
func (s *GraphStore) insertTripleInTxn(txn store.Transaction, triple *rdf.Triple) error {
	values := make(map[store.EncodedTerm]string, 3)
	enc, err := s.encodeTriple(triple, values)
	if err != nil {
		return err
	}

	for encoded, str := range values {
		if err := s.storeString(txn, encoded, str); err != nil {
			return err
		}
	}

	// Empty value for all index entries
	emptyValue := []byte{}
	if err := txn.Set(store.TableSPO, s.spoKey(enc), emptyValue); err != nil {
		return err
	}
	return txn.Set(store.TablePOS, s.posKey(enc), emptyValue)
}

// storeString stores the N-Triples form of a term in the id2str table
func (s *GraphStore) storeString(txn store.Transaction, encoded store.EncodedTerm, str string) error {
	value := []byte(str)

	existing, err := txn.Get(store.TableID2Str, encoded[:])
	if err == nil {
		if !bytes.Equal(existing, value) {
			return fmt.Errorf("hash collision between %s and %s", existing, str)
		}
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	return txn.Set(store.TableID2Str, encoded[:], value)
}

// DeleteTriple removes a triple. Deleting a missing triple is not an error.
func (s *GraphStore) DeleteTriple(triple *rdf.Triple) error {
	enc, err := s.encodeTriple(triple, nil)
	if err != nil {
		return err
	}

	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	if err := txn.Delete(store.TableSPO, s.spoKey(enc)); err != nil {
		return err
	}
	if err := txn.Delete(store.TablePOS, s.posKey(enc)); err != nil {
		return err
	}

	// Note: id2str entries are kept as other triples may still use them

	return txn.Commit()
}

// ContainsTriple checks if a triple exists in the store
func (s *GraphStore) ContainsTriple(triple *rdf.Triple) (bool, error) {
	enc, err := s.encodeTriple(triple, nil)
	if err != nil {
		return false, err
	}

	txn, err := s.storage.Begin(false)
	if err != nil {
		return false, err
	}
	defer txn.Rollback()

	_, err = txn.Get(store.TableSPO, s.spoKey(enc))
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Count returns the number of triples in the store
func (s *GraphStore) Count() (int64, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback()

	it, err := txn.Scan(store.TableSPO, nil, nil)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	count := int64(0)
	for it.Next() {
		count++
	}

	return count, nil
}

// Triples calls fn for every triple in SPO order: all triples of a subject
// are adjacent, and within a subject all triples of a predicate.
func (s *GraphStore) Triples(ctx context.Context, fn func(*rdf.Triple) error) error {
	return s.Match(ctx, &Pattern{}, fn)
}

// lookupTerm decodes a term, consulting the cache before the id2str table
func (s *GraphStore) lookupTerm(txn store.Transaction, encoded store.EncodedTerm) (rdf.Term, error) {
	s.mu.Lock()
	cached, ok := s.cache.Get(encoded)
	s.mu.Unlock()
	if ok {
		return cached.(rdf.Term), nil
	}

	value, err := txn.Get(store.TableID2Str, encoded[:])
	if err != nil {
		return nil, fmt.Errorf("failed to look up term: %w", err)
	}
	term, err := s.decoder.DecodeTerm(encoded, string(value))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache.Add(encoded, term)
	s.mu.Unlock()
	return term, nil
}

// Load reads every triple from p into the store, LoadBatchSize triples per
// transaction, then saves the parser's final prolog. It returns the number
// of triples read. Batches committed before an error stay in the store.
//
// Blank nodes are scoped to the document: each call relabels them as
// b<load>_<label>, so nodes of different loads never merge.
func (s *GraphStore) Load(ctx context.Context, p *turtle.Parser) (int, error) {
	load, err := s.nextLoad()
	if err != nil {
		return 0, err
	}
	scope := newBlankScope(load)

	total := 0
	batch := make([]*rdf.Triple, 0, LoadBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.InsertTriples(batch); err != nil {
			return err
		}
		total += len(batch)
		glog.V(2).Infof("Stored %d triples", total)
		batch = batch[:0]
		return nil
	}

	for p.Next() {
		batch = append(batch, scope.triple(p.Triple()))
		if len(batch) == LoadBatchSize {
			if err := ctx.Err(); err != nil {
				return total, err
			}
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := p.Err(); err != nil {
		return total, err
	}
	if err := flush(); err != nil {
		return total, err
	}

	if err := s.SavePrologue(p.Prolog()); err != nil {
		return total, err
	}
	glog.V(1).Infof("Loaded %d triples", total)
	return total, nil
}

// nextLoad increments the load counter kept in the meta table and returns
// its previous value.
func (s *GraphStore) nextLoad() (uint64, error) {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback()

	var load uint64
	value, err := txn.Get(store.TableMeta, []byte(metaLoads))
	switch {
	case err == nil:
		if len(value) != 8 {
			return 0, fmt.Errorf("corrupt load counter: %d bytes", len(value))
		}
		load = binary.BigEndian.Uint64(value)
	case !errors.Is(err, store.ErrNotFound):
		return 0, err
	}

	var next [8]byte
	binary.BigEndian.PutUint64(next[:], load+1)
	if err := txn.Set(store.TableMeta, []byte(metaLoads), next[:]); err != nil {
		return 0, err
	}
	if err := txn.Commit(); err != nil {
		return 0, err
	}
	return load, nil
}

// blankScope renames the blank nodes of one load.
type blankScope struct {
	prefix string
}

func newBlankScope(load uint64) blankScope {
	return blankScope{prefix: "b" + strconv.FormatUint(load, 10) + "_"}
}

func (b blankScope) term(t rdf.Term) rdf.Term {
	if node, ok := t.(*rdf.BlankNode); ok {
		return rdf.NewBlankNode(b.prefix + node.ID)
	}
	return t
}

func (b blankScope) triple(t *rdf.Triple) *rdf.Triple {
	return rdf.NewTriple(b.term(t.Subject), b.term(t.Predicate), b.term(t.Object))
}

// SavePrologue replaces the stored base and prefixes with those of prolog
func (s *GraphStore) SavePrologue(prolog *turtle.Prolog) error {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	it, err := txn.Scan(store.TablePrefixes, nil, nil)
	if err != nil {
		return err
	}
	var stale [][]byte
	for it.Next() {
		stale = append(stale, it.Key())
	}
	it.Close()
	for _, key := range stale {
		if err := txn.Delete(store.TablePrefixes, key); err != nil {
			return err
		}
	}

	for _, prefix := range prolog.Prefixes() {
		if err := txn.Set(store.TablePrefixes, []byte(prefix.Name), []byte(prefix.Namespace)); err != nil {
			return err
		}
	}

	if base, ok := prolog.Base(); ok {
		err = txn.Set(store.TableMeta, []byte(metaBase), []byte(base))
	} else {
		err = txn.Delete(store.TableMeta, []byte(metaBase))
	}
	if err != nil {
		return err
	}

	return txn.Commit()
}

// Prolog returns the stored base and prefixes
func (s *GraphStore) Prolog() (*turtle.Prolog, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}
	defer txn.Rollback()

	prolog := turtle.NewProlog()

	base, err := txn.Get(store.TableMeta, []byte(metaBase))
	switch {
	case err == nil:
		if err := prolog.SetBase(string(base)); err != nil {
			return nil, fmt.Errorf("stored base: %w", err)
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	it, err := txn.Scan(store.TablePrefixes, nil, nil)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	for it.Next() {
		ns, err := it.Value()
		if err != nil {
			return nil, err
		}
		if err := prolog.AddPrefix(string(it.Key()), string(ns)); err != nil {
			return nil, fmt.Errorf("stored prefix: %w", err)
		}
	}

	return prolog, nil
}

// Dump writes the store as Turtle. A nil cfg uses the stored prolog.
func (s *GraphStore) Dump(ctx context.Context, w io.Writer, cfg *turtle.Config) error {
	if cfg == nil {
		prolog, err := s.Prolog()
		if err != nil {
			return err
		}
		cfg = turtle.NewConfig()
		cfg.Prolog = prolog
	}

	ser, err := turtle.NewSerializer(w, cfg)
	if err != nil {
		return err
	}
	if err := s.Triples(ctx, ser.Serialize); err != nil {
		return err
	}
	return ser.Finish()
}
