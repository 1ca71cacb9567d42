package store

import (
	"context"
	"fmt"

	"github.com/aleksaelezovic/metis/internal/encoding"
	"github.com/aleksaelezovic/metis/internal/storage"
	"github.com/aleksaelezovic/metis/pkg/rdf"
	"github.com/aleksaelezovic/metis/pkg/store"
)

// Pattern selects triples. A nil position matches any term.
type Pattern struct {
	Subject   rdf.Term
	Predicate rdf.Term
	Object    rdf.Term
}

// index describes how an index orders the three positions of a triple
type index struct {
	table store.Table
	order [3]int // triple position stored at each key slot
}

var (
	spoIndex = index{store.TableSPO, [3]int{0, 1, 2}}
	posIndex = index{store.TablePOS, [3]int{1, 2, 0}}
)

func (p *Pattern) terms() [3]rdf.Term {
	return [3]rdf.Term{p.Subject, p.Predicate, p.Object}
}

// selectIndex picks the index with the longest bound key prefix
func selectIndex(pattern *Pattern) index {
	if pattern.Subject == nil && pattern.Predicate != nil {
		return posIndex
	}
	return spoIndex
}

// buildScanPrefix encodes the bound leading positions of the pattern for idx
func (s *GraphStore) buildScanPrefix(pattern *Pattern, idx index) ([]byte, error) {
	terms := pattern.terms()
	var prefix []store.EncodedTerm
	for _, pos := range idx.order {
		if terms[pos] == nil {
			break
		}
		encoded, _, err := s.encoder.EncodeTerm(terms[pos])
		if err != nil {
			return nil, err
		}
		prefix = append(prefix, encoded)
	}
	if len(prefix) == 0 {
		return nil, nil
	}
	return s.encoder.EncodeTripleKey(prefix...), nil
}

// Match calls fn for every triple matching pattern, in the order of the
// index used to answer it.
func (s *GraphStore) Match(ctx context.Context, pattern *Pattern, fn func(*rdf.Triple) error) error {
	idx := selectIndex(pattern)
	prefix, err := s.buildScanPrefix(pattern, idx)
	if err != nil {
		return fmt.Errorf("failed to encode pattern: %w", err)
	}

	txn, err := s.storage.Begin(false)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	var end []byte
	if prefix != nil {
		end = storage.PrefixEnd(prefix)
	}
	it, err := txn.Scan(idx.table, prefix, end)
	if err != nil {
		return err
	}
	defer it.Close()

	bound := pattern.terms()
	for it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		encoded, err := encoding.SplitTripleKey(it.Key())
		if err != nil {
			return fmt.Errorf("corrupt %s index: %w", idx.table, err)
		}

		var terms [3]rdf.Term
		for slot, pos := range idx.order {
			if terms[pos], err = s.lookupTerm(txn, encoded[slot]); err != nil {
				return err
			}
		}
		if !matches(bound, terms) {
			continue
		}
		if err := fn(rdf.NewTriple(terms[0], terms[1], terms[2])); err != nil {
			return err
		}
	}
	return nil
}

// matches filters positions that the scan prefix could not cover
func matches(pattern, terms [3]rdf.Term) bool {
	for i, term := range pattern {
		if term != nil && !term.Equals(terms[i]) {
			return false
		}
	}
	return true
}
