package store

import (
	"bytes"
	"fmt"

	"github.com/geoknoesis/rdfgraph/pkg/rdf"
)

// TripleStore manages the indexed quad set over a Storage backend: nine
// index tables (three default-graph permutations, six named-graph
// permutations) plus an id2str table for out-of-line string data.
type TripleStore struct {
	storage Storage
	encoder TermEncoder
	decoder TermDecoder
}

// NewTripleStore wires a Storage backend with the term encoder/decoder pair
// used to translate between rdf.Term values and their 17-byte index keys.
func NewTripleStore(storage Storage, encoder TermEncoder, decoder TermDecoder) *TripleStore {
	return &TripleStore{storage: storage, encoder: encoder, decoder: decoder}
}

// Close closes the underlying storage.
func (s *TripleStore) Close() error {
	return s.storage.Close()
}

// Encoder returns the term encoder this store was constructed with, so a
// caller can wire a fresh TripleStore over a different Storage backend
// while keeping the same term encoding.
func (s *TripleStore) Encoder() TermEncoder { return s.encoder }

// Decoder returns the term decoder this store was constructed with.
func (s *TripleStore) Decoder() TermDecoder { return s.decoder }

// InsertQuad inserts a quad into every index it participates in. Duplicate
// inserts are a no-op: the index keys are set-valued, so re-setting an
// existing key changes nothing.
func (s *TripleStore) InsertQuad(quad *rdf.Quad) error {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	if err := s.insertQuadInTxn(txn, quad); err != nil {
		return err
	}
	return txn.Commit()
}

// InsertTriple inserts a triple into the default graph.
func (s *TripleStore) InsertTriple(triple *rdf.Triple) error {
	return s.InsertQuad(&rdf.Quad{
		Subject:   triple.Subject,
		Predicate: triple.Predicate,
		Object:    triple.Object,
		Graph:     rdf.NewDefaultGraph(),
	})
}

func (s *TripleStore) insertQuadInTxn(txn Transaction, quad *rdf.Quad) error {
	subjEnc, subjStr, err := s.encoder.EncodeTerm(quad.Subject)
	if err != nil {
		return fmt.Errorf("failed to encode subject: %w", err)
	}
	predEnc, predStr, err := s.encoder.EncodeTerm(quad.Predicate)
	if err != nil {
		return fmt.Errorf("failed to encode predicate: %w", err)
	}
	objEnc, objStr, err := s.encoder.EncodeTerm(quad.Object)
	if err != nil {
		return fmt.Errorf("failed to encode object: %w", err)
	}
	graph := quad.Graph
	if graph == nil {
		graph = rdf.NewDefaultGraph()
	}
	graphEnc, graphStr, err := s.encoder.EncodeTerm(graph)
	if err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}

	if err := s.storeString(txn, subjEnc, subjStr); err != nil {
		return err
	}
	if err := s.storeString(txn, predEnc, predStr); err != nil {
		return err
	}
	if err := s.storeString(txn, objEnc, objStr); err != nil {
		return err
	}
	if err := s.storeString(txn, graphEnc, graphStr); err != nil {
		return err
	}

	empty := []byte{}
	isDefaultGraph := graph.Type() == rdf.TermTypeDefaultGraph

	if isDefaultGraph {
		if err := txn.Set(TableSPO, s.encoder.EncodeQuadKey(subjEnc, predEnc, objEnc), empty); err != nil {
			return err
		}
		if err := txn.Set(TablePOS, s.encoder.EncodeQuadKey(predEnc, objEnc, subjEnc), empty); err != nil {
			return err
		}
		if err := txn.Set(TableOSP, s.encoder.EncodeQuadKey(objEnc, subjEnc, predEnc), empty); err != nil {
			return err
		}
	}

	if err := txn.Set(TableSPOG, s.encoder.EncodeQuadKey(subjEnc, predEnc, objEnc, graphEnc), empty); err != nil {
		return err
	}
	if err := txn.Set(TablePOSG, s.encoder.EncodeQuadKey(predEnc, objEnc, subjEnc, graphEnc), empty); err != nil {
		return err
	}
	if err := txn.Set(TableOSPG, s.encoder.EncodeQuadKey(objEnc, subjEnc, predEnc, graphEnc), empty); err != nil {
		return err
	}
	if err := txn.Set(TableGSPO, s.encoder.EncodeQuadKey(graphEnc, subjEnc, predEnc, objEnc), empty); err != nil {
		return err
	}
	if err := txn.Set(TableGPOS, s.encoder.EncodeQuadKey(graphEnc, predEnc, objEnc, subjEnc), empty); err != nil {
		return err
	}
	if err := txn.Set(TableGOSP, s.encoder.EncodeQuadKey(graphEnc, objEnc, subjEnc, predEnc), empty); err != nil {
		return err
	}

	if !isDefaultGraph {
		if err := txn.Set(TableGraphs, graphEnc[:], empty); err != nil {
			return err
		}
	}
	return nil
}

func (s *TripleStore) storeString(txn Transaction, encoded EncodedTerm, str *string) error {
	if str == nil {
		return nil
	}
	key := encoded[1:]
	value := []byte(*str)

	existing, err := txn.Get(TableID2Str, key)
	if err == nil && bytes.Equal(existing, value) {
		return nil
	}
	if err != nil && err != ErrNotFound {
		return err
	}
	return txn.Set(TableID2Str, key, value)
}

// DeleteQuad removes a quad from every index it participates in. Deleting a
// quad that is not present is a no-op.
func (s *TripleStore) DeleteQuad(quad *rdf.Quad) error {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	if err := s.deleteQuadInTxn(txn, quad); err != nil {
		return err
	}
	return txn.Commit()
}

// DeleteTriple removes a triple from the default graph.
func (s *TripleStore) DeleteTriple(triple *rdf.Triple) error {
	return s.DeleteQuad(&rdf.Quad{
		Subject:   triple.Subject,
		Predicate: triple.Predicate,
		Object:    triple.Object,
		Graph:     rdf.NewDefaultGraph(),
	})
}

func (s *TripleStore) deleteQuadInTxn(txn Transaction, quad *rdf.Quad) error {
	subjEnc, _, err := s.encoder.EncodeTerm(quad.Subject)
	if err != nil {
		return fmt.Errorf("failed to encode subject: %w", err)
	}
	predEnc, _, err := s.encoder.EncodeTerm(quad.Predicate)
	if err != nil {
		return fmt.Errorf("failed to encode predicate: %w", err)
	}
	objEnc, _, err := s.encoder.EncodeTerm(quad.Object)
	if err != nil {
		return fmt.Errorf("failed to encode object: %w", err)
	}
	graph := quad.Graph
	if graph == nil {
		graph = rdf.NewDefaultGraph()
	}
	graphEnc, _, err := s.encoder.EncodeTerm(graph)
	if err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}

	isDefaultGraph := graph.Type() == rdf.TermTypeDefaultGraph
	if isDefaultGraph {
		if err := txn.Delete(TableSPO, s.encoder.EncodeQuadKey(subjEnc, predEnc, objEnc)); err != nil {
			return err
		}
		if err := txn.Delete(TablePOS, s.encoder.EncodeQuadKey(predEnc, objEnc, subjEnc)); err != nil {
			return err
		}
		if err := txn.Delete(TableOSP, s.encoder.EncodeQuadKey(objEnc, subjEnc, predEnc)); err != nil {
			return err
		}
	}

	if err := txn.Delete(TableSPOG, s.encoder.EncodeQuadKey(subjEnc, predEnc, objEnc, graphEnc)); err != nil {
		return err
	}
	if err := txn.Delete(TablePOSG, s.encoder.EncodeQuadKey(predEnc, objEnc, subjEnc, graphEnc)); err != nil {
		return err
	}
	if err := txn.Delete(TableOSPG, s.encoder.EncodeQuadKey(objEnc, subjEnc, predEnc, graphEnc)); err != nil {
		return err
	}
	if err := txn.Delete(TableGSPO, s.encoder.EncodeQuadKey(graphEnc, subjEnc, predEnc, objEnc)); err != nil {
		return err
	}
	if err := txn.Delete(TableGPOS, s.encoder.EncodeQuadKey(graphEnc, predEnc, objEnc, subjEnc)); err != nil {
		return err
	}
	if err := txn.Delete(TableGOSP, s.encoder.EncodeQuadKey(graphEnc, objEnc, subjEnc, predEnc)); err != nil {
		return err
	}

	// id2str and the graphs table are left untouched: other quads may
	// still reference the same string or named graph, and there is no
	// reference counting to garbage-collect them safely.
	return nil
}

// ContainsQuad reports whether a quad exists in the store.
func (s *TripleStore) ContainsQuad(quad *rdf.Quad) (bool, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return false, err
	}
	defer txn.Rollback()

	subjEnc, _, err := s.encoder.EncodeTerm(quad.Subject)
	if err != nil {
		return false, err
	}
	predEnc, _, err := s.encoder.EncodeTerm(quad.Predicate)
	if err != nil {
		return false, err
	}
	objEnc, _, err := s.encoder.EncodeTerm(quad.Object)
	if err != nil {
		return false, err
	}
	graph := quad.Graph
	if graph == nil {
		graph = rdf.NewDefaultGraph()
	}
	graphEnc, _, err := s.encoder.EncodeTerm(graph)
	if err != nil {
		return false, err
	}

	key := s.encoder.EncodeQuadKey(subjEnc, predEnc, objEnc, graphEnc)
	_, err = txn.Get(TableSPOG, key)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Count returns the number of quads in the store, via the SPOG index.
func (s *TripleStore) Count() (int64, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback()

	it, err := txn.Scan(TableSPOG, nil, nil)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	var count int64
	for it.Next() {
		count++
	}
	return count, nil
}
