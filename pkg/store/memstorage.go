package store

import (
	"bytes"
	"sort"
	"sync"
)

// MemStorage is a pure in-memory Storage implementation: one map per table
// (keys are sorted when scanned), guarded by a single mutex. It exists so ephemeral graphs (CONSTRUCT
// results, tests) don't need a filesystem the way the badger-backed Storage
// does.
type MemStorage struct {
	mu     sync.RWMutex
	tables [TableCount]map[string][]byte
}

// NewMemStorage returns an empty in-memory Storage.
func NewMemStorage() *MemStorage {
	s := &MemStorage{}
	for i := range s.tables {
		s.tables[i] = make(map[string][]byte)
	}
	return s
}

func (s *MemStorage) Begin(writable bool) (Transaction, error) {
	return &memTransaction{storage: s, writable: writable}, nil
}

func (s *MemStorage) Close() error { return nil }

func (s *MemStorage) Sync() error { return nil }

// memTransaction buffers its writes and deletes in per-table overlays. Reads
// consult the overlays first and then the storage's live maps, so they also
// see whatever other transactions have committed meanwhile; there is no
// snapshot isolation. Commit applies the overlays, Rollback discards them.
type memTransaction struct {
	storage  *MemStorage
	writable bool
	writes   [TableCount]map[string][]byte
	deletes  [TableCount]map[string]struct{}
	done     bool
}

func (t *memTransaction) ensureWrites(table Table) map[string][]byte {
	if t.writes[table] == nil {
		t.writes[table] = make(map[string][]byte)
	}
	return t.writes[table]
}

func (t *memTransaction) ensureDeletes(table Table) map[string]struct{} {
	if t.deletes[table] == nil {
		t.deletes[table] = make(map[string]struct{})
	}
	return t.deletes[table]
}

func (t *memTransaction) Get(table Table, key []byte) ([]byte, error) {
	t.storage.mu.RLock()
	defer t.storage.mu.RUnlock()
	if t.writes[table] != nil {
		if v, ok := t.writes[table][string(key)]; ok {
			return v, nil
		}
	}
	if t.deletes[table] != nil {
		if _, ok := t.deletes[table][string(key)]; ok {
			return nil, ErrNotFound
		}
	}
	if v, ok := t.storage.tables[table][string(key)]; ok {
		return v, nil
	}
	return nil, ErrNotFound
}

func (t *memTransaction) Set(table Table, key, value []byte) error {
	if !t.writable {
		return ErrTransactionRO
	}
	delete(t.ensureDeletes(table), string(key))
	cp := make([]byte, len(value))
	copy(cp, value)
	t.ensureWrites(table)[string(key)] = cp
	return nil
}

func (t *memTransaction) Delete(table Table, key []byte) error {
	if !t.writable {
		return ErrTransactionRO
	}
	delete(t.ensureWrites(table), string(key))
	t.ensureDeletes(table)[string(key)] = struct{}{}
	return nil
}

func (t *memTransaction) Scan(table Table, start, end []byte) (Iterator, error) {
	t.storage.mu.RLock()
	defer t.storage.mu.RUnlock()

	merged := make(map[string][]byte, len(t.storage.tables[table]))
	for k, v := range t.storage.tables[table] {
		merged[k] = v
	}
	for k, v := range t.writes[table] {
		merged[k] = v
	}
	for k := range t.deletes[table] {
		delete(merged, k)
	}

	var keys []string
	for k := range merged {
		kb := []byte(k)
		if start != nil && bytes.Compare(kb, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(kb, end) >= 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return &memIterator{keys: keys, values: merged, pos: -1}, nil
}

func (t *memTransaction) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	if !t.writable {
		return nil
	}
	t.storage.mu.Lock()
	defer t.storage.mu.Unlock()
	for table := range t.writes {
		for k, v := range t.writes[table] {
			t.storage.tables[table][k] = v
		}
		for k := range t.deletes[table] {
			delete(t.storage.tables[table], k)
		}
	}
	return nil
}

func (t *memTransaction) Rollback() error {
	t.done = true
	return nil
}

type memIterator struct {
	keys   []string
	values map[string][]byte
	pos    int
}

func (it *memIterator) Next() bool {
	it.pos++
	return it.pos < len(it.keys)
}

func (it *memIterator) Key() []byte {
	return []byte(it.keys[it.pos])
}

func (it *memIterator) Value() ([]byte, error) {
	return it.values[it.keys[it.pos]], nil
}

func (it *memIterator) Close() error { return nil }
