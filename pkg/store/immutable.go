package store

import "github.com/geoknoesis/rdfgraph/pkg/rdf"

// ImmutableStore is a structurally-shared, value-equal set of quads. Add and
// Remove return a new store that shares unmodified structure with the
// receiver; the receiver itself is never mutated. It is organized as a
// hash-array-mapped trie keyed on Quad.Hash(), in the same spirit as the
// indexed mutable store's table-per-permutation design, but value-typed and
// copy-on-write instead of backed by a KV transaction.
type ImmutableStore struct {
	root *hamtNode
	size int
}

// NewImmutableStore returns the empty immutable store.
func NewImmutableStore() *ImmutableStore {
	return &ImmutableStore{}
}

const hamtBits = 5
const hamtWidth = 1 << hamtBits // 32-way branching
const hamtMask = hamtWidth - 1
const hamtMaxDepth = 64 / hamtBits // 12 levels, consuming 60 of the hash's 64 bits

// hamtNode is either a branch (children indexed by 5-bit chunks of the
// hash) or a leaf (a bucket of quads that share a hash prefix, handling
// hash collisions by linear scan within the bucket).
type hamtNode struct {
	children [hamtWidth]*hamtNode
	bucket   []*rdf.Quad
}

func (s *ImmutableStore) Len() int { return s.size }

// Contains reports whether an equal quad is already in the store.
func (s *ImmutableStore) Contains(q *rdf.Quad) bool {
	if s.root == nil {
		return false
	}
	_, found := s.root.find(q.Hash(), 0, q)
	return found
}

// Add returns a new store containing q in addition to the receiver's
// quads. Adding an already-present quad returns a store equal to the
// receiver (set semantics; no-op).
func (s *ImmutableStore) Add(q *rdf.Quad) *ImmutableStore {
	if s.Contains(q) {
		return s
	}
	newRoot := insert(s.root, q.Hash(), 0, q)
	return &ImmutableStore{root: newRoot, size: s.size + 1}
}

// AddAll returns a new store with every quad in qs added.
func (s *ImmutableStore) AddAll(qs []*rdf.Quad) *ImmutableStore {
	result := s
	for _, q := range qs {
		result = result.Add(q)
	}
	return result
}

// Remove returns a new store without an equal quad. Removing an absent
// quad returns a store equal to the receiver (no-op).
func (s *ImmutableStore) Remove(q *rdf.Quad) *ImmutableStore {
	if !s.Contains(q) {
		return s
	}
	newRoot := remove(s.root, q.Hash(), 0, q)
	return &ImmutableStore{root: newRoot, size: s.size - 1}
}

// RemoveAll returns a new store without any quad in qs.
func (s *ImmutableStore) RemoveAll(qs []*rdf.Quad) *ImmutableStore {
	result := s
	for _, q := range qs {
		result = result.Remove(q)
	}
	return result
}

// Quads returns every quad in the store. Order is unspecified.
func (s *ImmutableStore) Quads() []*rdf.Quad {
	out := make([]*rdf.Quad, 0, s.size)
	if s.root != nil {
		s.root.collect(&out)
	}
	return out
}

// Equals reports whether two stores contain the same set of quads,
// irrespective of structure or insertion order.
func (s *ImmutableStore) Equals(other *ImmutableStore) bool {
	if other == nil {
		return s.size == 0
	}
	if s.size != other.size {
		return false
	}
	for _, q := range s.Quads() {
		if !other.Contains(q) {
			return false
		}
	}
	return true
}

// Find returns every quad matching the given pattern; nil arguments are
// wildcards. Full-scan with predicate filtering, as permitted for the
// persistent store.
func (s *ImmutableStore) Find(subject, predicate, object, graph rdf.Term) []*rdf.Quad {
	var out []*rdf.Quad
	for _, q := range s.Quads() {
		if subject != nil && !q.Subject.Equals(subject) {
			continue
		}
		if predicate != nil && !q.Predicate.Equals(predicate) {
			continue
		}
		if object != nil && !q.Object.Equals(object) {
			continue
		}
		if graph != nil {
			if rdf.IsDefaultGraph(graph) != rdf.IsDefaultGraph(q.Graph) {
				continue
			}
			if !rdf.IsDefaultGraph(graph) && !q.Graph.Equals(graph) {
				continue
			}
		}
		out = append(out, q)
	}
	return out
}

func chunk(hash uint64, depth int) int {
	shift := uint(depth * hamtBits)
	return int((hash >> shift) & hamtMask)
}

func (n *hamtNode) find(hash uint64, depth int, q *rdf.Quad) (*rdf.Quad, bool) {
	if n == nil {
		return nil, false
	}
	if n.bucket != nil {
		for _, existing := range n.bucket {
			if existing.Equals(q) {
				return existing, true
			}
		}
		return nil, false
	}
	return n.children[chunk(hash, depth)].find(hash, depth+1, q)
}

// insert returns a new subtree with q inserted. Nodes branch on 5-bit
// chunks of the hash until hamtMaxDepth, at which point they become
// buckets — a flat slice scanned linearly, which also absorbs genuine
// hash collisions (two distinct quads whose Hash() values collide).
func insert(n *hamtNode, hash uint64, depth int, q *rdf.Quad) *hamtNode {
	if depth >= hamtMaxDepth {
		if n == nil {
			return &hamtNode{bucket: []*rdf.Quad{q}}
		}
		newBucket := make([]*rdf.Quad, len(n.bucket)+1)
		copy(newBucket, n.bucket)
		newBucket[len(n.bucket)] = q
		return &hamtNode{bucket: newBucket}
	}
	newNode := &hamtNode{}
	if n != nil {
		newNode.children = n.children
	}
	idx := chunk(hash, depth)
	newNode.children[idx] = insert(n.child(idx), hash, depth+1, q)
	return newNode
}

func (n *hamtNode) child(idx int) *hamtNode {
	if n == nil {
		return nil
	}
	return n.children[idx]
}

func remove(n *hamtNode, hash uint64, depth int, q *rdf.Quad) *hamtNode {
	if n == nil {
		return nil
	}
	if n.bucket != nil {
		newBucket := make([]*rdf.Quad, 0, len(n.bucket))
		for _, existing := range n.bucket {
			if !existing.Equals(q) {
				newBucket = append(newBucket, existing)
			}
		}
		if len(newBucket) == 0 {
			return nil
		}
		return &hamtNode{bucket: newBucket}
	}
	idx := chunk(hash, depth)
	newNode := &hamtNode{}
	newNode.children = n.children
	newNode.children[idx] = remove(n.children[idx], hash, depth+1, q)
	return newNode
}

func (n *hamtNode) collect(out *[]*rdf.Quad) {
	if n == nil {
		return
	}
	if n.bucket != nil {
		*out = append(*out, n.bucket...)
		return
	}
	for _, child := range n.children {
		child.collect(out)
	}
}
