// Package store implements the concurrent key/value map at the core of
// Blewis: a sharded hash map keyed by any boop.Value, exposing atomic
// read, insert, read-modify-write, and read-and-delete primitives that
// are linearizable per key.
package store

import (
	"fmt"
	"sync"

	"github.com/notthelewis/blewis/boop"
)

const (
	// DefaultShardCount is used by New. It must stay a power of two.
	DefaultShardCount = 16
	// DefaultCapacity is the per-shard map size hint used by New.
	DefaultCapacity = 64
)

// NoExistCode is the server error code delivered by GetSet when no prior
// value existed for the key.
const NoExistCode = 0x10

// noExist is the shared server Error returned by GetSet on an absent key.
// It is read-only data — Value is immutable after construction — so
// handing the same payload back to every caller is safe under concurrent
// access.
var noExist = boop.NewError(true, NoExistCode, []byte("no_exist"))

// entry pairs the original Value key (kept so shard contents can be
// inspected or enumerated later) with its current value.
type entry struct {
	key boop.Value
	val boop.Value
}

type shard struct {
	mu sync.RWMutex
	m  map[string]entry
}

// Store is a sharded concurrent map from boop.Value to boop.Value. The
// zero value is not usable; construct one with New, NewSize, or
// NewShards. A Store is safe to share across goroutines by reference —
// it holds no exported mutable state of its own.
//
// Go maps cannot use boop.Value directly as a key type: String and Array
// payloads are backed by slices, which are not comparable, so comparing
// two Value interfaces with == would panic for those variants. Instead
// each shard's map is keyed by the Value's canonical wire encoding
// (a string, Go's only general-purpose comparable byte sequence), which
// is equal iff the two Values are equal by Value.Equal.
type Store struct {
	shards []*shard
	mask   uint64
}

// New returns a Store with DefaultShardCount shards and DefaultCapacity
// per-shard capacity.
func New() *Store {
	s, err := NewShards(DefaultCapacity, DefaultShardCount)
	if err != nil {
		// DefaultShardCount is a compile-time constant power of two.
		panic(err)
	}
	return s
}

// NewSize returns a Store with DefaultShardCount shards, each hinted to
// hold capacity entries.
func NewSize(capacity int) *Store {
	s, err := NewShards(capacity, DefaultShardCount)
	if err != nil {
		panic(err)
	}
	return s
}

// NewShards returns a Store with shardCount shards, each hinted to hold
// capacity entries. shardCount must be a power of two so that shard
// selection can use a bitmask instead of a modulo; any other value is
// rejected.
func NewShards(capacity, shardCount int) (*Store, error) {
	if shardCount <= 0 || shardCount&(shardCount-1) != 0 {
		return nil, fmt.Errorf("store: shard count %d is not a power of two", shardCount)
	}
	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = &shard{m: make(map[string]entry, capacity)}
	}
	return &Store{shards: shards, mask: uint64(shardCount - 1)}, nil
}

func (s *Store) shardFor(k boop.Value) *shard {
	return s.shards[k.Hash()&s.mask]
}

// canonicalKey returns the byte string a Value encodes to. Two Values are
// equal iff their encodings are byte-identical — tag, width, and raw
// float bits included — so this string doubles as the Value's map key
// without a second, parallel equality routine to keep in sync with
// Encode.
func canonicalKey(v boop.Value) string {
	buf := boop.NewBuffer()
	if err := boop.Encode(buf, v); err != nil {
		// Keys that cannot be encoded (oversized strings/arrays) still
		// need a stable, collision-resistant identity; fall back to the
		// Value's own string form, which is unambiguous per Kind. An
		// Array's string form only gives its length, so an Array is keyed
		// by its length and each element's length-prefixed canonical key.
		if arr, ok := v.(boop.Array); ok {
			key := fmt.Sprintf("!%T:%d", v, len(arr))
			for _, elem := range arr {
				ek := canonicalKey(elem)
				key += fmt.Sprintf(":%d:%s", len(ek), ek)
			}
			return key
		}
		return fmt.Sprintf("!%T:%s", v, v.String())
	}
	return buf.String()
}

// Get returns a copy of the current value for k, if any.
func (s *Store) Get(k boop.Value) (boop.Value, bool) {
	sh := s.shardFor(k)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	e, ok := sh.m[canonicalKey(k)]
	if !ok {
		return nil, false
	}
	return e.val, true
}

// Set atomically inserts or replaces k's value, returning the prior value
// if one existed.
func (s *Store) Set(k, v boop.Value) (prior boop.Value, existed bool) {
	sh := s.shardFor(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	ck := canonicalKey(k)
	old, existed := sh.m[ck]
	sh.m[ck] = entry{key: k, val: v}
	if !existed {
		return nil, false
	}
	return old.val, true
}

// GetSet atomically inserts or replaces k's value, returning the prior
// value. When there was no prior value it returns a server Error
// {server=true, code=0x10, msg="no_exist"} instead of an absent result —
// this is deliberate data, not a protocol failure.
func (s *Store) GetSet(k, v boop.Value) boop.Value {
	sh := s.shardFor(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	ck := canonicalKey(k)
	old, existed := sh.m[ck]
	sh.m[ck] = entry{key: k, val: v}
	if !existed {
		return noExist
	}
	return old.val
}

// GetDel atomically removes k, returning the prior value if one existed.
func (s *Store) GetDel(k boop.Value) (prior boop.Value, existed bool) {
	sh := s.shardFor(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	ck := canonicalKey(k)
	old, existed := sh.m[ck]
	if !existed {
		return nil, false
	}
	delete(sh.m, ck)
	return old.val, true
}
