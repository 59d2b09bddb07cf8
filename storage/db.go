package storage

import (
	"bytes"
	"sort"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Database is a generic interface for a key-value store. The marketplace
// ledger works against this interface so it can run on an in-memory store in
// tests and on LevelDB in production.
type Database interface {
	Get(key []byte) ([]byte, bool, error)
	Put(key []byte, value []byte) error
	Delete(key []byte) error
	// NewIterator walks every key that starts with prefix, in ascending byte
	// order, or descending when reverse is set.
	NewIterator(prefix []byte, reverse bool) Iterator
	// Write applies the batch atomically: either every operation in the batch
	// lands or none do.
	Write(batch *Batch) error
	Close()
}

// Iterator walks a key range. Next must be called before the first Key/Value
// access; Release must always be called when done.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
}

type batchOp struct {
	key    []byte
	value  []byte
	delete bool
}

// Batch collects writes and deletes for a single atomic commit.
type Batch struct {
	ops []batchOp
}

// Put queues a write.
func (b *Batch) Put(key, value []byte) {
	b.ops = append(b.ops, batchOp{key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
}

// Delete queues a delete.
func (b *Batch) Delete(key []byte) {
	b.ops = append(b.ops, batchOp{key: append([]byte(nil), key...), delete: true})
}

// Len reports the number of queued operations.
func (b *Batch) Len() int { return len(b.ops) }

// --- In-Memory DB (for tests and tooling) ---

type MemDB struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemDB() *MemDB {
	return &MemDB{data: make(map[string][]byte)}
}

func (db *MemDB) Get(key []byte) ([]byte, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	value, ok := db.data[string(key)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (db *MemDB) Put(key []byte, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (db *MemDB) Delete(key []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.data, string(key))
	return nil
}

func (db *MemDB) Write(batch *Batch) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, op := range batch.ops {
		if op.delete {
			delete(db.data, string(op.key))
			continue
		}
		db.data[string(op.key)] = append([]byte(nil), op.value...)
	}
	return nil
}

// NewIterator snapshots the matching keys under the lock, so the iterator
// stays valid even if the store is mutated while it is walked.
func (db *MemDB) NewIterator(prefix []byte, reverse bool) Iterator {
	db.mu.RLock()
	keys := make([]string, 0)
	for k := range db.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = append([]byte(nil), db.data[k]...)
	}
	db.mu.RUnlock()
	if reverse {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
			values[i], values[j] = values[j], values[i]
		}
	}
	return &memIterator{keys: keys, values: values, pos: -1}
}

func (db *MemDB) Close() {}

type memIterator struct {
	keys   []string
	values [][]byte
	pos    int
}

func (it *memIterator) Next() bool {
	if it.pos+1 >= len(it.keys) {
		return false
	}
	it.pos++
	return true
}

func (it *memIterator) Key() []byte   { return []byte(it.keys[it.pos]) }
func (it *memIterator) Value() []byte { return it.values[it.pos] }
func (it *memIterator) Release()      {}

// --- Persistent DB ---

// LevelDB is a persistent key-value store backed by goleveldb.
type LevelDB struct {
	db *leveldb.DB
}

// NewLevelDB creates or opens a LevelDB database at the specified path.
func NewLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

func (ldb *LevelDB) Get(key []byte) ([]byte, bool, error) {
	value, err := ldb.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (ldb *LevelDB) Put(key []byte, value []byte) error {
	return ldb.db.Put(key, value, nil)
}

func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, nil)
}

func (ldb *LevelDB) Write(batch *Batch) error {
	lb := new(leveldb.Batch)
	for _, op := range batch.ops {
		if op.delete {
			lb.Delete(op.key)
			continue
		}
		lb.Put(op.key, op.value)
	}
	return ldb.db.Write(lb, nil)
}

func (ldb *LevelDB) NewIterator(prefix []byte, reverse bool) Iterator {
	it := ldb.db.NewIterator(util.BytesPrefix(prefix), nil)
	return &ldbIterator{it: it, reverse: reverse}
}

func (ldb *LevelDB) Close() {
	ldb.db.Close()
}

type ldbIterator struct {
	it      iterator.Iterator
	reverse bool
	started bool
}

func (it *ldbIterator) Next() bool {
	if !it.reverse {
		return it.it.Next()
	}
	if !it.started {
		it.started = true
		return it.it.Last()
	}
	return it.it.Prev()
}

func (it *ldbIterator) Key() []byte   { return it.it.Key() }
func (it *ldbIterator) Value() []byte { return it.it.Value() }
func (it *ldbIterator) Release()      { it.it.Release() }
