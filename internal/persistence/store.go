package persistence

import (
	"context"
	"sort"
	"sync"
)

// Collection names persisted by the service.
const (
	CollectionListings     = "listings"
	CollectionUsers        = "users"
	CollectionPayments     = "payments"
	CollectionTransactions = "transactions"
)

// RecordStore is the durable collection-level persistence abstraction.
// A collection is always read and written whole; it is the unit of
// consistency.
//
// Load decodes the named collection into out (a pointer to a slice). A
// missing or corrupt collection never fails the caller: the store emits
// a diagnostic and decodes an empty collection instead. Save replaces
// the whole collection in one atomic step, so a concurrent reader
// observes either the previous or the new content, never a mix.
//
// Mutate serializes a read-modify-write cycle: it acquires the lock of
// every named collection (in sorted order, so overlapping multi
// collection mutations cannot deadlock), runs fn, and releases on every
// exit path. All repository mutations go through Mutate.
type RecordStore interface {
	Load(ctx context.Context, collection string, out any) error
	Save(ctx context.Context, collection string, records any) error
	Mutate(ctx context.Context, fn func(ctx context.Context) error, collections ...string) error
	Ping(ctx context.Context) error
	Close()
}

// lockTable hands out one mutex per collection name. Only writers take
// these locks; readers rely on each backend's atomic replace semantics.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

func (t *lockTable) lockFor(collection string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.locks[collection]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[collection] = lock
	}
	return lock
}

// acquire locks the named collections in sorted, deduplicated order and
// returns a release function unlocking them in reverse.
func (t *lockTable) acquire(collections ...string) func() {
	names := make([]string, 0, len(collections))
	seen := make(map[string]struct{}, len(collections))
	for _, name := range collections {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)

	held := make([]*sync.Mutex, 0, len(names))
	for _, name := range names {
		lock := t.lockFor(name)
		lock.Lock()
		held = append(held, lock)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
