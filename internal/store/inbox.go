package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nhle/push-center/internal/model"
)

// KeyPrefix namespaces every mirror entry written by the Inbox.
const KeyPrefix = "notification_"

// DefaultCapacity is the number of most-recent records kept in memory.
const DefaultCapacity = 5

// Inbox is the authoritative two-tier store of notification records: a
// bounded in-memory cache for fast lookup plus a durable key-value mirror
// for entries that must survive process restarts.
//
// The durable tier may hold entries already evicted from memory, never the
// reverse, except transiently inside Put.
type Inbox struct {
	mu       sync.Mutex
	mem      map[string]model.NotificationRecord
	mirror   KeyValue
	capacity int
}

// NewInbox creates an Inbox over the given durable mirror. A capacity of
// zero or less falls back to DefaultCapacity.
func NewInbox(mirror KeyValue, capacity int) *Inbox {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Inbox{
		mem:      make(map[string]model.NotificationRecord),
		mirror:   mirror,
		capacity: capacity,
	}
}

// mirrorKey derives the namespaced durable key for a record id.
func mirrorKey(id string) string {
	return KeyPrefix + id
}

// Put upserts a record into both tiers. Inserting an id that already
// exists overwrites the previous record. A failed mirror write rolls the
// in-memory tier back, so memory is never ahead of the durable tier once
// Put returns.
func (in *Inbox) Put(ctx context.Context, rec model.NotificationRecord) error {
	if rec.ID == "" {
		return errors.New("store: record has no id")
	}

	in.mu.Lock()
	prev, existed := in.mem[rec.ID]
	in.mem[rec.ID] = rec
	in.mu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		in.restore(rec.ID, prev, existed)
		return fmt.Errorf("encoding record %s: %w", rec.ID, err)
	}
	if err := in.mirror.Set(ctx, mirrorKey(rec.ID), string(data)); err != nil {
		in.restore(rec.ID, prev, existed)
		return fmt.Errorf("mirroring record %s: %w", rec.ID, err)
	}

	return nil
}

// restore puts the in-memory tier back in its pre-Put state after a
// failed mirror write.
func (in *Inbox) restore(id string, prev model.NotificationRecord, existed bool) {
	in.mu.Lock()
	if existed {
		in.mem[id] = prev
	} else {
		delete(in.mem, id)
	}
	in.mu.Unlock()
}

// Get resolves a record by id, trying the in-memory tier first and the
// durable mirror second. Returns ErrNotFound when absent from both.
func (in *Inbox) Get(ctx context.Context, id string) (*model.NotificationRecord, error) {
	in.mu.Lock()
	rec, ok := in.mem[id]
	in.mu.Unlock()
	if ok {
		return &rec, nil
	}

	value, err := in.mirror.Get(ctx, mirrorKey(id))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading mirror for %s: %w", id, err)
	}

	var stored model.NotificationRecord
	if err := json.Unmarshal([]byte(value), &stored); err != nil {
		return nil, fmt.Errorf("decoding mirror entry for %s: %w", id, err)
	}

	return &stored, nil
}

// MostRecentChat returns the chat record with the highest ReceivedAt,
// scanning memory first and falling back to the durable mirror. Returns
// ErrNotFound when no chat record exists in either tier.
func (in *Inbox) MostRecentChat(ctx context.Context) (*model.NotificationRecord, error) {
	var best *model.NotificationRecord

	in.mu.Lock()
	for _, rec := range in.mem {
		if !rec.IsChat() {
			continue
		}
		if best == nil || rec.ReceivedAt > best.ReceivedAt {
			r := rec
			best = &r
		}
	}
	in.mu.Unlock()

	if best != nil {
		return best, nil
	}

	records, err := in.mirrorRecords(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		rec := records[i]
		if !rec.IsChat() {
			continue
		}
		if best == nil || rec.ReceivedAt > best.ReceivedAt {
			best = &records[i]
		}
	}

	if best == nil {
		return nil, ErrNotFound
	}
	return best, nil
}

// Evict removes a record from both tiers. Evicting an absent id is a
// no-op, which makes duplicate clicks on a consumed alert harmless.
func (in *Inbox) Evict(ctx context.Context, id string) error {
	in.mu.Lock()
	delete(in.mem, id)
	in.mu.Unlock()

	if err := in.mirror.Remove(ctx, mirrorKey(id)); err != nil {
		return fmt.Errorf("removing mirror entry for %s: %w", id, err)
	}
	return nil
}

// EvictChats removes every chat record from both tiers. The click router
// calls this after routing a chat click so stale room descriptors cannot
// be replayed.
func (in *Inbox) EvictChats(ctx context.Context) error {
	in.mu.Lock()
	for id, rec := range in.mem {
		if rec.IsChat() {
			delete(in.mem, id)
		}
	}
	in.mu.Unlock()

	records, err := in.mirrorRecords(ctx)
	if err != nil {
		return err
	}

	var stale []string
	for _, rec := range records {
		if rec.IsChat() {
			stale = append(stale, mirrorKey(rec.ID))
		}
	}
	if err := in.mirror.MultiRemove(ctx, stale); err != nil {
		return fmt.Errorf("removing chat mirror entries: %w", err)
	}

	return nil
}

// PruneToCapacity keeps only the configured number of most-recent records
// in the in-memory tier. The durable mirror is untouched; the startup
// sweep bounds its growth instead.
func (in *Inbox) PruneToCapacity() {
	in.mu.Lock()
	defer in.mu.Unlock()

	if len(in.mem) <= in.capacity {
		return
	}

	records := make([]model.NotificationRecord, 0, len(in.mem))
	for _, rec := range in.mem {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ReceivedAt > records[j].ReceivedAt
	})

	for _, rec := range records[in.capacity:] {
		delete(in.mem, rec.ID)
	}
}

// ClearAll wipes both tiers. Used on logout and session reset.
func (in *Inbox) ClearAll(ctx context.Context) error {
	in.mu.Lock()
	in.mem = make(map[string]model.NotificationRecord)
	in.mu.Unlock()

	keys, err := in.mirror.Keys(ctx, KeyPrefix)
	if err != nil {
		return fmt.Errorf("listing mirror entries: %w", err)
	}
	if err := in.mirror.MultiRemove(ctx, keys); err != nil {
		return fmt.Errorf("clearing mirror entries: %w", err)
	}

	return nil
}

// SweepExpired removes mirror entries whose ReceivedAt is older than ttl,
// along with entries that no longer decode. Returns the number of entries
// removed. Intended to run once at startup.
func (in *Inbox) SweepExpired(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().Add(-ttl).UnixMilli()

	keys, err := in.mirror.Keys(ctx, KeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("listing mirror entries: %w", err)
	}

	var stale []string
	for _, key := range keys {
		value, err := in.mirror.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("reading mirror entry %q: %w", key, err)
		}

		var rec model.NotificationRecord
		if err := json.Unmarshal([]byte(value), &rec); err != nil {
			// Undecodable entries are dead weight; sweep them too.
			stale = append(stale, key)
			continue
		}
		if rec.ReceivedAt < cutoff {
			stale = append(stale, key)
		}
	}

	if err := in.mirror.MultiRemove(ctx, stale); err != nil {
		return 0, fmt.Errorf("removing expired entries: %w", err)
	}

	return len(stale), nil
}

// Snapshot returns a copy of the in-memory tier sorted most-recent first,
// for display purposes.
func (in *Inbox) Snapshot() []model.NotificationRecord {
	in.mu.Lock()
	defer in.mu.Unlock()

	records := make([]model.NotificationRecord, 0, len(in.mem))
	for _, rec := range in.mem {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ReceivedAt > records[j].ReceivedAt
	})
	return records
}

// MemorySize reports the number of records currently held in memory.
func (in *Inbox) MemorySize() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.mem)
}

// mirrorRecords loads and decodes every record in the durable tier.
// Entries that fail to decode are skipped.
func (in *Inbox) mirrorRecords(ctx context.Context) ([]model.NotificationRecord, error) {
	keys, err := in.mirror.Keys(ctx, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing mirror entries: %w", err)
	}

	records := make([]model.NotificationRecord, 0, len(keys))
	for _, key := range keys {
		value, err := in.mirror.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading mirror entry %q: %w", key, err)
		}

		var rec model.NotificationRecord
		if err := json.Unmarshal([]byte(value), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}
