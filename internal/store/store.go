package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Kind names a collection in the session store. The string values double as
// the persisted key for each collection.
type Kind string

const (
	KindTrucks         Kind = "trucks"
	KindTelemetry      Kind = "telemetry"
	KindAlerts         Kind = "alerts"
	KindMlEvents       Kind = "mlEvents"
	KindHealthStatus   Kind = "healthStatus"
	KindOtaUpdates     Kind = "otaUpdates"
	KindRemoteCommands Kind = "remoteCommands"
)

// seededKey is the marker persisted once generation has committed.
const seededKey = "seeded"

// Kinds lists every collection in a fixed order, used by load/reset loops.
var Kinds = []Kind{
	KindTrucks, KindTelemetry, KindAlerts, KindMlEvents,
	KindHealthStatus, KindOtaUpdates, KindRemoteCommands,
}

// ErrNotFound is returned when a record id is absent from a collection.
var ErrNotFound = errors.New("record not found")

// Backend is the injectable key/value persistence under the store: a JSON
// blob per collection key. The memory backend serves tests, the file backend
// serves runtime sessions.
type Backend interface {
	Load(key string) (data []byte, ok bool, err error)
	Save(key string, data []byte) error
	Delete(key string) error
}

// Store holds the session's entity collections as decoded JSON documents.
// Every record is a JSON object carrying at least an "id" field. All access
// to a collection is serialized under its own mutex so readers never observe
// a partial update.
type Store struct {
	backend Backend

	mu     map[Kind]*sync.Mutex
	docs   map[Kind][]map[string]any
	seedMu sync.RWMutex
	seeded bool
}

// Open loads every collection and the seeded marker from the backend.
// Missing keys are treated as empty collections.
func Open(backend Backend) (*Store, error) {
	s := &Store{
		backend: backend,
		mu:      make(map[Kind]*sync.Mutex, len(Kinds)),
		docs:    make(map[Kind][]map[string]any, len(Kinds)),
	}
	for _, k := range Kinds {
		s.mu[k] = &sync.Mutex{}
		data, ok, err := backend.Load(string(k))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", k, err)
		}
		if !ok || len(data) == 0 {
			s.docs[k] = nil
			continue
		}
		var docs []map[string]any
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, fmt.Errorf("decode %s: %w", k, err)
		}
		s.docs[k] = docs
	}
	if data, ok, err := backend.Load(seededKey); err != nil {
		return nil, fmt.Errorf("load seeded marker: %w", err)
	} else if ok {
		s.seeded = string(data) == "true"
	}
	return s, nil
}

func (s *Store) lock(k Kind) *sync.Mutex {
	m, ok := s.mu[k]
	if !ok {
		panic(fmt.Sprintf("store: unknown collection %q", k))
	}
	return m
}

// persistLocked writes a collection's current documents through the backend.
// Caller must hold the collection mutex.
func (s *Store) persistLocked(k Kind) error {
	docs := s.docs[k]
	if docs == nil {
		docs = []map[string]any{}
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	return s.backend.Save(string(k), data)
}

// Get returns a copy of the collection's documents in insertion order.
func (s *Store) Get(k Kind) []map[string]any {
	m := s.lock(k)
	m.Lock()
	defer m.Unlock()
	out := make([]map[string]any, len(s.docs[k]))
	copy(out, s.docs[k])
	return out
}

// Put replaces the collection wholesale and persists it.
func (s *Store) Put(k Kind, docs []map[string]any) error {
	m := s.lock(k)
	m.Lock()
	defer m.Unlock()
	s.docs[k] = docs
	return s.persistLocked(k)
}

// Upsert merges patch into the record with the given id, creating the record
// when absent. The "id" and "truck_id" fields are never overwritten by a
// patch; identity and truck references are fixed at creation.
func (s *Store) Upsert(k Kind, id string, patch map[string]any) (map[string]any, error) {
	m := s.lock(k)
	m.Lock()
	defer m.Unlock()

	for i, doc := range s.docs[k] {
		if doc["id"] == id {
			merged := make(map[string]any, len(doc)+len(patch))
			for key, v := range doc {
				merged[key] = v
			}
			for key, v := range patch {
				if key == "id" || key == "truck_id" {
					continue
				}
				merged[key] = v
			}
			s.docs[k][i] = merged
			if err := s.persistLocked(k); err != nil {
				return nil, err
			}
			return merged, nil
		}
	}

	created := make(map[string]any, len(patch)+1)
	for key, v := range patch {
		created[key] = v
	}
	created["id"] = id
	s.docs[k] = append(s.docs[k], created)
	if err := s.persistLocked(k); err != nil {
		return nil, err
	}
	return created, nil
}

// Remove deletes the record with the given id.
func (s *Store) Remove(k Kind, id string) error {
	m := s.lock(k)
	m.Lock()
	defer m.Unlock()

	for i, doc := range s.docs[k] {
		if doc["id"] == id {
			s.docs[k] = append(s.docs[k][:i], s.docs[k][i+1:]...)
			return s.persistLocked(k)
		}
	}
	return ErrNotFound
}

// RemoveWhere deletes every record whose field equals value, returning the
// count removed. Used for cascading deletes of a truck's dependent records.
func (s *Store) RemoveWhere(k Kind, field string, value any) (int, error) {
	m := s.lock(k)
	m.Lock()
	defer m.Unlock()

	kept := s.docs[k][:0]
	removed := 0
	for _, doc := range s.docs[k] {
		if doc[field] == value {
			removed++
			continue
		}
		kept = append(kept, doc)
	}
	s.docs[k] = kept
	if removed == 0 {
		return 0, nil
	}
	return removed, s.persistLocked(k)
}

// Find returns a copy of the record with the given id.
func (s *Store) Find(k Kind, id string) (map[string]any, error) {
	m := s.lock(k)
	m.Lock()
	defer m.Unlock()
	for _, doc := range s.docs[k] {
		if doc["id"] == id {
			cp := make(map[string]any, len(doc))
			for key, v := range doc {
				cp[key] = v
			}
			return cp, nil
		}
	}
	return nil, ErrNotFound
}

// Count returns the number of records in a collection.
func (s *Store) Count(k Kind) int {
	m := s.lock(k)
	m.Lock()
	defer m.Unlock()
	return len(s.docs[k])
}

// Seeded reports whether seed data has been committed for this session.
func (s *Store) Seeded() bool {
	s.seedMu.RLock()
	defer s.seedMu.RUnlock()
	return s.seeded
}

// SetSeeded persists the seeded marker.
func (s *Store) SetSeeded(v bool) error {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()
	s.seeded = v
	val := "false"
	if v {
		val = "true"
	}
	return s.backend.Save(seededKey, []byte(val))
}

// Reset clears every collection and the seeded marker. The next Seed call
// will regenerate from scratch.
func (s *Store) Reset() error {
	// Lock all collections in a fixed order to avoid deadlock with
	// concurrent per-collection operations.
	keys := make([]string, 0, len(Kinds))
	for _, k := range Kinds {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, key := range keys {
		s.mu[Kind(key)].Lock()
	}
	defer func() {
		for _, key := range keys {
			s.mu[Kind(key)].Unlock()
		}
	}()

	for _, k := range Kinds {
		s.docs[k] = nil
		if err := s.backend.Delete(string(k)); err != nil {
			return err
		}
	}
	return s.SetSeeded(false)
}

// List decodes a collection into typed records.
func List[T any](s *Store, k Kind) ([]T, error) {
	docs := s.Get(k)
	data, err := json.Marshal(docs)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PutList replaces a collection with typed records.
func PutList[T any](s *Store, k Kind, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	var docs []map[string]any
	if err := json.Unmarshal(data, &docs); err != nil {
		return err
	}
	return s.Put(k, docs)
}

// FindAs decodes a single record into a typed value.
func FindAs[T any](s *Store, k Kind, id string) (T, error) {
	var out T
	doc, err := s.Find(k, id)
	if err != nil {
		return out, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(data, &out)
	return out, err
}

// ToDoc converts a typed record into its document form for Upsert patches.
func ToDoc(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
