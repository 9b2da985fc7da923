package tablestore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MockClient is an in-memory tablestore used in mock mode and tests. It
// accepts every payload shape, which makes it the permissive end of the
// schema spectrum the submission engine has to cope with.
type MockClient struct {
	mu          sync.Mutex
	collections map[string][]Record
}

// NewMockClient creates an empty in-memory tablestore.
func NewMockClient() *MockClient {
	return &MockClient{
		collections: make(map[string][]Record),
	}
}

// Seed inserts a record directly, bypassing Create. Useful for priming
// discovery reads in tests and demos.
func (m *MockClient) Seed(collection string, record Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = append(m.collections[collection], cloneRecord(record))
}

// List returns up to limit records matching all filters.
func (m *MockClient) List(_ context.Context, collection string, filters map[string]string, limit int) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Record
	for _, rec := range m.collections[collection] {
		if !matchesFilters(rec, filters) {
			continue
		}
		out = append(out, cloneRecord(rec))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Create stores the record and assigns an id when the caller did not.
func (m *MockClient) Create(_ context.Context, collection string, record Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneRecord(record)
	if _, ok := stored["id"]; !ok {
		stored["id"] = uuid.New().String()
	}
	m.collections[collection] = append(m.collections[collection], stored)
	return cloneRecord(stored), nil
}

// Update merges the patch into the record with the given id.
func (m *MockClient) Update(_ context.Context, collection string, id string, patch Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range m.collections[collection] {
		if fmt.Sprintf("%v", rec["id"]) != id {
			continue
		}
		for k, v := range patch {
			rec[k] = v
		}
		return cloneRecord(rec), nil
	}
	return nil, &RejectionError{
		Kind:       RejectionOther,
		Message:    fmt.Sprintf("record %s not found in %s", id, collection),
		StatusCode: 404,
	}
}

func matchesFilters(rec Record, filters map[string]string) bool {
	for field, want := range filters {
		got, ok := rec[field]
		if !ok || fmt.Sprintf("%v", got) != want {
			return false
		}
	}
	return true
}

func cloneRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
