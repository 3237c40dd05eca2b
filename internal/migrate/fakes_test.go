package migrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shaiso/ContentImport/internal/domain"
)

// memStates — StateStore в памяти.
type memStates struct {
	mu     sync.Mutex
	states map[string]domain.JobState
	calls  []string
}

func newMemStates() *memStates {
	return &memStates{states: make(map[string]domain.JobState)}
}

func (s *memStates) Get(_ context.Context, jobID string) (domain.JobState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[jobID]
	return st, ok, nil
}

func (s *memStates) update(jobID string, fn func(*domain.JobState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[jobID]
	if !ok {
		st = domain.JobState{JobID: jobID, Status: domain.JobStatusIdle}
	}
	fn(&st)
	s.states[jobID] = st
}

func (s *memStates) SetStatus(_ context.Context, jobID string, status domain.JobStatus) error {
	s.calls = append(s.calls, "status:"+string(status))
	s.update(jobID, func(st *domain.JobState) { st.Status = status })
	return nil
}

func (s *memStates) SetInterrupt(_ context.Context, jobID string, result domain.RunResult) error {
	s.update(jobID, func(st *domain.JobState) { st.Interrupt = result })
	return nil
}

func (s *memStates) SetLastResult(_ context.Context, jobID string, result domain.RunResult) error {
	s.update(jobID, func(st *domain.JobState) { st.LastResult = result })
	return nil
}

// memIDMap — IDMap в памяти.
type memIDMap struct {
	mu      sync.Mutex
	entries map[string]map[string]MapEntry
}

func newMemIDMap() *memIDMap {
	return &memIDMap{entries: make(map[string]map[string]MapEntry)}
}

func (m *memIDMap) Lookup(_ context.Context, jobID, sourceID string) (*MapEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[jobID][sourceID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *memIDMap) Save(_ context.Context, jobID string, entry MapEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[jobID] == nil {
		m.entries[jobID] = make(map[string]MapEntry)
	}
	m.entries[jobID][entry.SourceID] = entry
	return nil
}

func (m *memIDMap) PrepareUpdate(_ context.Context, jobID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, e := range m.entries[jobID] {
		e.Status = MapStatusNeedsUpdate
		m.entries[jobID][id] = e
		n++
	}
	return n, nil
}

func (m *memIDMap) count(jobID string, status MapStatus) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries[jobID] {
		if e.Status == status {
			n++
		}
	}
	return n
}

// memDestination — Destination в памяти.
type memDestination struct {
	mu       sync.Mutex
	records  map[string]map[string]any
	langcode string
	failSKU  string
	onImport func()
}

func (d *memDestination) Import(_ context.Context, values map[string]any, existing string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.onImport != nil {
		d.onImport()
	}

	sku, _ := values["sku"].(string)
	if sku == d.failSKU {
		return "", fmt.Errorf("rejected %s", sku)
	}
	id := sku + ":" + d.langcode
	d.records[id] = values
	return id, nil
}

func testPlugins(dest *memDestination) *Plugins {
	p := DefaultPlugins()
	p.RegisterDestination("memory", func(cfg map[string]any) (Destination, error) {
		if lc, ok := cfg["langcode"].(string); ok {
			dest.langcode = lc
		}
		return dest, nil
	})
	return p
}

func newMemDestination() *memDestination {
	return &memDestination{records: make(map[string]map[string]any), langcode: "en"}
}

// writeCSV создаёт CSV файл во временной директории.
func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

const productsCSV = `sku,name,price
A-1,Lamp,10
A-2,Chair,25
A-3,Table,90
`

// staticLanguages — Languages для тестов.
type staticLanguages []domain.Language

func (l staticLanguages) List() []domain.Language { return l }
func (l staticLanguages) Default() string         { return "en" }
