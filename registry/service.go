package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"credocarbon/config"
	"credocarbon/storage"
)

const dateLayout = "2006-01-02"

// Service mediates every read and write of the registry and insights
// documents. Writes are whole-document read-modify-write cycles, so a mutex
// serializes them.
type Service struct {
	store        storage.Store
	registryFile string
	insightsFile string

	mu  sync.Mutex
	now func() time.Time
}

// NewService creates a Service over the given document store.
func NewService(store storage.Store, cfg *config.Config) *Service {
	return &Service{
		store:        store,
		registryFile: cfg.RegistryFile,
		insightsFile: cfg.InsightsFile,
		now:          time.Now,
	}
}

// Registry loads the current registry document.
func (s *Service) Registry(ctx context.Context) (*Data, error) {
	raw, err := s.store.ReadDocument(ctx, s.registryFile)
	if err != nil {
		return nil, err
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse registry document: %w", err)
	}
	return &data, nil
}

// SaveRegistry persists the registry document, stamping lastUpdated and
// recomputing the totals block.
func (s *Service) SaveRegistry(ctx context.Context, data *Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveRegistryLocked(ctx, data)
}

func (s *Service) saveRegistryLocked(ctx context.Context, data *Data) error {
	totals := CalculateTotals(data)
	data.Totals = &totals
	data.LastUpdated = s.now().Format(dateLayout)

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry document: %w", err)
	}
	return s.store.WriteDocument(ctx, s.registryFile, raw)
}

// AddEntry appends an entry to the named list and persists the document.
func (s *Service) AddEntry(ctx context.Context, kind Kind, entry Entry) (*Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.Registry(ctx)
	if err != nil {
		return nil, err
	}
	data.AddEntry(kind, entry)
	if err := s.saveRegistryLocked(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

// UpdateEntry replaces an entry by ID and persists the document. Returns
// false when no entry matched; the document is left untouched in that case.
func (s *Service) UpdateEntry(ctx context.Context, kind Kind, id string, entry Entry) (*Data, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.Registry(ctx)
	if err != nil {
		return nil, false, err
	}
	if !data.UpdateEntry(kind, id, entry) {
		return nil, false, nil
	}
	if err := s.saveRegistryLocked(ctx, data); err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// DeleteEntry removes an entry by ID and persists the document. Returns false
// when no entry matched.
func (s *Service) DeleteEntry(ctx context.Context, kind Kind, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.Registry(ctx)
	if err != nil {
		return false, err
	}
	if !data.DeleteEntry(kind, id) {
		return false, nil
	}
	if err := s.saveRegistryLocked(ctx, data); err != nil {
		return false, err
	}
	return true, nil
}

// Insights loads the current insights document. Its shape is owned by the
// frontend; the backend treats it as an opaque JSON object.
func (s *Service) Insights(ctx context.Context) (map[string]any, error) {
	raw, err := s.store.ReadDocument(ctx, s.insightsFile)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse insights document: %w", err)
	}
	return data, nil
}

// SaveInsights persists the insights document, stamping lastUpdated.
func (s *Service) SaveInsights(ctx context.Context, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data["lastUpdated"] = s.now().Format(dateLayout)
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode insights document: %w", err)
	}
	return s.store.WriteDocument(ctx, s.insightsFile, raw)
}
