package services

import (
	"context"
	"sync"

	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driven"
)

// mockQueue records enqueued document IDs.
type mockQueue struct {
	mu       sync.Mutex
	enqueued []string
	err      error
}

func (m *mockQueue) Enqueue(_ context.Context, rawDocumentID string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueued = append(m.enqueued, rawDocumentID)
	return nil
}

func (m *mockQueue) Start(ctx context.Context) error { <-ctx.Done(); return ctx.Err() }
func (m *mockQueue) Stop()                           {}

// mockRegistry converts with a scripted result, recording calls.
type mockRegistry struct {
	mu        sync.Mutex
	supported []string
	result    *driven.ConversionResult
	errs      []error // consumed per call; nil entries mean success
	calls     int
}

func (m *mockRegistry) Convert(_ context.Context, _ *domain.RawDocument, _ []byte) (*driven.ConversionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return m.result, nil
}

func (m *mockRegistry) Register(driven.Converter) {}

func (m *mockRegistry) SupportedMIMETypes() []string { return m.supported }

// mockBlobStore serves payloads by URL.
type mockBlobStore struct {
	payloads map[string][]byte
	fetchErr error

	storeURL  string
	storeMIME string
	storeErr  error
	stored    []string
}

func (m *mockBlobStore) Fetch(_ context.Context, sourceURL string) ([]byte, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	if payload, ok := m.payloads[sourceURL]; ok {
		return payload, nil
	}
	return nil, &domain.ServiceError{StatusCode: 404, Message: "no such file"}
}

func (m *mockBlobStore) Store(_ context.Context, externalURL string) (string, string, error) {
	if m.storeErr != nil {
		return "", "", m.storeErr
	}
	m.stored = append(m.stored, externalURL)
	return m.storeURL, m.storeMIME, nil
}

// mockSearchEngine records index operations.
type mockSearchEngine struct {
	mu       sync.Mutex
	indexed  map[string]domain.Note
	indexErr error
	hits     []driven.SearchHit
}

func newMockSearchEngine() *mockSearchEngine {
	return &mockSearchEngine{indexed: make(map[string]domain.Note)}
}

func (m *mockSearchEngine) Index(_ context.Context, note *domain.Note) error {
	if m.indexErr != nil {
		return m.indexErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexed[note.ID] = *note
	return nil
}

func (m *mockSearchEngine) Delete(_ context.Context, noteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.indexed, noteID)
	return nil
}

func (m *mockSearchEngine) Search(_ context.Context, _ string, _ domain.SearchOptions) ([]driven.SearchHit, error) {
	return m.hits, nil
}

func (m *mockSearchEngine) Close() error { return nil }

// mockOrchestrator scripts ConvertNow outcomes.
type mockOrchestrator struct {
	mu        sync.Mutex
	converted []string
	err       error // returned by every ConvertNow when set
}

func newMockOrchestrator() *mockOrchestrator {
	return &mockOrchestrator{}
}

func (m *mockOrchestrator) Process(ctx context.Context, rawDocumentID string) error {
	return m.ConvertNow(ctx, rawDocumentID)
}

func (m *mockOrchestrator) ConvertNow(_ context.Context, rawDocumentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.converted = append(m.converted, rawDocumentID)
	return nil
}

func (m *mockOrchestrator) Discard(context.Context, string, error) {}
