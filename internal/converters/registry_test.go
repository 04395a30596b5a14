package converters

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driven"
)

// fakeConverter implements driven.Converter for registry tests.
type fakeConverter struct {
	mimeTypes []string
	priority  int
	result    *driven.ConversionResult
	err       error
	calls     int
}

func (f *fakeConverter) SupportedMIMETypes() []string { return f.mimeTypes }
func (f *fakeConverter) Priority() int                { return f.priority }

func (f *fakeConverter) Convert(_ context.Context, _ *domain.RawDocument, _ []byte) (*driven.ConversionResult, error) {
	f.calls++
	return f.result, f.err
}

func TestRegistryDispatchByMIMEType(t *testing.T) {
	registry := NewRegistry()
	plain := &fakeConverter{
		mimeTypes: []string{"text/plain"},
		priority:  50,
		result:    &driven.ConversionResult{Text: "decoded"},
	}
	registry.Register(plain)

	doc := &domain.RawDocument{MIMEType: "text/plain"}
	result, err := registry.Convert(context.Background(), doc, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "decoded", result.Text)
	assert.Equal(t, 1, plain.calls)
}

func TestRegistryUnsupportedMIMEType(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeConverter{mimeTypes: []string{"text/plain"}, priority: 50})

	doc := &domain.RawDocument{MIMEType: "application/octet-stream"}
	_, err := registry.Convert(context.Background(), doc, nil)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))
}

func TestRegistryPriorityWins(t *testing.T) {
	registry := NewRegistry()
	low := &fakeConverter{mimeTypes: []string{"application/pdf"}, priority: 10, result: &driven.ConversionResult{Text: "low"}}
	high := &fakeConverter{mimeTypes: []string{"application/pdf"}, priority: 90, result: &driven.ConversionResult{Text: "high"}}
	registry.Register(low)
	registry.Register(high)

	doc := &domain.RawDocument{MIMEType: "application/pdf"}
	result, err := registry.Convert(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.Equal(t, "high", result.Text)
	assert.Zero(t, low.calls)
}

func TestRegistrySupportedMIMETypes(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeConverter{mimeTypes: []string{"text/plain", "text/csv"}, priority: 50})
	registry.Register(&fakeConverter{mimeTypes: []string{"text/plain", "application/pdf"}, priority: 90})

	types := registry.SupportedMIMETypes()
	assert.Equal(t, []string{"application/pdf", "text/csv", "text/plain"}, types)
}

func TestRegistryMissingMIMEType(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Convert(context.Background(), &domain.RawDocument{}, nil)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
