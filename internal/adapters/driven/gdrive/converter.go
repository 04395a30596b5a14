// Package gdrive implements rich-format conversion through the Google
// Drive API: the payload is imported as a Drive document, exported as
// plain text and HTML, and the temporary file deleted.
package gdrive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driven"
	"github.com/karmanotes/pipeline/internal/logger"
)

// Ensure Converter implements the interface.
var _ driven.Converter = (*Converter)(nil)

const (
	// ConversionRate throttles Drive API calls (requests per second).
	// Each conversion makes up to four calls.
	ConversionRate = 2.0

	docTarget   = "application/vnd.google-apps.document"
	slideTarget = "application/vnd.google-apps.presentation"

	// exportLimit caps the exported content size.
	exportLimit = 10 << 20
)

// targets maps supported source MIME types to the Drive type the upload
// is converted into. Documents export both text and HTML; presentations
// export text only.
var targets = map[string]string{
	"application/pdf":    docTarget,
	"application/msword": docTarget,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": docTarget,
	"application/vnd.oasis.opendocument.text":                                 docTarget,
	"application/rtf":               docTarget,
	"text/rtf":                      docTarget,
	"text/enml":                     docTarget,
	"application/vnd.ms-powerpoint": slideTarget,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": slideTarget,
}

// Converter converts rich documents by round-tripping them through
// Google Drive.
type Converter struct {
	svc     *drive.Service
	limiter *rate.Limiter
}

// New creates a converter authenticated from an OAuth2 client credentials
// file and a stored token file.
func New(ctx context.Context, credentialsFile, tokenFile string) (*Converter, error) {
	credJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading drive credentials: %w", err)
	}
	config, err := google.ConfigFromJSON(credJSON, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("parsing drive credentials: %w", err)
	}

	token, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, err
	}

	svc, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	return NewWithService(svc), nil
}

// NewWithService creates a converter over an existing Drive service.
func NewWithService(svc *drive.Service) *Converter {
	return &Converter{
		svc:     svc,
		limiter: rate.NewLimiter(rate.Limit(ConversionRate), 1),
	}
}

// SupportedMIMETypes returns the MIME types this converter handles.
func (c *Converter) SupportedMIMETypes() []string {
	types := make([]string, 0, len(targets))
	for mime := range targets {
		types = append(types, mime)
	}
	return types
}

// Priority returns the selection priority.
func (c *Converter) Priority() int {
	return 100
}

// Convert uploads the payload with Drive-side conversion, exports the
// result and deletes the temporary Drive file. Export content that comes
// back empty means Drive could not read the document.
func (c *Converter) Convert(ctx context.Context, doc *domain.RawDocument, payload []byte) (*driven.ConversionResult, error) {
	target, ok := targets[doc.MIMEType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, doc.MIMEType)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", domain.ErrContentUnextractable)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	file, err := c.svc.Files.Create(&drive.File{
		Name:     doc.Name,
		MimeType: target,
	}).Media(bytes.NewReader(payload), googleapi.ContentType(doc.MIMEType)).
		Fields("id").Context(ctx).Do()
	if err != nil {
		return nil, classify("uploading to conversion service", err)
	}

	defer func() {
		if err := c.svc.Files.Delete(file.Id).Context(ctx).Do(); err != nil {
			logger.Warn("Failed to delete temporary drive file %s: %v", file.Id, err)
		}
	}()

	text, err := c.export(ctx, file.Id, "text/plain")
	if err != nil {
		return nil, err
	}

	var html string
	if target == docTarget {
		html, err = c.export(ctx, file.Id, "text/html")
		if err != nil {
			return nil, err
		}
	}

	if strings.TrimSpace(text) == "" && strings.TrimSpace(html) == "" {
		return nil, fmt.Errorf("%w: conversion service returned no content", domain.ErrContentUnextractable)
	}
	return &driven.ConversionResult{Text: text, HTML: html}, nil
}

func (c *Converter) export(ctx context.Context, fileID, mimeType string) (string, error) {
	resp, err := c.svc.Files.Export(fileID, mimeType).Context(ctx).Download()
	if err != nil {
		return "", classify("exporting "+mimeType, err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(io.LimitReader(resp.Body, exportLimit))
	if err != nil {
		return "", fmt.Errorf("reading %s export: %w", mimeType, err)
	}
	return string(content), nil
}

// classify maps Drive API errors to domain errors. HTTP-level failures
// become ServiceError so the retry policy can tell throttling and
// outages apart from bad documents.
func classify(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return fmt.Errorf("%s: %w", op, &domain.ServiceError{
			StatusCode: gerr.Code,
			Message:    gerr.Message,
		})
	}
	return fmt.Errorf("%s: %w", op, err)
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening drive token: %w", err)
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("parsing drive token: %w", err)
	}
	return token, nil
}
