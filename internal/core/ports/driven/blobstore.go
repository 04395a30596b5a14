package driven

import "context"

// BlobStore is the external file storage service holding uploaded
// binaries. The pipeline fetches payloads from it for conversion; the bulk
// importer pushes external URLs into it.
type BlobStore interface {
	// Fetch downloads the binary at a stored-file URL. Service failures
	// are reported as *domain.ServiceError for retry classification.
	Fetch(ctx context.Context, sourceURL string) ([]byte, error)

	// Store asks the storage service to ingest an external URL, returning
	// the stored-file URL and the detected MIME type.
	Store(ctx context.Context, externalURL string) (storedURL, mimeType string, err error)
}
