package domain

import "time"

// DocumentState tracks a raw document through the conversion lifecycle.
type DocumentState string

const (
	// StateUploaded is the initial state after intake persists the record.
	StateUploaded DocumentState = "uploaded"

	// StateConverting means a worker currently owns the document.
	StateConverting DocumentState = "converting"

	// StateConverted means a complete Note was produced. The raw document
	// record is deleted shortly after entering this state.
	StateConverted DocumentState = "converted"

	// StateFailedRetryable means the last attempt hit a transient service
	// error; the queue will redeliver the job.
	StateFailedRetryable DocumentState = "failed_retryable"

	// StateFailedTerminal means conversion cannot succeed. The document is
	// kept flagged for manual follow-up and never reprocessed automatically.
	StateFailedTerminal DocumentState = "failed_terminal"
)

// transitions lists the legal state changes.
var transitions = map[DocumentState][]DocumentState{
	StateUploaded:        {StateConverting},
	StateConverting:      {StateConverted, StateFailedRetryable, StateFailedTerminal},
	// A retryable document converts again, or goes terminal when the
	// retry ceiling is reached.
	StateFailedRetryable: {StateConverting, StateFailedTerminal},
	StateConverted:       {},
	StateFailedTerminal:  {},
}

// CanTransition reports whether moving from s to next is legal.
func (s DocumentState) CanTransition(next DocumentState) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Final reports whether the state is an end state.
func (s DocumentState) Final() bool {
	return s == StateConverted || s == StateFailedTerminal
}

// RawDocument is an uploaded file pending conversion into a Note.
// The record is owned by the ingestion pipeline from creation until
// conversion completes, at which point it is deleted.
type RawDocument struct {
	// ID is the unique identifier for the document.
	ID string

	// CourseID references the course the upload belongs to.
	CourseID string

	// Name is the display name given at upload time.
	Name string

	// Slug is derived from Name; carried over to the Note on success.
	Slug string

	// SourceURL is the stored-file URL in the external storage service.
	SourceURL string

	// UpstreamLink is the original external URL for bulk-imported
	// documents. Empty for direct uploads.
	UpstreamLink string

	// MIMEType is the declared content type (e.g. "application/pdf").
	MIMEType string

	// LicenseID references the license attached at creation. Immutable.
	LicenseID string

	// Tags are free-form labels carried over to the Note.
	Tags []string

	// UploaderIP is the client address recorded at intake.
	UploaderIP string

	// UploadedAt is when the record was created.
	UploadedAt time.Time

	// State is the document's position in the conversion lifecycle.
	State DocumentState

	// Attempts counts conversion attempts so far.
	Attempts int

	// LastError holds the most recent failure detail, for follow-up.
	LastError string
}

// Processed reports whether conversion has completed. An unprocessed
// document always has a conversion job pending or a terminal failure on
// record; it is never silently abandoned.
func (d *RawDocument) Processed() bool {
	return d.State == StateConverted
}
