package domain

// License is reference data attached to a note or raw document at creation
// time. Immutable once set.
type License struct {
	// ID is the unique identifier.
	ID string

	// Name is the short license identifier (e.g. "cc-by-nc-3.0").
	Name string

	// HTML is the attribution snippet rendered alongside the note.
	HTML string
}
