package domain

import "time"

// School is the top-level institution grouping, referenced by bulk-import
// description files.
type School struct {
	// ID is the unique identifier.
	ID string

	// Name is the institution name.
	Name string

	// USDEID is the US Department of Education identifier, when known.
	USDEID int

	// Slug is the URL-safe form of Name.
	Slug string
}

// Department groups courses within a school.
type Department struct {
	// ID is the unique identifier.
	ID string

	// SchoolID references the owning school.
	SchoolID string

	// Name is the department name.
	Name string

	// URL is the department's page, when known.
	URL string
}

// Course owns raw documents and notes.
type Course struct {
	// ID is the unique identifier.
	ID string

	// DepartmentID references the owning department, when known.
	DepartmentID string

	// SchoolID references the owning school.
	SchoolID string

	// Name is the course title.
	Name string

	// Slug is the URL-safe form of Name.
	Slug string

	// InstructorName is the display name of the course's instructor.
	InstructorName string

	// CreatedAt is when the course record was created.
	CreatedAt time.Time
}

// Professor is an instructor associated with courses and departments.
type Professor struct {
	// ID is the unique identifier.
	ID string

	// Name is the professor's display name.
	Name string
}
