package driven

import (
	"context"

	"github.com/karmanotes/pipeline/internal/core/domain"
)

// CourseStore persists the reference entities uploads attach to.
// The Ensure methods have get-or-create semantics for the bulk importer.
type CourseStore interface {
	// GetCourse retrieves a course by ID.
	GetCourse(ctx context.Context, id string) (*domain.Course, error)

	// EnsureSchool finds a school by name or creates it.
	EnsureSchool(ctx context.Context, school domain.School) (*domain.School, error)

	// EnsureDepartment finds a department by (school, name) or creates it.
	EnsureDepartment(ctx context.Context, dept domain.Department) (*domain.Department, error)

	// EnsureCourse finds a course by (department, name) or creates it.
	EnsureCourse(ctx context.Context, course domain.Course) (*domain.Course, error)

	// EnsureProfessor finds a professor by name or creates it.
	EnsureProfessor(ctx context.Context, prof domain.Professor) (*domain.Professor, error)
}

// LicenseStore persists license reference data.
type LicenseStore interface {
	// Ensure finds a license by name or creates it.
	Ensure(ctx context.Context, license domain.License) (*domain.License, error)

	// Get retrieves a license by ID.
	Get(ctx context.Context, id string) (*domain.License, error)
}
