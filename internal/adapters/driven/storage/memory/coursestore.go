package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driven"
)

// Ensure CourseStore implements the interface.
var _ driven.CourseStore = (*CourseStore)(nil)

// CourseStore is an in-memory implementation of driven.CourseStore.
type CourseStore struct {
	mu          sync.RWMutex
	schools     map[string]domain.School
	departments map[string]domain.Department
	courses     map[string]domain.Course
	professors  map[string]domain.Professor
}

// NewCourseStore creates a new in-memory course store.
func NewCourseStore() *CourseStore {
	return &CourseStore{
		schools:     make(map[string]domain.School),
		departments: make(map[string]domain.Department),
		courses:     make(map[string]domain.Course),
		professors:  make(map[string]domain.Professor),
	}
}

// AddCourse seeds a course directly, for tests.
func (s *CourseStore) AddCourse(course domain.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[course.ID] = course
}

// GetCourse retrieves a course by ID.
func (s *CourseStore) GetCourse(_ context.Context, id string) (*domain.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	course, ok := s.courses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &course, nil
}

// EnsureSchool finds a school by name or creates it.
func (s *CourseStore) EnsureSchool(_ context.Context, school domain.School) (*domain.School, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.schools {
		if existing.Name == school.Name {
			e := existing
			return &e, nil
		}
	}
	if school.ID == "" {
		school.ID = uuid.New().String()
	}
	if school.Slug == "" {
		school.Slug = domain.Slugify(school.Name)
	}
	s.schools[school.ID] = school
	return &school, nil
}

// EnsureDepartment finds a department by (school, name) or creates it.
func (s *CourseStore) EnsureDepartment(_ context.Context, dept domain.Department) (*domain.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.departments {
		if existing.SchoolID == dept.SchoolID && existing.Name == dept.Name {
			e := existing
			return &e, nil
		}
	}
	if dept.ID == "" {
		dept.ID = uuid.New().String()
	}
	s.departments[dept.ID] = dept
	return &dept, nil
}

// EnsureCourse finds a course by (department, name) or creates it.
func (s *CourseStore) EnsureCourse(_ context.Context, course domain.Course) (*domain.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.courses {
		if existing.DepartmentID == course.DepartmentID && existing.Name == course.Name {
			e := existing
			return &e, nil
		}
	}
	if course.ID == "" {
		course.ID = uuid.New().String()
	}
	if course.Slug == "" {
		course.Slug = domain.Slugify(course.Name)
	}
	course.CreatedAt = time.Now().UTC()
	s.courses[course.ID] = course
	return &course, nil
}

// EnsureProfessor finds a professor by name or creates it.
func (s *CourseStore) EnsureProfessor(_ context.Context, prof domain.Professor) (*domain.Professor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.professors {
		if existing.Name == prof.Name {
			e := existing
			return &e, nil
		}
	}
	if prof.ID == "" {
		prof.ID = uuid.New().String()
	}
	s.professors[prof.ID] = prof
	return &prof, nil
}

// Ensure LicenseStore implements the interface.
var _ driven.LicenseStore = (*LicenseStore)(nil)

// LicenseStore is an in-memory implementation of driven.LicenseStore.
type LicenseStore struct {
	mu       sync.RWMutex
	licenses map[string]domain.License
}

// NewLicenseStore creates a new in-memory license store.
func NewLicenseStore() *LicenseStore {
	return &LicenseStore{
		licenses: make(map[string]domain.License),
	}
}

// Ensure finds a license by name or creates it.
func (s *LicenseStore) Ensure(_ context.Context, license domain.License) (*domain.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.licenses {
		if existing.Name == license.Name {
			e := existing
			return &e, nil
		}
	}
	if license.ID == "" {
		license.ID = uuid.New().String()
	}
	s.licenses[license.ID] = license
	return &license, nil
}

// Get retrieves a license by ID.
func (s *LicenseStore) Get(_ context.Context, id string) (*domain.License, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	license, ok := s.licenses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &license, nil
}
