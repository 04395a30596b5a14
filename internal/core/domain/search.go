package domain

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// Offset is the number of results to skip.
	Offset int

	// CourseID filters results to a single course. Empty means all.
	CourseID string
}

// SearchResult represents a single search hit.
type SearchResult struct {
	// Note is the matched note.
	Note Note

	// Score is the relevance score from the search engine.
	Score float64

	// Snippet is an extract around the matched terms.
	Snippet string
}
