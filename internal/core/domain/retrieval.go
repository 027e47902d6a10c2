package domain

// Segment is one retrievable unit of source text, created during ingestion
// and never mutated afterwards.
type Segment struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	SourceTag string `json:"source_tag"`
}

// ScoredPassage is a per-query retrieval result. For embedding-backed
// sources the score is a relevance in [0,1]; web sources carry the engine's
// own score or the 1.0 sentinel.
type ScoredPassage struct {
	Text      string  `json:"text"`
	SourceTag string  `json:"source_tag"`
	Score     float64 `json:"score"`
}

// WebResult is one hit from an external web search engine.
type WebResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// SourceConfig describes one registered content source.
type SourceConfig struct {
	Name        string `yaml:"name"`
	Path        string `yaml:"path"`
	Description string `yaml:"description"`
}

// AugmentedContext is the final retrieval product handed to prompt
// assembly. Zero passages is a valid state: the session proceeds with the
// plain query.
type AugmentedContext struct {
	Query    string          `json:"query"`
	Passages []ScoredPassage `json:"passages"`
}
