package internal

import "time"

// Document is the output of the extraction boundary: plain text plus the
// metadata the extractor could recover from the source file.
type Document struct {
	Text         string `json:"text"`
	Format       string `json:"format"`
	Pages        int    `json:"pages,omitempty"`
	Paragraphs   int    `json:"paragraphs,omitempty"`
	Lines        int    `json:"lines,omitempty"`
	Method       string `json:"method"`
	DeclaredLang string `json:"declared_lang,omitempty"`
}

// JobRecord is one translation job as persisted by the store for later
// inspection with "peredoc jobs list".
type JobRecord struct {
	ID           string    `json:"id"`
	InputFile    string    `json:"input_file"`
	SourceLang   string    `json:"source_lang"`
	TargetLang   string    `json:"target_lang"`
	Status       string    `json:"status"`
	ChunkCount   int       `json:"chunk_count"`
	FailedChunks int       `json:"failed_chunks"`
	CreatedAt    time.Time `json:"created_at"`
}

// ChunkRecord is the per-chunk diagnostic row attached to a JobRecord.
type ChunkRecord struct {
	JobID     string `json:"job_id"`
	Index     int    `json:"chunk_idx"`
	Backend   string `json:"backend"`
	Attempts  int    `json:"attempts"`
	LatencyMs int    `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}
