package domain

import "time"

// DocumentImage is an uploaded document handed to one pipeline run.
// Owned by the caller; never persisted by the core.
type DocumentImage struct {
	Filename string
	MimeType string
	Data     []byte
}

// Analysis is the output of one completed pipeline run. RawText is
// returned so a shell can display the transcription even though only
// category and summary are persisted.
type Analysis struct {
	Category string `json:"category"`
	Summary  string `json:"summary"`
	RawText  string `json:"raw_text"`
}

// AnalysisRecord is one persisted result of a completed pipeline run.
// Immutable once written; retrieved newest-first by ID.
type AnalysisRecord struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
	Filename  string    `json:"filename"`
	Category  string    `json:"category"`
	Summary   string    `json:"summary"`
}
