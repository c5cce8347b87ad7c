package model

import "time"

// Conflict records an ambiguous match between two files pending resolution.
type Conflict struct {
	ID              string     `json:"id"`
	ProcessID       string     `json:"process_id"`
	FileName        string     `json:"file_name"`
	MatchedFileName string     `json:"matched_file_name"`
	Confidence      float64    `json:"confidence"`
	Status          string     `json:"status"`
	Resolution      string     `json:"resolution,omitempty"`
	ResolvedBy      string     `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (c *Conflict) CurrentStatus() ConflictStatus {
	return ParseConflictStatus(c.Status)
}

// DuplicateMatch is one matched counterpart inside a DuplicatedRecord.
type DuplicateMatch struct {
	FileID     string  `json:"file_id"`
	FileName   string  `json:"file_name"`
	Confidence float64 `json:"confidence"`
	PersonID   string  `json:"person_id,omitempty"`
}

// DuplicatedRecord is a pending-or-confirmed finding that one original file
// has one or more duplicate counterparts.
type DuplicatedRecord struct {
	ID               string           `json:"id"`
	ProcessID        string           `json:"process_id"`
	OriginalFileID   string           `json:"original_file_id"`
	OriginalFileName string           `json:"original_file_name"`
	Duplicates       []DuplicateMatch `json:"duplicates"`
	Status           string           `json:"status"`
	ConfirmedBy      string           `json:"confirmed_by,omitempty"`
	ConfirmedAt      *time.Time       `json:"confirmed_at,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	DetectedAt       time.Time        `json:"detected_at"`
}

func (d *DuplicatedRecord) CurrentStatus() DuplicateRecordStatus {
	return ParseDuplicateRecordStatus(d.Status)
}

// DeduplicationException is an unresolved comparison outcome with multiple
// candidate matches, awaiting review.
type DeduplicationException struct {
	ID                 string         `json:"id"`
	ProcessID          string         `json:"process_id"`
	FileName           string         `json:"file_name"`
	CandidateFileNames []string       `json:"candidate_file_names"`
	ComparisonScore    float64        `json:"comparison_score"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	Status             string         `json:"status"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func (e *DeduplicationException) CurrentStatus() ExceptionStatus {
	return ParseExceptionStatus(e.Status)
}

// MetadataString returns the metadata value under key as a string, or
// fallback when the key is absent or not string-convertible.
func (e *DeduplicationException) MetadataString(key, fallback string) string {
	if e.Metadata == nil {
		return fallback
	}
	v, ok := e.Metadata[key]
	if !ok {
		return fallback
	}
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	return s
}

// MergeMetadata extends the metadata map with extra keys. New keys overwrite
// existing ones; the map is never wholesale replaced.
func (e *DeduplicationException) MergeMetadata(extra map[string]any) {
	if len(extra) == 0 {
		return
	}
	if e.Metadata == nil {
		e.Metadata = make(map[string]any, len(extra))
	}
	for k, v := range extra {
		e.Metadata[k] = v
	}
}
