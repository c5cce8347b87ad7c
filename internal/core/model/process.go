package model

import "time"

// DeduplicationProcess is one deduplication run over a batch of uploaded files.
// Status is persisted as its display string; CurrentStage mirrors it but can
// drift after partial writes and is repaired by the reconciliation pass.
type DeduplicationProcess struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Username         string     `json:"username"`
	CreatedBy        string     `json:"created_by,omitempty"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	ProcessStartDate *time.Time `json:"process_start_date,omitempty"`
	ProcessEndDate   *time.Time `json:"process_end_date,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CleanupDate      *time.Time `json:"cleanup_date,omitempty"`
	CleanupUsername  string     `json:"cleanup_username,omitempty"`
	FileIds          []string   `json:"file_ids"`
	FileCount        int        `json:"file_count"`
	ProcessedFiles   int        `json:"processed_files"`
	CompletionNotes  string     `json:"completion_notes,omitempty"`
	CurrentStage     string     `json:"current_stage,omitempty"`
}

// CurrentStatus parses the stored status string leniently.
func (p *DeduplicationProcess) CurrentStatus() ProcessStatus {
	return ParseProcessStatus(p.Status)
}

// FileRecord is one uploaded image tracked by a deduplication process.
// Base64 holds a reference to the encoded payload, not the bytes themselves.
type FileRecord struct {
	ID               string     `json:"id"`
	FileName         string     `json:"file_name"`
	Base64           string     `json:"base64,omitempty"`
	Status           string     `json:"status"`
	ProcessStatus    string     `json:"process_status"`
	ProcessID        string     `json:"process_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	ProcessStartDate *time.Time `json:"process_start_date,omitempty"`
	FaceID           string     `json:"face_id,omitempty"`
	Deduplicated     bool       `json:"deduplicated"`
}

func (f *FileRecord) CurrentStatus() FileStatus {
	return ParseFileStatus(f.Status)
}

func (f *FileRecord) CurrentProcessStatus() FileProcessStatus {
	return ParseFileProcessStatus(f.ProcessStatus)
}
