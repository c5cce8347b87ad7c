package model

// AutoResolveResult reports one auto-resolution sweep over a process's
// unresolved conflicts.
type AutoResolveResult struct {
	Total              int `json:"total"`
	AutoResolvedCount  int `json:"auto_resolved_count"`
	RemainingConflicts int `json:"remaining_conflicts"`
}

// ExceptionStats buckets exceptions by status and by confidence band.
// Bands: low < 0.8, medium [0.8, 0.9), high >= 0.9.
type ExceptionStats struct {
	Total            int            `json:"total"`
	ByStatus         map[string]int `json:"by_status"`
	LowConfidence    int            `json:"low_confidence"`
	MediumConfidence int            `json:"medium_confidence"`
	HighConfidence   int            `json:"high_confidence"`
}

// ProcessReport is the aggregate view of one process and its records.
type ProcessReport struct {
	ProcessID          string         `json:"process_id"`
	Status             string         `json:"status"`
	FileCount          int            `json:"file_count"`
	ProcessedFiles     int            `json:"processed_files"`
	FilesByStatus      map[string]int `json:"files_by_status"`
	DuplicateRecords   int            `json:"duplicate_records"`
	ConfirmedDuplicates int           `json:"confirmed_duplicates"`
	OpenConflicts      int            `json:"open_conflicts"`
	PendingExceptions  int            `json:"pending_exceptions"`
}
