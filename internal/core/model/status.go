package model

import "strings"

// ProcessStatus is the lifecycle state of a deduplication process.
type ProcessStatus string

const (
	ProcessReadyToStart     ProcessStatus = "ReadyToStart"
	ProcessInProcessing     ProcessStatus = "InProcessing"
	ProcessCompleted        ProcessStatus = "Completed"
	ProcessPaused           ProcessStatus = "Paused"
	ProcessError            ProcessStatus = "Error"
	ProcessConflictDetected ProcessStatus = "ConflictDetected"
	ProcessCleaning         ProcessStatus = "Cleaning"
	ProcessCleaned          ProcessStatus = "Cleaned"
)

func (s ProcessStatus) String() string { return string(s) }

// ParseProcessStatus maps a stored status string to its enum value.
// Matching is case-insensitive; unknown input degrades to ProcessError
// rather than failing, so legacy/externally-written statuses still load.
func ParseProcessStatus(s string) ProcessStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "readytostart":
		return ProcessReadyToStart
	case "inprocessing":
		return ProcessInProcessing
	case "completed":
		return ProcessCompleted
	case "paused":
		return ProcessPaused
	case "error":
		return ProcessError
	case "conflictdetected":
		return ProcessConflictDetected
	case "cleaning":
		return ProcessCleaning
	case "cleaned":
		return ProcessCleaned
	default:
		return ProcessError
	}
}

// FileStatus is the storage-level state of an uploaded file.
type FileStatus string

const (
	FileUploaded FileStatus = "Uploaded"
	FileInserted FileStatus = "Inserted"
	FileConflict FileStatus = "Conflict"
	FileDeleted  FileStatus = "Deleted"
)

func (s FileStatus) String() string { return string(s) }

// ParseFileStatus falls back to FileUploaded on unknown input.
func ParseFileStatus(s string) FileStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uploaded":
		return FileUploaded
	case "inserted":
		return FileInserted
	case "conflict":
		return FileConflict
	case "deleted":
		return FileDeleted
	default:
		return FileUploaded
	}
}

// FileProcessStatus tracks where a file sits inside a matching run.
type FileProcessStatus string

const (
	FileProcessPending    FileProcessStatus = "Pending"
	FileProcessProcessing FileProcessStatus = "Processing"
	FileProcessCompleted  FileProcessStatus = "Completed"
	FileProcessFailed     FileProcessStatus = "Failed"
)

func (s FileProcessStatus) String() string { return string(s) }

// ParseFileProcessStatus falls back to FileProcessPending on unknown input.
func ParseFileProcessStatus(s string) FileProcessStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return FileProcessPending
	case "processing":
		return FileProcessProcessing
	case "completed":
		return FileProcessCompleted
	case "failed":
		return FileProcessFailed
	default:
		return FileProcessPending
	}
}

// DuplicateRecordStatus is the review state of a duplicate finding.
type DuplicateRecordStatus string

const (
	DuplicateDetected  DuplicateRecordStatus = "Detected"
	DuplicateConfirmed DuplicateRecordStatus = "Confirmed"
	DuplicateRejected  DuplicateRecordStatus = "Rejected"
)

func (s DuplicateRecordStatus) String() string { return string(s) }

// ParseDuplicateRecordStatus falls back to DuplicateDetected on unknown input.
func ParseDuplicateRecordStatus(s string) DuplicateRecordStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "detected":
		return DuplicateDetected
	case "confirmed":
		return DuplicateConfirmed
	case "rejected":
		return DuplicateRejected
	default:
		return DuplicateDetected
	}
}

// ExceptionStatus is the review state of an ambiguous-match exception.
type ExceptionStatus string

const (
	ExceptionPending   ExceptionStatus = "Pending"
	ExceptionReviewed  ExceptionStatus = "Reviewed"
	ExceptionConfirmed ExceptionStatus = "Confirmed"
	ExceptionRejected  ExceptionStatus = "Rejected"
	ExceptionResolved  ExceptionStatus = "Resolved"
	ExceptionIgnored   ExceptionStatus = "Ignored"
)

func (s ExceptionStatus) String() string { return string(s) }

// ParseExceptionStatus falls back to ExceptionPending on unknown input.
func ParseExceptionStatus(s string) ExceptionStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return ExceptionPending
	case "reviewed":
		return ExceptionReviewed
	case "confirmed":
		return ExceptionConfirmed
	case "rejected":
		return ExceptionRejected
	case "resolved":
		return ExceptionResolved
	case "ignored":
		return ExceptionIgnored
	default:
		return ExceptionPending
	}
}

// ConflictStatus is the resolution state of a file-vs-file conflict.
type ConflictStatus string

const (
	ConflictUnresolved ConflictStatus = "Unresolved"
	ConflictResolved   ConflictStatus = "Resolved"
)

func (s ConflictStatus) String() string { return string(s) }

// ParseConflictStatus falls back to ConflictUnresolved on unknown input.
func ParseConflictStatus(s string) ConflictStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unresolved":
		return ConflictUnresolved
	case "resolved":
		return ConflictResolved
	default:
		return ConflictUnresolved
	}
}
