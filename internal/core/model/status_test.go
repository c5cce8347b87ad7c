package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProcessStatus(t *testing.T) {
	assert.Equal(t, ProcessInProcessing, ParseProcessStatus("InProcessing"))
	assert.Equal(t, ProcessInProcessing, ParseProcessStatus("inprocessing"))
	assert.Equal(t, ProcessInProcessing, ParseProcessStatus("  INPROCESSING  "))
	assert.Equal(t, ProcessReadyToStart, ParseProcessStatus("readytostart"))
	assert.Equal(t, ProcessCleaning, ParseProcessStatus("Cleaning"))

	// Unknown values collapse to Error so a corrupt document cannot look healthy.
	assert.Equal(t, ProcessError, ParseProcessStatus("running"))
	assert.Equal(t, ProcessError, ParseProcessStatus(""))
}

func TestParseFileStatus(t *testing.T) {
	assert.Equal(t, FileInserted, ParseFileStatus("inserted"))
	assert.Equal(t, FileDeleted, ParseFileStatus("Deleted"))
	assert.Equal(t, FileConflict, ParseFileStatus("CONFLICT"))

	// Files fall back to the entry state, not a failure state.
	assert.Equal(t, FileUploaded, ParseFileStatus("archived"))
	assert.Equal(t, FileUploaded, ParseFileStatus(""))
}

func TestParseFileProcessStatus(t *testing.T) {
	assert.Equal(t, FileProcessCompleted, ParseFileProcessStatus("completed"))
	assert.Equal(t, FileProcessFailed, ParseFileProcessStatus("Failed"))
	assert.Equal(t, FileProcessPending, ParseFileProcessStatus("bogus"))
}

func TestParseDuplicateRecordStatus(t *testing.T) {
	assert.Equal(t, DuplicateConfirmed, ParseDuplicateRecordStatus("confirmed"))
	assert.Equal(t, DuplicateRejected, ParseDuplicateRecordStatus("REJECTED"))
	assert.Equal(t, DuplicateDetected, ParseDuplicateRecordStatus("unknown"))
}

func TestParseExceptionStatus(t *testing.T) {
	assert.Equal(t, ExceptionResolved, ParseExceptionStatus("resolved"))
	assert.Equal(t, ExceptionPending, ParseExceptionStatus("whatever"))
}

func TestParseConflictStatus(t *testing.T) {
	assert.Equal(t, ConflictResolved, ParseConflictStatus("Resolved"))
	assert.Equal(t, ConflictUnresolved, ParseConflictStatus("open"))
}

func TestProcessCurrentStatus(t *testing.T) {
	proc := &DeduplicationProcess{Status: "completed"}
	assert.Equal(t, ProcessCompleted, proc.CurrentStatus())

	proc.Status = "not-a-status"
	assert.Equal(t, ProcessError, proc.CurrentStatus())
}
