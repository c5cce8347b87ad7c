package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/conflicts"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/ident"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/model"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/process"
)

type createProcessRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username"`
}

func (s *Server) CreateProcess(c *gin.Context) {
	var req createProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	proc, err := s.Backend.Processes.Create(c.Request.Context(), req.Name, req.Username)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, proc)
}

func (s *Server) ListProcesses(c *gin.Context) {
	procs, err := s.Backend.Processes.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"processes": procs, "count": len(procs)})
}

func (s *Server) GetProcess(c *gin.Context) {
	proc, err := s.Backend.Processes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, proc)
}

type attachFilesRequest struct {
	Files []process.FileUpload `json:"files" binding:"required"`
}

func (s *Server) AttachFiles(c *gin.Context) {
	var req attachFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	files, err := s.Backend.Processes.AttachFiles(c.Request.Context(), c.Param("id"), req.Files)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"files": files, "count": len(files)})
}

func (s *Server) ListFiles(c *gin.Context) {
	files, err := s.Backend.Processes.Files(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files, "count": len(files)})
}

func (s *Server) StartProcess(c *gin.Context) {
	proc, err := s.Backend.Processes.Start(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, proc)
}

func (s *Server) PauseProcess(c *gin.Context) {
	proc, err := s.Backend.Processes.Pause(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, proc)
}

func (s *Server) ResumeProcess(c *gin.Context) {
	proc, err := s.Backend.Processes.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, proc)
}

func (s *Server) CompleteProcess(c *gin.Context) {
	proc, err := s.Backend.Processes.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, proc)
}

func (s *Server) StartCleanup(c *gin.Context) {
	proc, err := s.Backend.Processes.StartCleanup(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, proc)
}

type finishCleanupRequest struct {
	Username string `json:"username"`
}

func (s *Server) FinishCleanup(c *gin.Context) {
	var req finishCleanupRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	proc, err := s.Backend.Processes.FinishCleanup(c.Request.Context(), c.Param("id"), req.Username)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, proc)
}

func (s *Server) SyncProcess(c *gin.Context) {
	if err := s.Backend.Recon.SyncFileStatuses(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"synced": true})
}

func (s *Server) FixProcess(c *gin.Context) {
	fixed := s.Backend.Recon.FixProcessData(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"fixed": fixed})
}

func (s *Server) ProcessReport(c *gin.Context) {
	rep, err := s.Backend.Reports.Build(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (s *Server) ListConflicts(c *gin.Context) {
	list, err := s.Backend.Conflicts.ListByProcess(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conflicts": list, "count": len(list)})
}

func (s *Server) AutoResolveConflicts(c *gin.Context) {
	threshold := conflicts.DefaultAutoResolveThreshold
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "threshold must be a number"})
			return
		}
		threshold = parsed
	}
	result, err := s.Backend.Conflicts.AutoResolve(c.Request.Context(), c.Param("id"), threshold)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type resolveConflictRequest struct {
	Resolution string `json:"resolution" binding:"required"`
	ResolvedBy string `json:"resolved_by" binding:"required"`
}

func (s *Server) ResolveConflict(c *gin.Context) {
	var req resolveConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The service resolves by exact ID; try both the prefixed and the bare
	// form before reporting the conflict missing.
	var conflict *model.Conflict
	var err error
	for _, candidate := range ident.Variations(c.Param("id"), ident.KindConflict) {
		conflict, err = s.Backend.Conflicts.Resolve(c.Request.Context(), candidate, req.Resolution, req.ResolvedBy)
		if err == nil {
			break
		}
		var notFound *model.NotFoundError
		if !errors.As(err, &notFound) {
			break
		}
	}
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conflict)
}

type createExceptionRequest struct {
	ProcessID      string         `json:"process_id" binding:"required"`
	FileName       string         `json:"file_name" binding:"required"`
	CandidateFiles []string       `json:"candidate_file_names"`
	Score          float64        `json:"comparison_score"`
	Metadata       map[string]any `json:"metadata"`
}

func (s *Server) CreateException(c *gin.Context) {
	var req createExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	exc, err := s.Backend.Exceptions.Create(c.Request.Context(), req.ProcessID, req.FileName, req.CandidateFiles, req.Score, req.Metadata)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exc)
}

func (s *Server) ListExceptions(c *gin.Context) {
	if raw := c.Query("min_score"); raw != "" {
		minScore, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_score must be a number"})
			return
		}
		list, err := s.Backend.Exceptions.AboveScore(c.Request.Context(), minScore)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"exceptions": list, "count": len(list)})
		return
	}
	list, err := s.Backend.Exceptions.ListAll(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exceptions": list, "count": len(list)})
}

func (s *Server) ExceptionStats(c *gin.Context) {
	stats, err := s.Backend.Exceptions.Stats(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) ListProcessExceptions(c *gin.Context) {
	list, err := s.Backend.Exceptions.ListByProcess(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exceptions": list, "count": len(list)})
}

type updateExceptionRequest struct {
	Status   string         `json:"status" binding:"required"`
	Metadata map[string]any `json:"metadata"`
}

func (s *Server) UpdateExceptionStatus(c *gin.Context) {
	var req updateExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	exc, err := s.Backend.Exceptions.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.Metadata)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exc)
}

func (s *Server) ListDuplicatesByStatus(c *gin.Context) {
	list, err := s.Backend.Duplicates.ListByStatus(c.Request.Context(), c.Query("status"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"duplicated_records": list, "count": len(list)})
}

func (s *Server) GetDuplicate(c *gin.Context) {
	rec, err := s.Backend.Duplicates.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type reviewDuplicateRequest struct {
	Username string `json:"username"`
	Notes    string `json:"notes"`
}

func (s *Server) ConfirmDuplicate(c *gin.Context) {
	var req reviewDuplicateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	rec, err := s.Backend.Duplicates.Confirm(c.Request.Context(), c.Param("id"), req.Username, req.Notes)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) RejectDuplicate(c *gin.Context) {
	var req reviewDuplicateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	rec, err := s.Backend.Duplicates.Reject(c.Request.Context(), c.Param("id"), req.Username, req.Notes)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) ListDuplicates(c *gin.Context) {
	list, err := s.Backend.Duplicates.ListByProcess(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"duplicated_records": list, "count": len(list)})
}

func (s *Server) DuplicateGroups(c *gin.Context) {
	groups, err := s.Backend.Reports.DuplicateGroups(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups, "count": len(groups)})
}
