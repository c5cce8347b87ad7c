package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/config"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/lifecycle"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/model"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/driver"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/facematch"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/logging"
)

type Server struct {
	Backend *core.Backend
	Log     *logging.Logger
}

func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	log := logging.New(cfg.Log)
	if err != nil {
		log.Warn("could not load %s, using defaults: %v", cfgPath, err)
	}

	var store driver.DocumentStore
	switch cfg.Store.Provider {
	case "memory":
		log.Warn("using in-memory document store; data will not survive a restart")
		store = driver.NewMemoryStore()
	default:
		s, err := driver.NewMemgraphStore(cfg.Store.URI, cfg.Store.User, cfg.Store.Password, log)
		if err != nil {
			log.Error("failed to connect to document store: %v", err)
			os.Exit(1)
		}
		store = s
	}

	matcher, err := facematch.NewClient(cfg.FaceMatch, log)
	if err != nil {
		log.Error("failed to initialize face-match client: %v", err)
		os.Exit(1)
	}

	backend := core.NewBackend(store, matcher, cfg.Dedupe, log)
	if err := backend.EnsureIndexes(context.Background()); err != nil {
		log.Warn("failed to ensure store indexes: %v", err)
	}

	return &Server{Backend: backend, Log: log.Named("http")}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/processes", s.CreateProcess)
	r.GET("/processes", s.ListProcesses)
	r.GET("/processes/:id", s.GetProcess)
	r.POST("/processes/:id/files", s.AttachFiles)
	r.GET("/processes/:id/files", s.ListFiles)
	r.POST("/processes/:id/start", s.StartProcess)
	r.POST("/processes/:id/pause", s.PauseProcess)
	r.POST("/processes/:id/resume", s.ResumeProcess)
	r.POST("/processes/:id/complete", s.CompleteProcess)
	r.POST("/processes/:id/cleanup/start", s.StartCleanup)
	r.POST("/processes/:id/cleanup/finish", s.FinishCleanup)
	r.POST("/processes/:id/sync", s.SyncProcess)
	r.POST("/processes/:id/fix", s.FixProcess)
	r.GET("/processes/:id/report", s.ProcessReport)

	r.GET("/processes/:id/conflicts", s.ListConflicts)
	r.POST("/processes/:id/conflicts/auto-resolve", s.AutoResolveConflicts)
	r.POST("/conflicts/:id/resolve", s.ResolveConflict)

	r.POST("/exceptions", s.CreateException)
	r.GET("/exceptions", s.ListExceptions)
	r.GET("/exceptions/stats", s.ExceptionStats)
	r.GET("/processes/:id/exceptions", s.ListProcessExceptions)
	r.PUT("/exceptions/:id/status", s.UpdateExceptionStatus)

	r.GET("/duplicates", s.ListDuplicatesByStatus)
	r.GET("/duplicates/:id", s.GetDuplicate)
	r.POST("/duplicates/:id/confirm", s.ConfirmDuplicate)
	r.POST("/duplicates/:id/reject", s.RejectDuplicate)
	r.GET("/processes/:id/duplicates", s.ListDuplicates)
	r.GET("/processes/:id/duplicates/groups", s.DuplicateGroups)

	return r
}

// respondError maps domain errors onto HTTP statuses: absent entities are
// 404, rejected input 400, illegal transitions 409 (with the current
// status for diagnostics), everything else 500.
func (s *Server) respondError(c *gin.Context, err error) {
	var notFound *model.NotFoundError
	var validation *model.ValidationError
	var transition *lifecycle.TransitionError

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{
			"error":          transition.Error(),
			"current_status": transition.Current.String(),
		})
	default:
		s.Log.Error("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
