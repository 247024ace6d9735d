package api

import (
	"github.com/targc/tasksync/pkg/audit"
	"github.com/targc/tasksync/pkg/syncer"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// Server exposes the sync trigger surface: run-now, status, and the
// audit log for diagnostics.
type Server struct {
	orch       *syncer.Orchestrator
	sched      *syncer.Scheduler
	audit      *audit.Recorder
	apiKeyHash string
}

func NewServer(orch *syncer.Orchestrator, sched *syncer.Scheduler, rec *audit.Recorder, apiKeyHash string) *Server {
	return &Server{
		orch:       orch,
		sched:      sched,
		audit:      rec,
		apiKeyHash: apiKeyHash,
	}
}
