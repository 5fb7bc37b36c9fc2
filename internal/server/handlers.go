package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rtsched/rtsched/sched"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.ctrl.Metrics())
}

func (s *Server) handleLog(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.ctrl.ExecutionLog())
}

// handleSubmitTask accepts a scenario-shaped task spec and queues it into
// the live simulation. Validation mirrors the scenario boundary checks.
func (s *Server) handleSubmitTask(w http.ResponseWriter, r *http.Request) {
	var spec sched.TaskSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("decoding task: %v", err))
		return
	}
	if err := validateTaskSpec(spec); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.ctrl.Submit(spec.Task())
	respondJSON(w, http.StatusAccepted, map[string]any{"accepted": true, "name": spec.Name})
}

func validateTaskSpec(spec sched.TaskSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("task name is required")
	}
	if spec.ExecutionTime <= 0 {
		return fmt.Errorf("execution_time must be positive")
	}
	if spec.Deadline <= 0 {
		return fmt.Errorf("deadline must be positive")
	}
	if spec.ArrivalTime < 0 {
		return fmt.Errorf("arrival_time must be non-negative")
	}
	if spec.Period < 0 {
		return fmt.Errorf("period must be non-negative")
	}
	return nil
}

type controlRequest struct {
	Action    string `json:"action"`
	Algorithm string `json:"algorithm,omitempty"`
}

// handleControl applies pause/resume/step/switch actions. All of them take
// effect at the next tick boundary, never mid-tick.
func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("decoding control: %v", err))
		return
	}
	switch req.Action {
	case "pause":
		s.ctrl.SetPaused(true)
	case "resume":
		s.ctrl.SetPaused(false)
	case "step":
		s.ctrl.SignalStep()
	case "switch":
		if !sched.IsValidPolicy(req.Algorithm) {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown scheduling policy %q", req.Algorithm))
			return
		}
		s.ctrl.SwitchAlgorithm(req.Algorithm)
	default:
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", req.Action))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"action": req.Action, "paused": s.ctrl.Paused()})
}
