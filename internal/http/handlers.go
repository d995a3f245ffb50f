package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"monthgroup/internal/core"
	"monthgroup/internal/log"
	"monthgroup/internal/services"
	"monthgroup/internal/storage"

	"github.com/gorilla/mux"
)

const maxListLimit = 500

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error(), Kind: kindUnavailable})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type groupResponse struct {
	Result core.Result `json:"result"`
}

func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	var in services.Input
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if in.FilterColNumber < 0 {
		writeError(w, r, badRequest{msg: "filter_col_number must be >= 0"})
		return
	}

	res, err := s.service.Evaluate(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groupResponse{Result: res})
}

type jobSummary struct {
	Name     string `json:"name"`
	Output   string `json:"output,omitempty"`
	Schedule string `json:"schedule,omitempty"`
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	out := []jobSummary{}
	if s.jobs != nil {
		for _, name := range s.jobs.Names() {
			j, _ := s.jobs.Find(name)
			out = append(out, jobSummary{Name: j.Name, Output: j.Output, Schedule: j.Schedule})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": out})
}

type runResponse struct {
	RunID  string      `json:"run_id"`
	Status string      `json:"status"`
	Result core.Result `json:"result"`
}

// handleRunJob runs a job synchronously, or queues it when async=true.
func (s *Server) handleRunJob(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	job, err := s.jobs.Find(name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		id, err := s.service.Enqueue(r.Context(), job.Name, storage.TriggerHTTP)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"request_id": id})
		return
	}

	run, res, err := s.service.Run(r.Context(), job, storage.TriggerHTTP)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runResponse{RunID: run.ID, Status: string(run.Status), Result: res})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxListLimit {
			writeError(w, r, badRequest{msg: fmt.Sprintf("limit must be between 1 and %d", maxListLimit)})
			return
		}
		limit = n
	}

	runs, err := s.service.ListRuns(r.Context(), q.Get("job"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if runs == nil {
		runs = []storage.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.service.GetRun(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// decodeBody decodes a single JSON object, rejecting unknown fields and
// oversized bodies.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return badRequest{msg: "request body too large"}
		}
		return badRequest{msg: "invalid request body: " + err.Error()}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return badRequest{msg: "request body must contain a single JSON object"}
	}
	return nil
}
