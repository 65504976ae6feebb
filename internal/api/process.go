package api

import (
	"net/http"

	"github.com/google/uuid"
)

func (s *Server) handleStartJob(w http.ResponseWriter, r *http.Request) {
	configID := r.PathValue("configId")
	jobID, err := s.jobs.StartJob(r.Context(), configID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"jobId": jobID.String()})
}

func (s *Server) handleJobProgress(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("jobId"))
	if err != nil {
		badRequest(w, "invalid job id")
		return
	}
	progress, err := s.jobs.Progress(jobID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("jobId"))
	if err != nil {
		badRequest(w, "invalid job id")
		return
	}
	result, err := s.jobs.Result(jobID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
