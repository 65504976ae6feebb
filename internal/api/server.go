package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"github.com/sirupsen/logrus"

	"fileflow/internal/export"
	"fileflow/internal/folder"
	"fileflow/internal/job"
	"fileflow/internal/repository"
)

// Server wires the REST surface: file lifecycle management, job control
// and import log access.
type Server struct {
	folders   *folder.Manager
	jobs      *job.Service
	configs   repository.ConfigRepository
	logs      repository.ImportLogRepository
	employees repository.EmployeeRepository
	exporter  *export.Service
	log       *logrus.Logger
}

func NewServer(
	folders *folder.Manager,
	jobs *job.Service,
	configs repository.ConfigRepository,
	logs repository.ImportLogRepository,
	employees repository.EmployeeRepository,
	exporter *export.Service,
	log *logrus.Logger,
) *Server {
	return &Server{
		folders:   folders,
		jobs:      jobs,
		configs:   configs,
		logs:      logs,
		employees: employees,
		exporter:  exporter,
		log:       log,
	}
}

// Routes returns the route table of the API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /files", s.handleUploadFile)
	mux.HandleFunc("GET /files", s.handleListFiles)
	mux.HandleFunc("DELETE /files/{name}", s.handleDeleteFile)
	mux.HandleFunc("DELETE /files", s.handleDeleteAllFiles)

	mux.HandleFunc("POST /process/{configId}/start", s.handleStartJob)
	mux.HandleFunc("GET /process/jobs/{jobId}/progress", s.handleJobProgress)
	mux.HandleFunc("GET /process/jobs/{jobId}/result", s.handleJobResult)

	mux.HandleFunc("GET /logs", s.handleListLogs)
	mux.HandleFunc("GET /logs/search", s.handleSearchLogs)
	mux.HandleFunc("GET /logs/{id}", s.handleGetLog)
	mux.HandleFunc("GET /logs/{id}/export", s.handleExportLog)

	mux.HandleFunc("GET /configs", s.handleListConfigs)
	mux.HandleFunc("GET /configs/{id}", s.handleGetConfig)
	mux.HandleFunc("PUT /configs/{id}/csv", s.handleUpdateCSVMapping)
	mux.HandleFunc("PUT /configs/{id}/xml", s.handleUpdateXMLMapping)
	mux.HandleFunc("PUT /configs/{id}/duplicate-check", s.handleUpdateDuplicateCheck)
	mux.HandleFunc("PUT /configs/{id}/meta", s.handleUpdateMeta)

	mux.HandleFunc("GET /employees", s.handleListEmployees)
	mux.HandleFunc("GET /employees/{id}", s.handleGetEmployee)
	mux.HandleFunc("DELETE /employees/{id}", s.handleDeleteEmployee)

	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps known error classes onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, folder.ErrFileExists):
		status = http.StatusConflict
	case errors.Is(err, folder.ErrInvalidName):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrConfigNotFound),
		errors.Is(err, repository.ErrImportLogNotFound),
		errors.Is(err, repository.ErrEmployeeNotFound),
		errors.Is(err, job.ErrUnknownJob),
		errors.Is(err, job.ErrUnknownConfig),
		errors.Is(err, fs.ErrNotExist):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}
