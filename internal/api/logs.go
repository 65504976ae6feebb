package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"fileflow/internal/domain"
)

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.logs.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if logs == nil {
		logs = []domain.ImportLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleSearchLogs(w http.ResponseWriter, r *http.Request) {
	fileName := r.URL.Query().Get("fileName")
	var status *domain.LogStatus
	if q := r.URL.Query().Get("status"); q != "" {
		st := domain.LogStatus(strings.ToUpper(q))
		switch st {
		case domain.LogStatusInProgress, domain.LogStatusSuccess,
			domain.LogStatusFailed, domain.LogStatusPartial:
			status = &st
		default:
			badRequest(w, "unknown status: "+q)
			return
		}
	}

	logs, err := s.logs.Search(r.Context(), fileName, status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if logs == nil {
		logs = []domain.ImportLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	logID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid log id")
		return
	}
	log, err := s.logs.GetByID(r.Context(), logID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

func (s *Server) handleExportLog(w http.ResponseWriter, r *http.Request) {
	logID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid log id")
		return
	}

	// buffer the workbook so a lookup failure can still produce a 404
	var buf bytes.Buffer
	fileName, err := s.exporter.WriteImportLog(r.Context(), logID, &buf)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	_, _ = buf.WriteTo(w)
}
