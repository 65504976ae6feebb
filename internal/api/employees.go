package api

import (
	"net/http"
	"strconv"

	"fileflow/internal/domain"
)

const (
	defaultEmployeePageSize = 50
	maxEmployeePageSize     = 500
)

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	limit := defaultEmployeePageSize
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > maxEmployeePageSize {
			badRequest(w, "limit must be between 1 and 500")
			return
		}
		limit = n
	}
	offset := 0
	if q := r.URL.Query().Get("offset"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			badRequest(w, "offset must not be negative")
			return
		}
		offset = n
	}

	employees, err := s.employees.List(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if employees == nil {
		employees = []domain.Employee{}
	}
	total, err := s.employees.Count(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"employees": employees,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		badRequest(w, "invalid employee id")
		return
	}
	emp, err := s.employees.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

func (s *Server) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		badRequest(w, "invalid employee id")
		return
	}
	if err := s.employees.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
