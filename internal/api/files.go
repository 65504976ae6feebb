package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"fileflow/internal/folder"
	"fileflow/internal/mapping"
)

const maxUploadBytes = 256 << 20

func configIDParam(r *http.Request) string {
	if id := r.URL.Query().Get("configId"); id != "" {
		return id
	}
	return mapping.DefaultConfigID
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	configID := configIDParam(r)
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		badRequest(w, "expected multipart form with a file field")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "missing file field")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".csv" && ext != ".xml" {
		badRequest(w, "only .csv and .xml files are accepted")
		return
	}

	saved, err := s.folders.SaveInbound(r.Context(), configID, file, header.Filename)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"fileName": saved})
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	configID := configIDParam(r)
	kind := folder.Inbound
	if q := r.URL.Query().Get("folder"); q != "" {
		switch folder.Kind(q) {
		case folder.Inbound, folder.InTreatment, folder.Backup, folder.Failed:
			kind = folder.Kind(q)
		default:
			badRequest(w, "folder must be one of in, treatment, backup, failed")
			return
		}
	}

	names, err := s.folders.List(r.Context(), configID, kind)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"folder": kind, "files": names})
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	configID := configIDParam(r)
	name := r.PathValue("name")
	if err := s.folders.DeleteInbound(r.Context(), configID, name); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAllFiles(w http.ResponseWriter, r *http.Request) {
	configID := configIDParam(r)
	deleted, err := s.folders.DeleteAllInbound(r.Context(), configID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}
