package api

import (
	"encoding/json"
	"net/http"

	"fileflow/internal/domain"
)

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.configs.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if configs == nil {
		configs = []domain.ReaderConfig{}
	}
	writeJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.configs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleUpdateCSVMapping(w http.ResponseWriter, r *http.Request) {
	var mapping domain.CSVMapping
	if err := json.NewDecoder(r.Body).Decode(&mapping); err != nil {
		badRequest(w, "invalid csv mapping payload")
		return
	}
	s.updateConfig(w, r, func(cfg *domain.ReaderConfig) error {
		cfg.CSVMapping = &mapping
		_, err := cfg.CSVSchema()
		return err
	})
}

func (s *Server) handleUpdateXMLMapping(w http.ResponseWriter, r *http.Request) {
	var mapping domain.XMLMapping
	if err := json.NewDecoder(r.Body).Decode(&mapping); err != nil {
		badRequest(w, "invalid xml mapping payload")
		return
	}
	s.updateConfig(w, r, func(cfg *domain.ReaderConfig) error {
		cfg.XMLMapping = &mapping
		_, err := cfg.XMLSchema()
		return err
	})
}

func (s *Server) handleUpdateDuplicateCheck(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		DuplicateCheck []string `json:"duplicateCheck"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		badRequest(w, "invalid duplicate check payload")
		return
	}
	s.updateConfig(w, r, func(cfg *domain.ReaderConfig) error {
		if cfg.CSVMapping != nil {
			cfg.CSVMapping.DuplicateCheck = payload.DuplicateCheck
			if _, err := cfg.CSVSchema(); err != nil {
				return err
			}
		}
		if cfg.XMLMapping != nil {
			cfg.XMLMapping.DuplicateCheck = payload.DuplicateCheck
			if _, err := cfg.XMLSchema(); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Server) handleUpdateMeta(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Description *string           `json:"description"`
		Paths       *domain.FolderSet `json:"paths"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		badRequest(w, "invalid meta payload")
		return
	}
	s.updateConfig(w, r, func(cfg *domain.ReaderConfig) error {
		if payload.Description != nil {
			cfg.Description = *payload.Description
		}
		if payload.Paths != nil {
			cfg.Paths = *payload.Paths
		}
		return nil
	})
}

// updateConfig applies a mutation to the stored config and saves it. The
// mutation validates the resulting schema so a bad payload never lands in
// the store.
func (s *Server) updateConfig(w http.ResponseWriter, r *http.Request, mutate func(*domain.ReaderConfig) error) {
	cfg, err := s.configs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := mutate(&cfg); err != nil {
		badRequest(w, err.Error())
		return
	}
	saved, err := s.configs.Save(r.Context(), cfg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
