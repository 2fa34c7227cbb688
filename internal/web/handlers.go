package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/core"
	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/source"
)

// handleListTypes proxies schema discovery: the available entity types.
func (s *Server) handleListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.crm.ListTypes(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"types": types})
}

// handleListFields returns the field definitions for one entity type.
func (s *Server) handleListFields(w http.ResponseWriter, r *http.Request) {
	entityTypeID, err := entityTypeParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	fields, err := s.crm.ListFields(r.Context(), entityTypeID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"fields": fields})
}

// handleImport starts an asynchronous import run from a multipart upload.
//
// Form fields:
//
//	file     the CSV or XLSX file (required)
//	mapping  JSON object of {fieldId: columnName} (required)
//	sheet    XLSX sheet name (optional)
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	entityTypeID, err := entityTypeParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(s.cfg.Import.MaxFileSize); err != nil {
		s.respondError(w, r, badRequest("parse multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, badRequest("missing file field"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.Import.MaxFileSize+1))
	if err != nil {
		s.respondError(w, r, badRequest("read file: %v", err))
		return
	}
	if int64(len(data)) > s.cfg.Import.MaxFileSize {
		s.respondError(w, r, badRequest("file exceeds %dMB limit", s.cfg.Import.MaxFileSize/(1024*1024)))
		return
	}

	var mapping map[string]string
	if err := json.Unmarshal([]byte(r.FormValue("mapping")), &mapping); err != nil {
		s.respondError(w, r, badRequest("invalid mapping JSON: %v", err))
		return
	}
	pairs := make([]core.MappingPair, 0, len(mapping))
	for fieldID, column := range mapping {
		pairs = append(pairs, core.MappingPair{FieldID: fieldID, Column: column})
	}

	table, err := source.ParseFile(header.Filename, data, r.FormValue("sheet"))
	if err != nil {
		s.respondError(w, r, badRequest("%v", err))
		return
	}

	fields, err := s.crm.ListFields(r.Context(), entityTypeID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	runID, err := s.service.StartRun(r.Context(), entityTypeID, fields, pairs, table)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]any{
		"runId": runID,
		"rows":  len(table.Records),
	})
}

// handleGetRun reports the status of a run and, once complete, its result.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	status, result, err := s.service.GetRun(runID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	body := map[string]any{"runId": runID, "status": status}
	if result != nil {
		body["result"] = result
	}
	respondJSON(w, http.StatusOK, body)
}

// handleHistory lists recent recorded runs.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, r, errHistoryDisabled)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.history.RecentRuns(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleHistoryRun returns one recorded run with its full outcome list.
func (s *Server) handleHistoryRun(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, r, errHistoryDisabled)
		return
	}
	result, err := s.history.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func entityTypeParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "entityTypeID"))
	if err != nil || id <= 0 {
		return 0, badRequest("invalid entity type id %q", chi.URLParam(r, "entityTypeID"))
	}
	return id, nil
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already out; encoding failures have nowhere to go.
	_ = json.NewEncoder(w).Encode(body)
}

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}
