package api

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/samber/lo"

	stberrors "github.com/FocuswithJustin/stbview/core/errors"
	"github.com/FocuswithJustin/stbview/core/sqlite"
	"github.com/FocuswithJustin/stbview/internal/logging"
	"github.com/FocuswithJustin/stbview/internal/snapshot"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error. Details lists the schema violations
// behind an EXTRACT_ERROR.
type APIError struct {
	Code    string                    `json:"code"`
	Message string                    `json:"message"`
	Details []*stberrors.ExtractError `json:"details,omitempty"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status    string      `json:"status"`
	Version   string      `json:"version"`
	Uptime    string      `json:"uptime"`
	Documents int         `json:"documents"`
	Snapshots bool        `json:"snapshots"`
	SQLite    sqlite.Info `json:"sqlite"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{
		"name":    "stbview",
		"version": s.cfg.Version,
		"endpoints": []string{
			"GET /health",
			"POST /parse",
			"POST /members",
			"GET /snapshots",
			"DELETE /snapshots/:digest",
			"WS /ws",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, HealthInfo{
		Status:    "healthy",
		Version:   s.cfg.Version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Documents: s.docs.Len(),
		Snapshots: s.store != nil,
		SQLite:    sqlite.GetInfo(),
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}
	doc, err := s.document(r.Context(), req)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, doc)
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	var req MembersRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}
	pairs, err := s.members(r.Context(), req)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondList(w, pairs, len(pairs))
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondList(w, []snapshot.Info{}, 0)
		return
	}
	index, err := s.index.Load(func() (map[string]snapshot.Info, error) {
		list, err := s.store.List(r.Context())
		if err != nil {
			return nil, err
		}
		return lo.KeyBy(list, func(i snapshot.Info) string { return i.Digest }), nil
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	list := lo.Values(index)
	slices.SortFunc(list, func(a, b snapshot.Info) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Digest, b.Digest)
	})
	respondList(w, list, len(list))
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	digest := r.PathValue("digest")
	if err := ValidateDigest(digest); err != nil {
		respondErr(w, r, err)
		return
	}
	if s.store == nil {
		respondErr(w, r, stberrors.NewNotFound("snapshot", digest))
		return
	}
	if err := s.store.Delete(r.Context(), digest); err != nil {
		respondErr(w, r, err)
		return
	}
	s.docs.Remove(digest)
	s.index.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody reads a JSON request body into v.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: request body: %v", stberrors.ErrInvalidInput, err)
	}
	return nil
}

// classify maps an error to its HTTP status and API error.
func classify(err error) (int, *APIError) {
	var (
		re   *resolveError
		ee   *stberrors.ExtractError
		list stberrors.ErrorList
		pe   *stberrors.ParseError
	)
	switch {
	case errors.As(err, &re):
		return http.StatusUnprocessableEntity, &APIError{Code: "RESOLVE_ERROR", Message: err.Error()}
	case errors.Is(err, ErrPathTraversal), errors.Is(err, ErrPathOutsideBase), errors.Is(err, ErrInvalidPath):
		return http.StatusBadRequest, &APIError{Code: "INVALID_PATH", Message: err.Error()}
	case errors.As(err, &list):
		details := make([]*stberrors.ExtractError, 0, len(list))
		for _, e := range list {
			if errors.As(e, &ee) {
				details = append(details, ee)
			}
		}
		return http.StatusUnprocessableEntity, &APIError{Code: "EXTRACT_ERROR", Message: err.Error(), Details: details}
	case errors.As(err, &ee):
		return http.StatusUnprocessableEntity, &APIError{Code: "EXTRACT_ERROR", Message: err.Error(), Details: []*stberrors.ExtractError{ee}}
	case errors.As(err, &pe):
		return http.StatusUnprocessableEntity, &APIError{Code: "PARSE_ERROR", Message: err.Error()}
	case errors.Is(err, stberrors.ErrNotFound):
		return http.StatusNotFound, &APIError{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, stberrors.ErrUnsupported):
		return http.StatusUnprocessableEntity, &APIError{Code: "UNSUPPORTED", Message: err.Error()}
	case errors.Is(err, stberrors.ErrInvalidInput):
		return http.StatusBadRequest, &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	default:
		return http.StatusInternalServerError, &APIError{Code: "INTERNAL_ERROR", Message: err.Error()}
	}
}

func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := classify(err)
	log := logging.LoggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "code", apiErr.Code, "error", err)
	} else {
		log.Debug("request rejected", "code", apiErr.Code, "error", err)
	}
	write(w, status, APIResponse{Success: false, Error: apiErr, Meta: meta(0)})
}

func respond(w http.ResponseWriter, status int, data any) {
	write(w, status, APIResponse{Success: true, Data: data, Meta: meta(0)})
}

func respondList(w http.ResponseWriter, data any, total int) {
	write(w, http.StatusOK, APIResponse{Success: true, Data: data, Meta: meta(total)})
}

func meta(total int) *APIMeta {
	return &APIMeta{Total: total, Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

func write(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error("failed to encode response", "error", err)
	}
}
