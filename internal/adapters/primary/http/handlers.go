package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// CompareRequest is the body of POST /api/diff
type CompareRequest struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// SummaryResponse is pushed with diff_updated events and served by /api/diff/summary
type SummaryResponse struct {
	Summary    entities.DiffSummary `json:"summary"`
	HasChanges bool                 `json:"hasChanges"`
	Text       string               `json:"text"`
}

// ConfigResponse describes the running server to clients
type ConfigResponse struct {
	Version      string   `json:"version"`
	WebSocketURL string   `json:"websocket_url"`
	LiveReload   bool     `json:"live_reload"`
	Formats      []string `json:"formats"`
	HasDiff      bool     `json:"has_diff"`
}

func newSummaryResponse(diff *entities.PresentationDiff) SummaryResponse {
	if diff == nil {
		diff = &entities.PresentationDiff{}
	}
	return SummaryResponse{
		Summary:    diff.Summary,
		HasChanges: diff.HasChanges(),
		Text:       diff.Summary.String(),
	}
}

// reportOptions returns the configured options with query overrides applied
func (s *Server) reportOptions(r *http.Request) ports.ReportOptions {
	s.mu.RLock()
	opts := s.reportOpts
	s.mu.RUnlock()

	if v := r.URL.Query().Get("unchanged"); v != "" {
		if show, err := strconv.ParseBool(v); err == nil {
			opts.ShowUnchanged = show
		}
	}
	return opts
}

// handleReport serves the HTML report of the current diff
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	opts := s.reportOptions(r)
	opts.LiveReload = true

	diff := s.GetDiff()
	if diff == nil {
		diff = &entities.PresentationDiff{}
		opts.Title = "No diff loaded"
	}

	var buf bytes.Buffer
	if err := s.reports.Render(r.Context(), &buf, entities.FormatHTML, diff, opts); err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Error("Failed to write report", slog.String("error", err.Error()))
	}
}

// handleDiff serves the current diff as a JSON report
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	diff := s.GetDiff()
	if diff == nil {
		s.handleError(w, ErrNoDiff, http.StatusNotFound)
		return
	}

	s.writeReport(w, r, diff)
}

// handleCompare diffs two markdown documents posted by the client
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCompareBodyBytes)

	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.handleError(w, err, http.StatusRequestEntityTooLarge)
			return
		}
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	diff, err := s.comparer.CompareSources(r.Context(), []byte(req.Before), []byte(req.After))
	if err != nil {
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	s.writeReport(w, r, diff)
}

// handleDiffSummary serves the summary of the current diff
func (s *Server) handleDiffSummary(w http.ResponseWriter, r *http.Request) {
	diff := s.GetDiff()
	if diff == nil {
		s.handleError(w, ErrNoDiff, http.StatusNotFound)
		return
	}

	s.writeJSON(w, newSummaryResponse(diff))
}

// handleConfig returns client configuration
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	config := ConfigResponse{
		Version:      s.version,
		WebSocketURL: "/ws",
		LiveReload:   true,
		Formats:      s.reports.GetSupportedFormats(),
		HasDiff:      s.diff != nil,
	}
	s.mu.RUnlock()

	s.writeJSON(w, config)
}

func (s *Server) writeReport(w http.ResponseWriter, r *http.Request, diff *entities.PresentationDiff) {
	var buf bytes.Buffer
	if err := s.reports.Render(r.Context(), &buf, entities.FormatJSON, diff, s.reportOptions(r)); err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Error("Failed to write JSON report", slog.String("error", err.Error()))
	}
}

// handleError handles error responses with sanitized messages
func (s *Server) handleError(w http.ResponseWriter, err error, status int) {
	// Sanitize error message to prevent information disclosure
	var message string
	switch status {
	case http.StatusBadRequest:
		message = "Invalid request"
	case http.StatusNotFound:
		message = "Resource not found"
		if errors.Is(err, ErrNoDiff) {
			message = "No diff loaded"
		}
	case http.StatusMethodNotAllowed:
		message = "Method not allowed"
	case http.StatusRequestEntityTooLarge:
		message = "Request body too large"
	case http.StatusTooManyRequests:
		message = "Too many requests"
	case http.StatusInternalServerError:
		message = "Internal server error"
	default:
		message = "An error occurred"
	}

	// Log the actual error for debugging (server-side only)
	s.logger.Error("HTTP error", slog.Int("status", status), slog.String("error", err.Error()))

	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Time:    time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		s.logger.Error("Failed to encode error response", slog.String("error", encodeErr.Error()))
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(append(body, '\n')); err != nil {
		s.logger.Error("Failed to write JSON response", slog.String("error", err.Error()))
	}
}
