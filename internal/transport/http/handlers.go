package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"shiritori/internal/domain"
)

// maxBodySize bounds the JSON bodies accepted by the API
const maxBodySize = 64 << 10

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	ActiveSessions int `json:"activeSessions"`
	TotalChain     int `json:"totalChain"`
}

// SessionResponse is the response for getting a session snapshot
type SessionResponse struct {
	SessionID    string   `json:"sessionId"`
	Phase        string   `json:"phase"`
	PreviousWord string   `json:"previousWord"`
	UsedWords    []string `json:"usedWords"`
	Round        int      `json:"round"`
	LastOutcome  string   `json:"lastOutcome,omitempty"`
	Ended        bool     `json:"ended"`
}

// ValidateRequest is the body of POST /api/validate
type ValidateRequest struct {
	UsedWords []string `json:"usedWords"`
	Candidate string   `json:"candidate"`
}

// ValidateResponse is the response for validating a candidate word
type ValidateResponse struct {
	Candidate string `json:"candidate"`
	Valid     bool   `json:"valid"`
	Outcome   string `json:"outcome"`
	Message   string `json:"message,omitempty"`
}

// ReadingRequest is the body of POST /api/reading
type ReadingRequest struct {
	Text string `json:"text"`
}

// ReadingResponse is the response for reading a transcript
type ReadingResponse struct {
	Text    string         `json:"text"`
	Reading string         `json:"reading"`
	Tokens  []domain.Token `json:"tokens"`
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{
		Status: "ok",
	})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &StatsResponse{
		ActiveSessions: s.hub.GetSessionCount(),
		TotalChain:     s.hub.GetTotalChainLength(),
	})
}

// handleGetSession handles GET /api/sessions/{sessionId}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	if sessionID == "" {
		s.sendError(w, http.StatusBadRequest, "MISSING_SESSION_ID", "Session ID is required")
		return
	}

	controller, err := s.hub.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			s.sendError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found")
		} else {
			s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		}
		return
	}

	session := controller.Snapshot()
	resp := &SessionResponse{
		SessionID:    session.ID,
		Phase:        session.Phase.String(),
		PreviousWord: session.PreviousWord(),
		UsedWords:    session.UsedWords,
		Round:        session.Round,
		Ended:        session.Ended,
	}
	if session.Round > 0 {
		resp.LastOutcome = session.LastOutcome.String()
	}

	s.sendSuccess(w, resp)
}

// handleValidate handles POST /api/validate
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decodeBody(r, &req); err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	usedWords := make([]string, 0, len(req.UsedWords))
	for _, word := range req.UsedWords {
		usedWords = append(usedWords, domain.ToHiragana(strings.TrimSpace(word)))
	}
	candidate := domain.ToHiragana(strings.TrimSpace(req.Candidate))

	err := domain.Validate(usedWords, candidate)
	if errors.Is(err, domain.ErrFailedRecognition) {
		s.sendError(w, http.StatusBadRequest, "INVALID_WORDS", "usedWords and candidate must not be empty")
		return
	}

	outcome, ok := domain.OutcomeFromError(err)
	if !ok {
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	s.sendSuccess(w, &ValidateResponse{
		Candidate: candidate,
		Valid:     outcome.IsSuccess(),
		Outcome:   outcome.String(),
		Message:   outcome.Message(),
	})
}

// handleReading handles POST /api/reading
func (s *Server) handleReading(w http.ResponseWriter, r *http.Request) {
	var req ReadingRequest
	if err := decodeBody(r, &req); err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	tokens, err := s.analyzer.Tokenize(r.Context(), req.Text)
	if err == nil {
		var reading string
		if reading, err = domain.Normalize(tokens); err == nil {
			s.sendSuccess(w, &ReadingResponse{
				Text:    req.Text,
				Reading: reading,
				Tokens:  tokens,
			})
			return
		}
	}

	switch {
	case errors.Is(err, domain.ErrFailedRecognition):
		s.sendError(w, http.StatusUnprocessableEntity, "NOT_RECOGNIZED", "No reading could be derived from the text")
	case errors.Is(err, domain.ErrAnalyzerUnavailable):
		s.sendError(w, http.StatusServiceUnavailable, "ANALYZER_UNAVAILABLE", "Analyzer is unavailable")
	default:
		s.logger.Error("reading failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// handleStatic serves static files
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	// Strip /static/ prefix
	path := strings.TrimPrefix(r.URL.Path, "/static/")

	// Try to open from webFS
	file, err := s.webFS.Open("static/" + path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer file.Close()

	// Get file info for content type and modification time
	stat, err := file.Stat()
	if err != nil || stat.IsDir() {
		http.NotFound(w, r)
		return
	}

	// Serve the file
	http.ServeContent(w, r, stat.Name(), stat.ModTime(), file.(io.ReadSeeker))
}

// handleSPA serves the single-page application
func (s *Server) handleSPA(w http.ResponseWriter, r *http.Request) {
	file, err := s.webFS.Open("index.html")
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, "index.html", stat.ModTime(), file.(io.ReadSeeker))
}

// decodeBody decodes a bounded JSON request body into v
func decodeBody(r *http.Request, v interface{}) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
