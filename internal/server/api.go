package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/alnah/livemd"
)

// Sentinel errors for request decoding.
var (
	ErrBodyTooLarge = errors.New("request body too large")
	ErrBadRequest   = errors.New("malformed request")
)

// themeBody is the JSON shape of theme requests and responses.
type themeBody struct {
	Theme livemd.Theme `json:"theme"`
	Icon  string       `json:"icon,omitempty"`
}

// formatRequest is the body of POST /api/format.
type formatRequest struct {
	Text   string `json:"text"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Syntax string `json:"syntax"`
}

type htmlBody struct {
	HTML string `json:"html"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readText(w, r)
	if !ok {
		return
	}
	html, err := s.session.Render(r.Context(), text)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.session.Load(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readText(w, r)
	if !ok {
		return
	}
	html, err := s.session.Input(r.Context(), text)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, htmlBody{HTML: html})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if !s.readJSON(w, r, &req) {
		return
	}
	theme, err := livemd.ParseTheme(req.Theme)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.session.SetTheme(r.Context(), theme); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.broadcastTheme(theme)
	s.writeJSON(w, http.StatusOK, themeBody{Theme: theme, Icon: theme.Icon()})
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.session.ToggleTheme(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.broadcastTheme(theme)
	s.writeJSON(w, http.StatusOK, themeBody{Theme: theme, Icon: theme.Icon()})
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req formatRequest
	if !s.readJSON(w, r, &req) {
		return
	}
	syntax, err := livemd.ParseSyntax(req.Syntax)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.session.Format(r.Context(), req.Text, livemd.Selection{Start: req.Start, End: req.End}, syntax)
	if err != nil {
		if errors.Is(err, livemd.ErrUnknownSyntax) {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// readText reads a plain-text body up to the size limit.
// On failure it writes the response and returns false.
func (s *Server) readText(w http.ResponseWriter, r *http.Request) (string, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		s.writeBodyError(w, err)
		return "", false
	}
	return string(body), true
}

// readJSON decodes a JSON body into v, rejecting unknown fields and
// trailing data. On failure it writes the response and returns false.
func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeBodyError(w, err)
		return false
	}
	if dec.More() {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: trailing data after JSON body", ErrBadRequest))
		return false
	}
	return true
}

func (s *Server) writeBodyError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		s.writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxErr.Limit))
		return
	}
	s.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrBadRequest, err))
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("writing response", "error", err)
	}
}
