package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type startRequest struct {
	Role       string `json:"role"`
	Difficulty string `json:"difficulty"`
}

type startResponse struct {
	SessionID string `json:"sessionId"`
}

type sessionRequest struct {
	SessionID string `json:"sessionId"`
}

type answerRequest struct {
	SessionID string `json:"sessionId"`
	Answer    string `json:"answer"`
}

type questionResponse struct {
	Question string `json:"question,omitempty"`
	Message  string `json:"message,omitempty"`
}

// maxBodyBytes bounds request bodies; answers are free text.
const maxBodyBytes = 64 << 10

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= 500 {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("code", code),
			zap.Error(err),
		)
	}
	writeError(w, status, code, messageFor(err, status))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !decode(w, r, &req) {
		return
	}
	caller, _ := CallerFrom(r.Context())
	sess, err := s.sessions.Start(r.Context(), caller, req.Role, req.Difficulty)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, startResponse{SessionID: sess.ID})
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decode(w, r, &req) {
		return
	}
	caller, _ := CallerFrom(r.Context())
	res, err := s.sessions.NextQuestion(r.Context(), req.SessionID, caller)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if res.Exhausted {
		writeJSON(w, http.StatusOK, questionResponse{Message: "exhausted"})
		return
	}
	writeJSON(w, http.StatusOK, questionResponse{Question: res.Question})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decode(w, r, &req) {
		return
	}
	caller, _ := CallerFrom(r.Context())
	ev, err := s.sessions.SubmitAnswer(r.Context(), req.SessionID, caller, req.Answer)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decode(w, r, &req) {
		return
	}
	caller, _ := CallerFrom(r.Context())
	sum, err := s.sessions.End(r.Context(), req.SessionID, caller)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"), caller)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "validation", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	caller, _ := CallerFrom(r.Context())
	h, err := s.sessions.History(r.Context(), caller, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}
