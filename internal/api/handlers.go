// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	apperrors "smartdm-service/internal/common/errors"
	"smartdm-service/internal/common/logger"
	"smartdm-service/internal/common/validation"
	"smartdm-service/internal/models"
)

const maxAskBodyBytes = 64 << 10

var askSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["question"],
	"properties": {
		"question": {"type": "string", "minLength": 1},
		"use_gpt4": {"type": "boolean"}
	}
}`)

type askRequest struct {
	Question string `json:"question"`
	UseGPT4  bool   `json:"use_gpt4"`
}

func (s *Server) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": serviceMessage})
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.ReadinessTimeout)
	defer cancel()

	failures := map[string]string{}
	for _, c := range s.checks {
		if err := c.Check(ctx); err != nil {
			failures[c.Name] = err.Error()
		}
	}

	if len(failures) > 0 {
		s.logger.Warn("readiness check failed", map[string]interface{}{"failures": failures})
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "not_ready",
			"failures": failures,
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := s.logger.With(map[string]interface{}{
		"requestId": logger.RequestIDFromContext(r.Context()),
	})

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAskBodyBytes))
	if err != nil {
		s.fail(w, r, log, start, apperrors.NewInvalidRequestError("request body too large or unreadable"))
		return
	}

	result, err := askSchema.ValidateBytes(body)
	if err != nil {
		s.fail(w, r, log, start, apperrors.NewInvalidRequestError("request body is not valid JSON"))
		return
	}
	if !result.Valid {
		s.fail(w, r, log, start, apperrors.NewInvalidRequestError(result.Error()))
		return
	}

	var req askRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.fail(w, r, log, start, apperrors.NewInvalidRequestError(err.Error()))
		return
	}

	answer, err := s.resolver.Resolve(r.Context(), req.Question, req.UseGPT4)
	if err != nil {
		s.fail(w, r, log, start, err)
		return
	}

	s.obs.RecordQuestion(r.Context(), "http", string(models.PathOf(answer)), time.Since(start))
	respondJSON(w, http.StatusOK, answer)
}

// fail maps an error to its HTTP status. Generation failures keep the
// "GPT 응답 실패" detail prefix.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, log Logger, start time.Time, err error) {
	stdErr := apperrors.AsStandardError(err)
	s.obs.RecordQuestion(r.Context(), "http", string(stdErr.Code), time.Since(start))

	status := apperrors.HTTPStatus(stdErr.Code)
	detail := stdErr.Details
	if apperrors.GetErrorCategory(stdErr.Code) == "AI" || stdErr.Code == apperrors.ErrCodeInternal {
		detail = "GPT 응답 실패: " + stdErr.Details
	}

	fields := map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"status":    status,
		"details":   stdErr.Details,
	}
	if status >= http.StatusInternalServerError {
		log.Error("ask failed", fields)
	} else {
		log.Warn("ask rejected", fields)
	}
	respondDetail(w, status, detail)
}

func (s *Server) Manual(w http.ResponseWriter, r *http.Request) {
	result := s.manual.Fetch(r.Context())
	if result.Status == models.SourceMissing {
		respondDetail(w, http.StatusNotFound, "manual not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"manual": result.Text})
}

func (s *Server) DebugManual(w http.ResponseWriter, r *http.Request) {
	limit := s.config.DebugManualLength
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondDetail(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	result := s.manual.Fetch(r.Context())
	text := []rune(result.Text)
	if limit > 0 && len(text) > limit {
		text = text[:limit]
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"manual": string(text),
		"status": string(result.Status),
		"length": len([]rune(result.Text)),
	})
}
