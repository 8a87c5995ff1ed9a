package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"financeviz/internal/core"
	"financeviz/internal/log"
	"financeviz/internal/metrics"
)

// handleFinanceDetails serves the view of one finance element.
func (s *Server) handleFinanceDetails(w http.ResponseWriter, r *http.Request) {
	req, err := ParseElementRequest(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.explorer.ElementView(r.Context(), req.ID, req.Year)
	switch {
	case err == nil:
		writeJSON(w, r, http.StatusOK, view)
	case errors.Is(err, core.ErrElementNotFound), errors.Is(err, core.ErrYearNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Element view failed",
			log.NewFields().WithElement(req.ID, req.Year).WithError(err).WithOperation(log.OpView).ToSlice()...)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.explorer.Years(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Listing years failed", log.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if years == nil {
		years = []int{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"years": years})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	metrics.RateLimited()
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.clientIP.ClientIP(r), log.FieldPath, r.URL.Path)
	writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady runs every readiness check with a shared timeout.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			checks[name] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, r, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}
