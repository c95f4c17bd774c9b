package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"signaldesk/internal/collection"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady checks that the backing store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if err := s.app.Backend.Ping(ctx); err != nil {
		checks["storage"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else if stored, err := s.app.Backend.StoredCounts(ctx); err != nil {
		checks["storage"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
		if stored != nil {
			checks["stored_records"] = stored
		}
	}

	checks["records"] = s.app.Backend.Counts()
	checks["cache"] = map[string]any{
		"overview_entries": s.app.Dashboard.Cache().Size(),
		"status":           "ok",
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	traceMetrics := s.tracer.GetMetrics()
	securityMetrics := s.detector.GetMetrics()

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n", traceMetrics.TotalRequests)
	fmt.Fprintf(w, "http_requests_errors_total{class=\"client\"} %d\n", traceMetrics.ClientErrors)
	fmt.Fprintf(w, "http_requests_errors_total{class=\"server\"} %d\n\n", traceMetrics.ServerErrors)

	fmt.Fprintf(w, "# HELP http_response_time_microseconds Average response time\n")
	fmt.Fprintf(w, "# TYPE http_response_time_microseconds gauge\n")
	fmt.Fprintf(w, "http_response_time_microseconds %d\n\n", traceMetrics.AverageResponseTime)

	fmt.Fprintf(w, "# HELP records Current records per collection\n")
	fmt.Fprintf(w, "# TYPE records gauge\n")
	counts := s.app.Backend.Counts()
	for _, kind := range collection.Kinds {
		fmt.Fprintf(w, "records{kind=%q} %d\n", kind, counts[kind])
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP activity_events Change events held in the activity feed\n")
	fmt.Fprintf(w, "# TYPE activity_events gauge\n")
	fmt.Fprintf(w, "activity_events %d\n\n", s.app.Activity.Len())

	fmt.Fprintf(w, "# HELP cache_entries Current cache entries\n")
	fmt.Fprintf(w, "# TYPE cache_entries gauge\n")
	fmt.Fprintf(w, "cache_entries{type=\"overview\"} %d\n\n", s.app.Dashboard.Cache().Size())

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", s.rateLimiter.Rejected())

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", s.rateLimiter.ActiveClients())

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.started).Seconds())
}
