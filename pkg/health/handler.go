package health

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Live always answers OK while the process is serving.
func Live() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, http.StatusOK, Report{Status: StatusHealthy})
	}
}

// Ready runs checks and answers 503 if any of them fails.
func Ready(checks Checks, opts ...Option) http.HandlerFunc {
	o := newOptions(opts...)
	return func(w http.ResponseWriter, r *http.Request) {
		report := run(r.Context(), checks, o)
		status := http.StatusOK
		if !report.Healthy() {
			status = http.StatusServiceUnavailable
		}
		respond(w, r, status, report)
	}
}

func respond(w http.ResponseWriter, r *http.Request, status int, report Report) {
	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(report)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if report.Healthy() {
		_, _ = w.Write([]byte("OK"))
		return
	}
	_, _ = w.Write([]byte("Service Unavailable"))
}
