package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/academy/pkg/health"
)

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("no checks is healthy", func(t *testing.T) {
		t.Parallel()
		require.True(t, health.Run(context.Background(), nil).Healthy())
	})

	t.Run("one failing check makes report unhealthy", func(t *testing.T) {
		t.Parallel()

		report := health.Run(context.Background(), health.Checks{
			"ok":   func(context.Context) error { return nil },
			"down": func(context.Context) error { return errors.New("connection refused") },
		})
		require.False(t, report.Healthy())
		require.Equal(t, health.StatusHealthy, report.Checks["ok"].Status)
		require.Equal(t, health.StatusUnhealthy, report.Checks["down"].Status)
		require.Contains(t, report.Checks["down"].Error, "connection refused")
	})

	t.Run("slow check times out", func(t *testing.T) {
		t.Parallel()

		report := health.Run(context.Background(), health.Checks{
			"slow": func(ctx context.Context) error {
				<-ctx.Done()
				time.Sleep(50 * time.Millisecond)
				return nil
			},
		}, health.WithTimeout(10*time.Millisecond))
		require.False(t, report.Healthy())
		require.Equal(t, health.ErrCheckTimeout.Error(), report.Checks["slow"].Error)
	})

	t.Run("nil check fails", func(t *testing.T) {
		t.Parallel()
		require.False(t, health.Run(context.Background(), health.Checks{"nil": nil}).Healthy())
	})
}

func TestHandlers(t *testing.T) {
	t.Parallel()

	t.Run("live plain text", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		health.Live()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "OK", rec.Body.String())
	})

	t.Run("ready json unhealthy", func(t *testing.T) {
		t.Parallel()

		h := health.Ready(health.Checks{"kv": func(context.Context) error { return errors.New("closed") }})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health/ready?format=json", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var report health.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		require.Equal(t, health.StatusUnhealthy, report.Status)
		require.Contains(t, report.Checks, "kv")
	})
}
