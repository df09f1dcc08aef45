package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func focusRequest(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/focus", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleFocusSuccess(t *testing.T) {
	tm := NewTunerModel()
	tm.AddTuner(NewStaticTuner("rtl0", 100_000_000, 2_000_000))
	handler := HandleFocus(NewSpectralDisplayRouter(tm, nil), nil)

	rec := focusRequest(t, handler, `{"frequency": 100500000}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp FocusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "rtl0", resp.Tuner)
	assert.Equal(t, int64(100_500_000), resp.TargetFrequency)
}

func TestHandleFocusNotFound(t *testing.T) {
	tm := NewTunerModel()
	tm.AddTuner(NewStaticTuner("rtl0", 100_000_000, 2_000_000))
	handler := HandleFocus(NewSpectralDisplayRouter(tm, nil), nil)

	rec := focusRequest(t, handler, `{"frequency": 150000000}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleFocusRejectsBadRequests(t *testing.T) {
	tm := NewTunerModel()
	handler := HandleFocus(NewSpectralDisplayRouter(tm, nil), nil)

	tests := []struct {
		name string
		body string
	}{
		{"zero frequency", `{"frequency": 0}`},
		{"negative frequency", `{"frequency": -5}`},
		{"missing frequency", `{}`},
		{"invalid json", `{frequency}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := focusRequest(t, handler, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleFocusMethodNotAllowed(t *testing.T) {
	tm := NewTunerModel()
	handler := HandleFocus(NewSpectralDisplayRouter(tm, nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/focus", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleFocusRateLimited(t *testing.T) {
	tm := NewTunerModel()
	tm.AddTuner(NewStaticTuner("rtl0", 100_000_000, 2_000_000))

	limiter := NewIPRateLimiterManager(1)
	defer limiter.Stop()
	handler := HandleFocus(NewSpectralDisplayRouter(tm, nil), limiter)

	first := focusRequest(t, handler, `{"frequency": 100000000}`)
	assert.Equal(t, http.StatusOK, first.Code)

	second := focusRequest(t, handler, `{"frequency": 100000000}`)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
