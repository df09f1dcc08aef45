package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleTunerAdd(t *testing.T) {
	tm := NewTunerModel()
	handler := HandleTunerAdd(tm)

	rec := postJSON(t, handler, "/api/tuners/add",
		`{"name": "rtl0", "center_frequency": 100000000, "sample_rate": 2000000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, tm.Count())

	tuner := tm.GetTuner("rtl0")
	require.NotNil(t, tuner)
	center, err := tuner.CenterFrequency()
	require.NoError(t, err)
	assert.Equal(t, int64(100_000_000), center)
}

func TestHandleTunerAddDuplicate(t *testing.T) {
	tm := NewTunerModel()
	tm.AddTuner(NewStaticTuner("rtl0", 100_000_000, 2_000_000))
	handler := HandleTunerAdd(tm)

	rec := postJSON(t, handler, "/api/tuners/add",
		`{"name": "rtl0", "center_frequency": 146000000, "sample_rate": 2000000}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, tm.Count())
}

func TestHandleTunerAddMissingFields(t *testing.T) {
	handler := HandleTunerAdd(NewTunerModel())

	for _, body := range []string{
		`{}`,
		`{"name": "rtl0"}`,
		`{"name": "rtl0", "center_frequency": 100000000}`,
		`{"name": "rtl0", "center_frequency": -1, "sample_rate": 2000000}`,
	} {
		rec := postJSON(t, handler, "/api/tuners/add", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestHandleTunerRetune(t *testing.T) {
	tm := NewTunerModel()
	tm.AddTuner(NewStaticTuner("rtl0", 100_000_000, 2_000_000))

	var events []TunerEvent
	tm.AddListener(func(event TunerEvent) {
		events = append(events, event)
	})

	handler := HandleTunerRetune(tm)
	rec := postJSON(t, handler, "/api/tuners/retune",
		`{"name": "rtl0", "center_frequency": 146000000}`)
	require.Equal(t, http.StatusOK, rec.Code)

	center, err := tm.GetTuner("rtl0").CenterFrequency()
	require.NoError(t, err)
	assert.Equal(t, int64(146_000_000), center)

	require.Len(t, events, 1)
	assert.Equal(t, EventUpdateFrequency, events[0].Kind())
	assert.Equal(t, int64(146_000_000), events[0].TargetFrequency())
}

func TestHandleTunerRetuneClosed(t *testing.T) {
	tm := NewTunerModel()
	closed := NewStaticTuner("rtl0", 100_000_000, 2_000_000)
	closed.Close()
	tm.AddTuner(closed)

	handler := HandleTunerRetune(tm)
	rec := postJSON(t, handler, "/api/tuners/retune",
		`{"name": "rtl0", "center_frequency": 146000000}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleTunerRetuneNotFound(t *testing.T) {
	handler := HandleTunerRetune(NewTunerModel())

	rec := postJSON(t, handler, "/api/tuners/retune",
		`{"name": "ghost", "center_frequency": 146000000}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleTunerRemove(t *testing.T) {
	tm := NewTunerModel()
	tm.AddTuner(NewStaticTuner("rtl0", 100_000_000, 2_000_000))
	handler := HandleTunerRemove(tm)

	rec := postJSON(t, handler, "/api/tuners/remove", `{"name": "rtl0"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, tm.Count())

	rec = postJSON(t, handler, "/api/tuners/remove", `{"name": "rtl0"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleTunersListsUnreadable(t *testing.T) {
	tm := NewTunerModel()
	tm.AddTuner(NewStaticTuner("rtl0", 100_000_000, 2_000_000))
	closed := NewStaticTuner("rtl1", 146_000_000, 2_000_000)
	closed.Close()
	tm.AddTuner(closed)

	req := httptest.NewRequest(http.MethodGet, "/api/tuners", nil)
	rec := httptest.NewRecorder()
	HandleTuners(tm)(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Body.String(), `"rtl0"`)
	assert.Contains(t, rec.Body.String(), `"rtl1"`)
	assert.Contains(t, rec.Body.String(), `"readable":false`)
}
