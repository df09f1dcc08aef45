package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleChannelUpdate(t *testing.T) {
	cm := NewChannelMetadataModel()
	handler := HandleChannelUpdate(cm)

	rec := postJSON(t, handler, "/api/channels/update",
		`{"id": 1, "name": "Dispatch", "frequency": 460125000, "state": "call", "from": "unit-7"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	metadata, ok := cm.GetChannel(1)
	require.True(t, ok)
	assert.Equal(t, "Dispatch", metadata.Name)
	assert.Equal(t, int64(460_125_000), metadata.Frequency)
	assert.Equal(t, StateCall, metadata.State)
	assert.Equal(t, "unit-7", metadata.From)
}

func TestHandleChannelUpdateValidation(t *testing.T) {
	handler := HandleChannelUpdate(NewChannelMetadataModel())

	for _, body := range []string{
		`{}`,
		`{"id": 1, "name": "Dispatch"}`,
		`{"id": 1, "frequency": 460125000}`,
		`{"id": 1, "name": "Dispatch", "frequency": 460125000, "state": "bogus"}`,
	} {
		rec := postJSON(t, handler, "/api/channels/update", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestHandleChannelState(t *testing.T) {
	cm := NewChannelMetadataModel()
	cm.AddChannel(ChannelMetadata{ID: 1, Name: "Dispatch", Frequency: 460_125_000})
	handler := HandleChannelState(cm)

	rec := postJSON(t, handler, "/api/channels/state", `{"id": 1, "state": "encrypted"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	metadata, ok := cm.GetChannel(1)
	require.True(t, ok)
	assert.Equal(t, StateEncrypted, metadata.State)

	rec = postJSON(t, handler, "/api/channels/state", `{"id": 99, "state": "idle"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleChannelRemove(t *testing.T) {
	cm := NewChannelMetadataModel()
	cm.AddChannel(ChannelMetadata{ID: 1, Name: "Dispatch", Frequency: 460_125_000})
	handler := HandleChannelRemove(cm)

	rec := postJSON(t, handler, "/api/channels/remove", `{"id": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, cm.Count())

	rec = postJSON(t, handler, "/api/channels/remove", `{"id": 1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleChannelUpdateNotifiesOnNewOnly(t *testing.T) {
	cm := NewChannelMetadataModel()
	added := 0
	cm.AddChannelAddListener(func(ChannelMetadata) { added++ })
	handler := HandleChannelUpdate(cm)

	body := `{"id": 1, "name": "Dispatch", "frequency": 460125000}`
	require.Equal(t, http.StatusOK, postJSON(t, handler, "/api/channels/update", body).Code)
	require.Equal(t, http.StatusOK, postJSON(t, handler, "/api/channels/update", body).Code)

	assert.Equal(t, 1, added)
}

func TestParseChannelState(t *testing.T) {
	for state, name := range channelStateNames {
		parsed, ok := ParseChannelState(name)
		require.True(t, ok, name)
		assert.Equal(t, state, parsed)
	}

	_, ok := ParseChannelState("bogus")
	assert.False(t, ok)
}
