package statusbar

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlignment(t *testing.T) {
	assert.Equal(t, Right, ParseAlignment("Right"))
	assert.Equal(t, Left, ParseAlignment("Left"))
	assert.Equal(t, Left, ParseAlignment(""))
	assert.Equal(t, Left, ParseAlignment("center"))
}

func TestNew_ItemStartsHidden(t *testing.T) {
	h := NewHost("test")
	it := h.New(Right, DefaultPriority)

	assert.False(t, it.Visible())
	assert.Equal(t, Right, it.Alignment())

	resp := h.buildResponse()
	assert.False(t, resp.Visible)
	assert.Empty(t, resp.Text)
}

func TestShow_PublishesFields(t *testing.T) {
	h := NewHost("test")
	it := h.New(Left, DefaultPriority)

	it.SetText("$(warning) Reconnect to Discord")
	it.SetTooltip("Connection lost")
	it.SetCommand("reconnect")
	it.Show()

	resp := h.buildResponse()
	assert.True(t, resp.Visible)
	assert.Equal(t, "$(warning) Reconnect to Discord", resp.Text)
	assert.Equal(t, "Connection lost", resp.Tooltip)
	assert.Equal(t, "reconnect", resp.Command)
	assert.Equal(t, "Left", resp.Alignment)
}

func TestHide_KeepsItemButDropsFields(t *testing.T) {
	h := NewHost("test")
	it := h.New(Left, DefaultPriority)
	it.SetText("Discord Presence")
	it.Show()
	it.Hide()

	resp := h.buildResponse()
	assert.False(t, resp.Visible)
	assert.Empty(t, resp.Text, "hidden item exposes no content")

	// The item is still attached; showing again restores its fields.
	it.Show()
	assert.Equal(t, "Discord Presence", h.buildResponse().Text)
}

func TestShow_ClaimsRenderSlot(t *testing.T) {
	h := NewHost("test")
	first := h.New(Left, DefaultPriority)
	first.SetText("old")
	first.Show()

	second := h.New(Right, DefaultPriority)
	second.SetText("new")
	second.Show()

	resp := h.buildResponse()
	assert.Equal(t, "new", resp.Text)
	assert.Equal(t, "Right", resp.Alignment)
}

func TestDispose_DetachesAndIsIdempotent(t *testing.T) {
	h := NewHost("test")
	it := h.New(Left, DefaultPriority)
	it.SetText("Discord Presence")
	it.Show()

	it.Dispose()
	it.Dispose()

	resp := h.buildResponse()
	assert.False(t, resp.Visible)
	assert.Empty(t, resp.Alignment, "disposed item no longer renders")

	// Mutations after dispose are silently dropped.
	it.SetText("ghost")
	it.Show()
	assert.False(t, h.buildResponse().Visible)
}

func TestHandleIndicator_ServesJSON(t *testing.T) {
	h := NewHost("1.2.3")
	it := h.New(Left, DefaultPriority)
	it.SetText("Discord Presence")
	it.SetTooltip("Connected")
	it.Show()

	req := httptest.NewRequest("GET", "/api/indicator", nil)
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp indicatorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Visible)
	assert.Equal(t, "Discord Presence", resp.Text)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestStartBindsAndReportsPort(t *testing.T) {
	h := NewHost("test")
	assert.Equal(t, 0, h.Port(), "no port before Start")
	assert.Empty(t, h.Addr())

	h.Start()
	defer h.Stop()

	assert.NotEqual(t, 0, h.Port())
	assert.NotEmpty(t, h.Addr())
}

func TestHandleHealth(t *testing.T) {
	h := NewHost("test")

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestHandleRoot_UnknownPathIs404(t *testing.T) {
	h := NewHost("test")

	req := httptest.NewRequest("GET", "/nope", nil)
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)

	assert.Equal(t, 404, rec.Code)
}
