// Package webui provides the SessionsAPI organism for REST API handlers.
// This file contains handlers for the editing session endpoints that serve
// session state, layer operations, and preview URLs to the web UI.
package webui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"go_editor/core"
	"go_editor/db"
	"go_editor/editor"
	"go_editor/geometry"
)

// URLBuilder produces imagor render paths and URLs for editor state.
// This interface is satisfied by imagorclient.Client and keeps the API
// testable without a running imagor.
type URLBuilder interface {
	PreviewPath(s editor.State) string
	PreviewURL(s editor.State) string
}

// PreviewRenderer produces thumbnail bytes for editor state.
// This interface is satisfied by preview.Service.
type PreviewRenderer interface {
	Render(ctx context.Context, state editor.State) ([]byte, error)
}

// SessionsAPI is an organism that provides REST API handlers for editing
// sessions. It composes the session repository for persistence, the
// autosaver for debounced writes, and the broadcaster for live updates.
//
// Endpoints:
// - GET    /api/sessions                                  - List sessions
// - POST   /api/sessions                                  - Create a session
// - GET    /api/sessions/{id}                             - Session state
// - PUT    /api/sessions/{id}                             - Replace session state
// - DELETE /api/sessions/{id}                             - Delete a session
// - GET    /api/sessions/{id}/history                     - Autosave snapshots
// - GET    /api/sessions/{id}/output-size                 - Rendered dimensions
// - GET    /api/sessions/{id}/preview-url                 - imagor render URL
// - GET    /api/sessions/{id}/preview                     - Local PNG thumbnail
// - POST   /api/sessions/{id}/layers                      - Add a layer
// - DELETE /api/sessions/{id}/layers/{lid}                - Remove a layer
// - PATCH  /api/sessions/{id}/layers/{lid}/display        - Drag/resize update
// - POST   /api/sessions/{id}/layers/{lid}/rotate         - Rotate a layer
type SessionsAPI struct {
	repo        *db.Repository
	autosaver   *db.Autosaver
	urls        URLBuilder
	previews    PreviewRenderer
	broadcaster *WebSocketBroadcaster

	defaultLimit int
	maxLimit     int
	placement    editor.LayerPlacement
	snapDisabled bool

	// live holds the authoritative in-memory state for sessions with
	// autosave writes still pending. The database catches up on flush.
	liveMu sync.RWMutex
	live   map[string]liveSession
}

type liveSession struct {
	name  string
	state editor.State
}

// SessionsAPIConfig configures the SessionsAPI behavior.
type SessionsAPIConfig struct {
	// DefaultLimit is the default number of items to return in list endpoints
	DefaultLimit int

	// MaxLimit is the maximum number of items that can be requested
	MaxLimit int

	// ScaleFactor sizes newly inserted layers; zero means the positioning
	// calculator's default
	ScaleFactor float64

	// Placement anchors newly inserted layers; empty means top-left
	Placement geometry.Placement

	// DisableSnapping turns off edge/center snapping for every drag
	DisableSnapping bool
}

// DefaultSessionsAPIConfig returns a default configuration.
func DefaultSessionsAPIConfig() SessionsAPIConfig {
	return SessionsAPIConfig{
		DefaultLimit: 20,
		MaxLimit:     100,
	}
}

// NewSessionsAPI creates a new SessionsAPI. The autosaver, urls, previews,
// and broadcaster parameters are optional; nil disables the corresponding
// behavior (writes become synchronous without an autosaver).
func NewSessionsAPI(
	repo *db.Repository,
	autosaver *db.Autosaver,
	urls URLBuilder,
	previews PreviewRenderer,
	broadcaster *WebSocketBroadcaster,
	config SessionsAPIConfig,
) *SessionsAPI {
	if config.DefaultLimit < 1 {
		config.DefaultLimit = 20
	}
	if config.MaxLimit < 1 {
		config.MaxLimit = 100
	}

	return &SessionsAPI{
		repo:         repo,
		autosaver:    autosaver,
		urls:         urls,
		previews:     previews,
		broadcaster:  broadcaster,
		defaultLimit: config.DefaultLimit,
		maxLimit:     config.MaxLimit,
		placement: editor.LayerPlacement{
			ScaleFactor: config.ScaleFactor,
			Placement:   config.Placement,
		},
		snapDisabled: config.DisableSnapping,
		live:         make(map[string]liveSession),
	}
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (api *SessionsAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/sessions", api.HandleSessions)
	mux.HandleFunc("/api/sessions/", api.HandleSessionSubtree)
}

// CreateSessionRequest is the body for POST /api/sessions.
type CreateSessionRequest struct {
	Name         string  `json:"name,omitempty"`
	Source       string  `json:"source"`
	SourceWidth  float64 `json:"sourceWidth"`
	SourceHeight float64 `json:"sourceHeight"`
}

// SessionResponse is the full session representation.
type SessionResponse struct {
	ID          string        `json:"id"`
	Name        string        `json:"name,omitempty"`
	State       editor.State  `json:"state"`
	OutputSize  geometry.Size `json:"outputSize"`
	CanvasSize  geometry.Size `json:"canvasSize"`
	PreviewPath string        `json:"previewPath,omitempty"`
}

// SessionSummary is the list representation of a session.
type SessionSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name,omitempty"`
	Source     string    `json:"source"`
	LayerCount int       `json:"layerCount"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SessionsResponse represents the JSON response for GET /api/sessions.
type SessionsResponse struct {
	Sessions []SessionSummary `json:"sessions"`
	Count    int              `json:"count"`
}

// HandleSessions handles GET (list) and POST (create) on /api/sessions.
func (api *SessionsAPI) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		api.handleList(w, r)
	case http.MethodPost:
		api.handleCreate(w, r)
	default:
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (api *SessionsAPI) handleList(w http.ResponseWriter, r *http.Request) {
	limit := api.parseLimit(r)

	records, err := api.repo.ListSessions(r.Context(), limit)
	if err != nil {
		api.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summaries := make([]SessionSummary, 0, len(records))
	for _, rec := range records {
		name, state, ok := api.resolve(rec)
		if !ok {
			continue
		}
		summaries = append(summaries, SessionSummary{
			ID:         rec.ID,
			Name:       name,
			Source:     state.Source,
			LayerCount: len(state.Layers),
			UpdatedAt:  rec.UpdatedAt,
		})
	}

	api.writeJSON(w, http.StatusOK, SessionsResponse{
		Sessions: summaries,
		Count:    len(summaries),
	})
}

func (api *SessionsAPI) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Source == "" {
		api.writeError(w, http.StatusBadRequest, "source is required")
		return
	}
	if req.SourceWidth <= 0 || req.SourceHeight <= 0 {
		api.writeError(w, http.StatusBadRequest, "source dimensions must be positive")
		return
	}

	state := editor.State{
		Source:       req.Source,
		SourceWidth:  req.SourceWidth,
		SourceHeight: req.SourceHeight,
	}

	id := uuid.NewString()
	if err := api.persistSync(r, id, req.Name, state); err != nil {
		api.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	api.notifyUpdated(id, req.Name, state)
	api.writeJSON(w, http.StatusCreated, api.sessionResponse(id, req.Name, state))
}

// HandleSessionSubtree dispatches /api/sessions/{id}[/...] requests.
func (api *SessionsAPI) HandleSessionSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/sessions/"), "/")
	segments := strings.Split(rest, "/")
	if rest == "" || segments[0] == "" {
		api.writeError(w, http.StatusNotFound, "session id required")
		return
	}
	id := segments[0]

	switch {
	case len(segments) == 1:
		api.handleSession(w, r, id)
	case len(segments) == 2 && segments[1] == "history":
		api.handleHistory(w, r, id)
	case len(segments) == 2 && segments[1] == "output-size":
		api.handleOutputSize(w, r, id)
	case len(segments) == 2 && segments[1] == "preview-url":
		api.handlePreviewURL(w, r, id)
	case len(segments) == 2 && segments[1] == "preview":
		api.handlePreview(w, r, id)
	case len(segments) == 2 && segments[1] == "layers":
		api.handleAddLayer(w, r, id)
	case len(segments) == 3 && segments[1] == "layers":
		api.handleLayer(w, r, id, segments[2])
	case len(segments) == 4 && segments[1] == "layers" && segments[3] == "display":
		api.handleLayerDisplay(w, r, id, segments[2])
	case len(segments) == 4 && segments[1] == "layers" && segments[3] == "rotate":
		api.handleLayerRotate(w, r, id, segments[2])
	default:
		api.writeError(w, http.StatusNotFound, "unknown session endpoint")
	}
}

func (api *SessionsAPI) handleSession(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		name, state, err := api.loadSession(r, id)
		if err != nil {
			api.writeLoadError(w, err)
			return
		}
		api.writeJSON(w, http.StatusOK, api.sessionResponse(id, name, state))

	case http.MethodPut:
		api.handleReplace(w, r, id)

	case http.MethodDelete:
		api.handleDelete(w, r, id)

	default:
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// UpdateSessionRequest is the body for PUT /api/sessions/{id}.
// A nil State leaves the editing state untouched (rename only).
type UpdateSessionRequest struct {
	Name  *string         `json:"name,omitempty"`
	State json.RawMessage `json:"state,omitempty"`
}

func (api *SessionsAPI) handleReplace(w http.ResponseWriter, r *http.Request, id string) {
	name, state, err := api.loadSession(r, id)
	if err != nil {
		api.writeLoadError(w, err)
		return
	}

	var req UpdateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Name != nil {
		name = *req.Name
	}
	if len(req.State) > 0 {
		next, err := editor.Decode(req.State)
		if err != nil {
			api.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if next.Source == "" || next.SourceWidth <= 0 || next.SourceHeight <= 0 {
			api.writeError(w, http.StatusBadRequest, "state must carry a source and positive dimensions")
			return
		}
		state = next
	}

	if err := api.persist(r, id, name, state); err != nil {
		api.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	api.notifyUpdated(id, name, state)
	api.writeJSON(w, http.StatusOK, api.sessionResponse(id, name, state))
}

func (api *SessionsAPI) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodDelete {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	api.liveMu.Lock()
	delete(api.live, id)
	api.liveMu.Unlock()

	// A queued autosave would re-insert the row after the debounce window
	if api.autosaver != nil {
		api.autosaver.Forget(id)
	}

	if err := api.repo.DeleteSession(r.Context(), id); err != nil {
		api.writeLoadError(w, err)
		return
	}

	if api.broadcaster != nil {
		api.broadcaster.BroadcastSessionDeleted(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// HistoryResponse represents the JSON response for the history endpoint.
type HistoryResponse struct {
	Entries []db.HistoryEntry `json:"entries"`
	Count   int               `json:"count"`
	Limit   int               `json:"limit"`
}

func (api *SessionsAPI) handleHistory(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := api.parseLimit(r)
	entries, err := api.repo.QueryHistory(r.Context(), id, limit)
	if err != nil {
		api.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	api.writeJSON(w, http.StatusOK, HistoryResponse{
		Entries: entries,
		Count:   len(entries),
		Limit:   limit,
	})
}

// OutputSizeResponse reports the rendered and canvas dimensions.
type OutputSizeResponse struct {
	Output geometry.Size `json:"output"`
	Canvas geometry.Size `json:"canvas"`
}

func (api *SessionsAPI) handleOutputSize(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	_, state, err := api.loadSession(r, id)
	if err != nil {
		api.writeLoadError(w, err)
		return
	}

	api.writeJSON(w, http.StatusOK, OutputSizeResponse{
		Output: state.OutputSize(),
		Canvas: state.CanvasSize(),
	})
}

// PreviewURLResponse carries the imagor render path and absolute URL.
type PreviewURLResponse struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

func (api *SessionsAPI) handlePreviewURL(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if api.urls == nil {
		api.writeError(w, http.StatusServiceUnavailable, "imagor not configured")
		return
	}

	_, state, err := api.loadSession(r, id)
	if err != nil {
		api.writeLoadError(w, err)
		return
	}

	api.writeJSON(w, http.StatusOK, PreviewURLResponse{
		Path: api.urls.PreviewPath(state),
		URL:  api.urls.PreviewURL(state),
	})
}

func (api *SessionsAPI) handlePreview(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if api.previews == nil {
		api.writeError(w, http.StatusServiceUnavailable, "preview rendering not configured")
		return
	}

	_, state, err := api.loadSession(r, id)
	if err != nil {
		api.writeLoadError(w, err)
		return
	}

	data, err := api.previews.Render(r.Context(), state)
	if err != nil {
		api.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// AddLayerRequest is the body for POST /api/sessions/{id}/layers.
type AddLayerRequest struct {
	Source string  `json:"source"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Viewport, when present, restricts optimal placement to the visible
	// part of the preview.
	Viewport *geometry.Viewport `json:"viewport,omitempty"`
}

// LayerResponse is a layer plus its resolved overlay position.
type LayerResponse struct {
	Layer editor.Layer `json:"layer"`

	// Left and Top are CSS percent strings for the overlay renderer.
	Left string `json:"left"`
	Top  string `json:"top"`

	// SnappedToCenter reports per-axis center snaps for guide rendering.
	// Only set by the display endpoint.
	SnappedToCenter *geometry.SnapFlags `json:"snappedToCenter,omitempty"`
}

func (api *SessionsAPI) handleAddLayer(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name, state, err := api.loadSession(r, id)
	if err != nil {
		api.writeLoadError(w, err)
		return
	}

	var req AddLayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Source == "" {
		api.writeError(w, http.StatusBadRequest, "layer source is required")
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		api.writeError(w, http.StatusBadRequest, "layer dimensions must be positive")
		return
	}

	next, layer := state.AddLayerPlaced(req.Source, req.Width, req.Height, req.Viewport, api.placement)
	if err := api.persist(r, id, name, next); err != nil {
		api.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	left, top := next.LayerOverlay(layer)
	api.notifyUpdated(id, name, next)
	api.writeJSON(w, http.StatusCreated, LayerResponse{Layer: layer, Left: left, Top: top})
}

func (api *SessionsAPI) handleLayer(w http.ResponseWriter, r *http.Request, id, layerID string) {
	if r.Method != http.MethodDelete {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name, state, err := api.loadSession(r, id)
	if err != nil {
		api.writeLoadError(w, err)
		return
	}

	next, err := state.RemoveLayer(layerID)
	if err != nil {
		api.writeLayerError(w, err)
		return
	}
	if err := api.persist(r, id, name, next); err != nil {
		api.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	api.notifyUpdated(id, name, next)
	w.WriteHeader(http.StatusNoContent)
}

// DisplayRequest is the body for PATCH /api/sessions/{id}/layers/{lid}/display.
// It carries the live drag/resize rectangle in overlay pixels.
type DisplayRequest struct {
	Display geometry.Rect `json:"display"`
	Overlay geometry.Size `json:"overlay"`

	// Resizing selects resize semantics over move semantics.
	Resizing bool `json:"resizing,omitempty"`

	// SnapDisabled passes coordinates through without edge/center snapping.
	SnapDisabled bool `json:"snapDisabled,omitempty"`
}

func (api *SessionsAPI) handleLayerDisplay(w http.ResponseWriter, r *http.Request, id, layerID string) {
	if r.Method != http.MethodPatch {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name, state, err := api.loadSession(r, id)
	if err != nil {
		api.writeLoadError(w, err)
		return
	}

	var req DisplayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Overlay.Width <= 0 || req.Overlay.Height <= 0 {
		api.writeError(w, http.StatusBadRequest, "overlay dimensions must be positive")
		return
	}

	// Snap in overlay space before converting back to declarative state.
	// Resizes never snap; a corner drag fighting the snap guides is worse
	// than no guides.
	snap := geometry.ApplySnapping(
		req.Display.X, req.Display.Y,
		req.Display.Width, req.Display.Height,
		req.Overlay.Width, req.Overlay.Height,
		api.snapDisabled || req.SnapDisabled || req.Resizing)
	display := req.Display
	display.X, display.Y = snap.X, snap.Y

	next, err := state.ApplyDisplay(layerID, display, req.Overlay, req.Resizing)
	if err != nil {
		api.writeLayerError(w, err)
		return
	}
	if err := api.persist(r, id, name, next); err != nil {
		api.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	layer, _ := next.Layer(layerID)
	left, top := next.LayerOverlay(layer)
	api.notifyUpdated(id, name, next)
	api.writeJSON(w, http.StatusOK, LayerResponse{
		Layer:           layer,
		Left:            left,
		Top:             top,
		SnappedToCenter: &snap.SnappedToCenter,
	})
}

// RotateLayerRequest is the body for POST /api/sessions/{id}/layers/{lid}/rotate.
type RotateLayerRequest struct {
	Rotation geometry.Rotation `json:"rotation"`
}

func (api *SessionsAPI) handleLayerRotate(w http.ResponseWriter, r *http.Request, id, layerID string) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name, state, err := api.loadSession(r, id)
	if err != nil {
		api.writeLoadError(w, err)
		return
	}

	var req RotateLayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	next, err := state.RotateLayer(layerID, req.Rotation)
	if err != nil {
		api.writeLayerError(w, err)
		return
	}
	if err := api.persist(r, id, name, next); err != nil {
		api.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	layer, _ := next.Layer(layerID)
	left, top := next.LayerOverlay(layer)
	api.notifyUpdated(id, name, next)
	api.writeJSON(w, http.StatusOK, LayerResponse{Layer: layer, Left: left, Top: top})
}

// loadSession returns the current name and state for a session: the live
// in-memory copy when an autosave is pending, the stored row otherwise.
func (api *SessionsAPI) loadSession(r *http.Request, id string) (string, editor.State, error) {
	api.liveMu.RLock()
	entry, ok := api.live[id]
	api.liveMu.RUnlock()
	if ok {
		return entry.name, entry.state, nil
	}

	rec, err := api.repo.GetSession(r.Context(), id)
	if err != nil {
		return "", editor.State{}, err
	}
	state, err := editor.Decode([]byte(rec.State))
	if err != nil {
		return "", editor.State{}, err
	}
	return rec.Name, state, nil
}

// resolve maps a stored record onto its live state when one is pending.
func (api *SessionsAPI) resolve(rec db.SessionRecord) (string, editor.State, bool) {
	api.liveMu.RLock()
	entry, ok := api.live[rec.ID]
	api.liveMu.RUnlock()
	if ok {
		return entry.name, entry.state, true
	}

	state, err := editor.Decode([]byte(rec.State))
	if err != nil {
		return "", editor.State{}, false
	}
	return rec.Name, state, true
}

// Snapshot builds the session list sent to newly connected WebSocket
// clients. Live entries with pending autosave writes take precedence
// over stored rows.
func (api *SessionsAPI) Snapshot(ctx context.Context) InitialData {
	data := InitialData{Version: core.GetVersion()}

	records, err := api.repo.ListSessions(ctx, api.defaultLimit)
	if err != nil {
		return data
	}

	for _, rec := range records {
		name, state, ok := api.resolve(rec)
		if !ok {
			continue
		}
		entry := SessionUpdateData{
			SessionID:  rec.ID,
			Name:       name,
			Source:     state.Source,
			LayerCount: len(state.Layers),
			UpdatedAt:  rec.UpdatedAt,
		}
		if api.urls != nil {
			entry.PreviewPath = api.urls.PreviewPath(state)
		}
		data.Sessions = append(data.Sessions, entry)
	}
	return data
}

// persist queues the new state through the autosaver when one is wired,
// falling back to a synchronous write. The live map keeps reads current
// until the debounced write lands.
func (api *SessionsAPI) persist(r *http.Request, id, name string, state editor.State) error {
	if api.autosaver == nil {
		return api.persistSync(r, id, name, state)
	}

	encoded, err := state.Encode()
	if err != nil {
		return err
	}

	api.liveMu.Lock()
	api.live[id] = liveSession{name: name, state: state}
	api.liveMu.Unlock()

	api.autosaver.Queue(db.SessionRecord{ID: id, Name: name, State: string(encoded)})
	return nil
}

// persistSync writes the session row immediately.
func (api *SessionsAPI) persistSync(r *http.Request, id, name string, state editor.State) error {
	encoded, err := state.Encode()
	if err != nil {
		return err
	}
	return api.repo.UpsertSession(r.Context(), db.SessionRecord{
		ID:    id,
		Name:  name,
		State: string(encoded),
	})
}

// notifyUpdated broadcasts a session_updated event to WebSocket clients.
func (api *SessionsAPI) notifyUpdated(id, name string, state editor.State) {
	if api.broadcaster == nil {
		return
	}
	data := SessionUpdateData{
		SessionID:  id,
		Name:       name,
		Source:     state.Source,
		LayerCount: len(state.Layers),
		UpdatedAt:  time.Now(),
	}
	if api.urls != nil {
		data.PreviewPath = api.urls.PreviewPath(state)
	}
	api.broadcaster.BroadcastSessionUpdated(data)
}

func (api *SessionsAPI) sessionResponse(id, name string, state editor.State) SessionResponse {
	resp := SessionResponse{
		ID:         id,
		Name:       name,
		State:      state,
		OutputSize: state.OutputSize(),
		CanvasSize: state.CanvasSize(),
	}
	if api.urls != nil {
		resp.PreviewPath = api.urls.PreviewPath(state)
	}
	return resp
}

func (api *SessionsAPI) parseLimit(r *http.Request) int {
	limit := api.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > api.maxLimit {
		limit = api.maxLimit
	}
	return limit
}

// writeLoadError maps repository lookup failures onto HTTP statuses.
func (api *SessionsAPI) writeLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, db.ErrSessionNotFound) {
		api.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	api.writeError(w, http.StatusInternalServerError, err.Error())
}

// writeLayerError maps layer transition failures onto HTTP statuses.
func (api *SessionsAPI) writeLayerError(w http.ResponseWriter, err error) {
	if errors.Is(err, editor.ErrLayerNotFound) {
		api.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	api.writeError(w, http.StatusBadRequest, err.Error())
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func (api *SessionsAPI) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Best effort - headers already written
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeError writes an error response.
func (api *SessionsAPI) writeError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	}
	api.writeJSON(w, status, response)
}
