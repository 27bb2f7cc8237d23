package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go_editor/db"
	"go_editor/editor"
	"go_editor/geometry"
)

// newTestRepo creates a temporary sqlite-backed repository with the
// sessions schema, mirroring db/migrations.
func newTestRepo(t *testing.T) *db.Repository {
	t.Helper()

	database, err := db.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	schema := []string{
		`CREATE TABLE sessions (
			id TEXT PRIMARY KEY,
			name TEXT,
			state TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT (datetime('now')),
			updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE session_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			state TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT (datetime('now'))
		)`,
	}
	for _, stmt := range schema {
		if _, err := database.Exec(stmt); err != nil {
			t.Fatalf("failed to create schema: %v", err)
		}
	}

	return db.NewRepository(database, nil)
}

// fakeURLBuilder returns deterministic paths for assertions.
type fakeURLBuilder struct{}

func (fakeURLBuilder) PreviewPath(s editor.State) string { return "unsafe/" + s.Source }
func (fakeURLBuilder) PreviewURL(s editor.State) string {
	return "http://imagor.test/unsafe/" + s.Source
}

// fakeRenderer returns canned PNG-ish bytes.
type fakeRenderer struct {
	data []byte
	err  error
}

func (f fakeRenderer) Render(ctx context.Context, state editor.State) ([]byte, error) {
	return f.data, f.err
}

func newTestAPI(t *testing.T) *SessionsAPI {
	t.Helper()
	return NewSessionsAPI(newTestRepo(t), nil, fakeURLBuilder{}, nil, nil, DefaultSessionsAPIConfig())
}

func doJSON(t *testing.T, api *SessionsAPI, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()

	mux := http.NewServeMux()
	api.RegisterRoutes(mux)
	mux.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, api *SessionsAPI) SessionResponse {
	t.Helper()

	rec := doJSON(t, api, http.MethodPost, "/api/sessions", CreateSessionRequest{
		Name:         "Holiday edit",
		Source:       "photos/beach.jpg",
		SourceWidth:  1000,
		SourceHeight: 800,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp
}

func TestSessionsAPI_CreateAndGet(t *testing.T) {
	api := newTestAPI(t)

	created := createSession(t, api)
	if created.ID == "" {
		t.Fatal("created session must have an id")
	}
	if created.State.Source != "photos/beach.jpg" {
		t.Errorf("Source = %q", created.State.Source)
	}
	if created.OutputSize.Width != 1000 || created.OutputSize.Height != 800 {
		t.Errorf("OutputSize = %+v, want 1000x800", created.OutputSize)
	}
	if !strings.Contains(created.PreviewPath, "photos/beach.jpg") {
		t.Errorf("PreviewPath = %q, should reference the source", created.PreviewPath)
	}

	rec := doJSON(t, api, http.MethodGet, "/api/sessions/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if got.Name != "Holiday edit" {
		t.Errorf("Name = %q, want Holiday edit", got.Name)
	}
}

func TestSessionsAPI_CreateValidation(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		req  CreateSessionRequest
	}{
		{"missing source", CreateSessionRequest{SourceWidth: 10, SourceHeight: 10}},
		{"zero width", CreateSessionRequest{Source: "a.jpg", SourceHeight: 10}},
		{"negative height", CreateSessionRequest{Source: "a.jpg", SourceWidth: 10, SourceHeight: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, api, http.MethodPost, "/api/sessions", tt.req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestSessionsAPI_GetNotFound(t *testing.T) {
	api := newTestAPI(t)

	rec := doJSON(t, api, http.MethodGet, "/api/sessions/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSessionsAPI_List(t *testing.T) {
	api := newTestAPI(t)

	createSession(t, api)
	createSession(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/sessions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	var resp SessionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if resp.Count != 2 || len(resp.Sessions) != 2 {
		t.Errorf("count = %d (%d sessions), want 2", resp.Count, len(resp.Sessions))
	}
	if resp.Sessions[0].Source != "photos/beach.jpg" {
		t.Errorf("summary source = %q", resp.Sessions[0].Source)
	}
}

func TestSessionsAPI_ReplaceStateAndRename(t *testing.T) {
	api := newTestAPI(t)
	created := createSession(t, api)

	next := created.State.WithCrop(100, 50, 500, 400)
	stateJSON, err := next.Encode()
	if err != nil {
		t.Fatalf("encode state: %v", err)
	}
	newName := "Cropped"

	rec := doJSON(t, api, http.MethodPut, "/api/sessions/"+created.ID, UpdateSessionRequest{
		Name:  &newName,
		State: stateJSON,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, body %s", rec.Code, rec.Body.String())
	}

	var got SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode put response: %v", err)
	}
	if got.Name != "Cropped" {
		t.Errorf("Name = %q, want Cropped", got.Name)
	}
	if got.State.CropWidth != 500 || got.State.CropHeight != 400 {
		t.Errorf("crop = %vx%v, want 500x400", got.State.CropWidth, got.State.CropHeight)
	}
	if got.OutputSize.Width != 500 || got.OutputSize.Height != 400 {
		t.Errorf("OutputSize = %+v, want cropped 500x400", got.OutputSize)
	}
}

func TestSessionsAPI_ReplaceRejectsInvalidState(t *testing.T) {
	api := newTestAPI(t)
	created := createSession(t, api)

	rec := doJSON(t, api, http.MethodPut, "/api/sessions/"+created.ID, UpdateSessionRequest{
		State: json.RawMessage(`{"source":"","sourceWidth":0,"sourceHeight":0}`),
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSessionsAPI_Delete(t *testing.T) {
	api := newTestAPI(t)
	created := createSession(t, api)

	rec := doJSON(t, api, http.MethodDelete, "/api/sessions/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, api, http.MethodGet, "/api/sessions/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, api, http.MethodDelete, "/api/sessions/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestSessionsAPI_AddLayerOptimalPlacement(t *testing.T) {
	api := newTestAPI(t)
	created := createSession(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/sessions/"+created.ID+"/layers", AddLayerRequest{
		Source: "logos/logo.png",
		Width:  100,
		Height: 80,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add layer status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp LayerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode layer response: %v", err)
	}
	if resp.Layer.ID == "" {
		t.Fatal("layer must have an id")
	}
	// 100x80 fits well inside 1000x800, so the default 0.9 factor applies
	if resp.Layer.Width != 90 || resp.Layer.Height != 72 {
		t.Errorf("layer size = %vx%v, want 90x72", resp.Layer.Width, resp.Layer.Height)
	}
	if resp.Left == "" || resp.Top == "" {
		t.Errorf("overlay position = (%q, %q), want percent strings", resp.Left, resp.Top)
	}

	// The session state now carries the layer
	get := doJSON(t, api, http.MethodGet, "/api/sessions/"+created.ID, nil)
	var got SessionResponse
	if err := json.Unmarshal(get.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if len(got.State.Layers) != 1 {
		t.Fatalf("layer count = %d, want 1", len(got.State.Layers))
	}
}

func TestSessionsAPI_AddLayerValidation(t *testing.T) {
	api := newTestAPI(t)
	created := createSession(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/sessions/"+created.ID+"/layers", AddLayerRequest{
		Source: "", Width: 10, Height: 10,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for empty source", rec.Code)
	}
}

func TestSessionsAPI_LayerDisplaySnapsToEdge(t *testing.T) {
	api := newTestAPI(t)
	created := createSession(t, api)

	add := doJSON(t, api, http.MethodPost, "/api/sessions/"+created.ID+"/layers", AddLayerRequest{
		Source: "logos/logo.png", Width: 100, Height: 80,
	})
	var layer LayerResponse
	if err := json.Unmarshal(add.Body.Bytes(), &layer); err != nil {
		t.Fatalf("decode add response: %v", err)
	}

	// Drag to (5, 5) with the overlay matching the canvas 1:1; both axes
	// are inside the edge snap distance and land on 0
	rec := doJSON(t, api, http.MethodPatch,
		"/api/sessions/"+created.ID+"/layers/"+layer.Layer.ID+"/display",
		DisplayRequest{
			Display: geometry.Rect{X: 5, Y: 5, Width: 90, Height: 72},
			Overlay: geometry.Size{Width: 1000, Height: 800},
		})
	if rec.Code != http.StatusOK {
		t.Fatalf("display status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp LayerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode display response: %v", err)
	}
	if resp.Left != "0%" || resp.Top != "0%" {
		t.Errorf("overlay position = (%q, %q), want snapped to (0%%, 0%%)", resp.Left, resp.Top)
	}
	if resp.SnappedToCenter == nil {
		t.Fatal("display responses must report snap flags")
	}
	if resp.SnappedToCenter.X || resp.SnappedToCenter.Y {
		t.Error("edge snaps must not set the center flags")
	}
}

func TestSessionsAPI_LayerDisplayCenterSnap(t *testing.T) {
	api := newTestAPI(t)
	created := createSession(t, api)

	add := doJSON(t, api, http.MethodPost, "/api/sessions/"+created.ID+"/layers", AddLayerRequest{
		Source: "logos/logo.png", Width: 100, Height: 80,
	})
	var layer LayerResponse
	if err := json.Unmarshal(add.Body.Bytes(), &layer); err != nil {
		t.Fatalf("decode add response: %v", err)
	}

	// Centered x for a 90-wide layer on a 1000-wide overlay is 455; drag
	// to 460, within the 2% center snap ratio
	rec := doJSON(t, api, http.MethodPatch,
		"/api/sessions/"+created.ID+"/layers/"+layer.Layer.ID+"/display",
		DisplayRequest{
			Display: geometry.Rect{X: 460, Y: 300, Width: 90, Height: 72},
			Overlay: geometry.Size{Width: 1000, Height: 800},
		})
	if rec.Code != http.StatusOK {
		t.Fatalf("display status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp LayerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode display response: %v", err)
	}
	if !resp.SnappedToCenter.X {
		t.Error("x axis should snap to center")
	}
	if resp.SnappedToCenter.Y {
		t.Error("y axis should not snap")
	}
}

func TestSessionsAPI_LayerDisplayUnknownLayer(t *testing.T) {
	api := newTestAPI(t)
	created := createSession(t, api)

	rec := doJSON(t, api, http.MethodPatch,
		"/api/sessions/"+created.ID+"/layers/ghost/display",
		DisplayRequest{
			Display: geometry.Rect{X: 0, Y: 0, Width: 10, Height: 10},
			Overlay: geometry.Size{Width: 100, Height: 100},
		})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSessionsAPI_RotateLayer(t *testing.T) {
	api := newTestAPI(t)
	created := createSession(t, api)

	add := doJSON(t, api, http.MethodPost, "/api/sessions/"+created.ID+"/layers", AddLayerRequest{
		Source: "logos/logo.png", Width: 100, Height: 80,
	})
	var layer LayerResponse
	if err := json.Unmarshal(add.Body.Bytes(), &layer); err != nil {
		t.Fatalf("decode add response: %v", err)
	}

	rec := doJSON(t, api, http.MethodPost,
		"/api/sessions/"+created.ID+"/layers/"+layer.Layer.ID+"/rotate",
		RotateLayerRequest{Rotation: 450})
	if rec.Code != http.StatusOK {
		t.Fatalf("rotate status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp LayerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode rotate response: %v", err)
	}
	if resp.Layer.Rotation != geometry.Rotate90 {
		t.Errorf("rotation = %v, want 90 (normalized)", resp.Layer.Rotation)
	}
}

func TestSessionsAPI_RemoveLayer(t *testing.T) {
	api := newTestAPI(t)
	created := createSession(t, api)

	add := doJSON(t, api, http.MethodPost, "/api/sessions/"+created.ID+"/layers", AddLayerRequest{
		Source: "logos/logo.png", Width: 100, Height: 80,
	})
	var layer LayerResponse
	if err := json.Unmarshal(add.Body.Bytes(), &layer); err != nil {
		t.Fatalf("decode add response: %v", err)
	}

	rec := doJSON(t, api, http.MethodDelete,
		"/api/sessions/"+created.ID+"/layers/"+layer.Layer.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("remove status = %d", rec.Code)
	}

	get := doJSON(t, api, http.MethodGet, "/api/sessions/"+created.ID, nil)
	var got SessionResponse
	if err := json.Unmarshal(get.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if len(got.State.Layers) != 0 {
		t.Errorf("layer count = %d, want 0", len(got.State.Layers))
	}
}

func TestSessionsAPI_OutputSize(t *testing.T) {
	api := newTestAPI(t)
	created := createSession(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/sessions/"+created.ID+"/output-size", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp OutputSizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Output.Width != 1000 || resp.Output.Height != 800 {
		t.Errorf("output = %+v, want 1000x800", resp.Output)
	}
	if resp.Canvas.Width != 1000 || resp.Canvas.Height != 800 {
		t.Errorf("canvas = %+v, want 1000x800", resp.Canvas)
	}
}

func TestSessionsAPI_PreviewURL(t *testing.T) {
	api := newTestAPI(t)
	created := createSession(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/sessions/"+created.ID+"/preview-url", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp PreviewURLResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(resp.URL, "photos/beach.jpg") {
		t.Errorf("URL = %q, should reference the source", resp.URL)
	}
}

func TestSessionsAPI_Preview(t *testing.T) {
	repo := newTestRepo(t)
	api := NewSessionsAPI(repo, nil, fakeURLBuilder{},
		fakeRenderer{data: []byte("png-bytes")}, nil, DefaultSessionsAPIConfig())
	created := createSession(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/sessions/"+created.ID+"/preview", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "png-bytes" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
}

func TestSessionsAPI_PreviewUnconfigured(t *testing.T) {
	api := newTestAPI(t)
	created := createSession(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/sessions/"+created.ID+"/preview", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without a renderer", rec.Code)
	}
}

func TestSessionsAPI_History(t *testing.T) {
	repo := newTestRepo(t)
	api := NewSessionsAPI(repo, nil, fakeURLBuilder{}, nil, nil, DefaultSessionsAPIConfig())
	created := createSession(t, api)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := repo.RecordHistory(ctx, created.ID, `{"rev":1}`); err != nil {
			t.Fatalf("record history: %v", err)
		}
	}

	rec := doJSON(t, api, http.MethodGet, "/api/sessions/"+created.ID+"/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp HistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 3 {
		t.Errorf("count = %d, want 3", resp.Count)
	}
}

func TestSessionsAPI_MethodNotAllowed(t *testing.T) {
	api := newTestAPI(t)
	created := createSession(t, api)

	cases := []struct {
		method, path string
	}{
		{http.MethodDelete, "/api/sessions"},
		{http.MethodPost, "/api/sessions/" + created.ID + "/history"},
		{http.MethodGet, "/api/sessions/" + created.ID + "/layers"},
	}
	for _, tc := range cases {
		rec := doJSON(t, api, tc.method, tc.path, nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s status = %d, want 405", tc.method, tc.path, rec.Code)
		}
	}
}

func TestSessionsAPI_AutosaveDebouncesWrites(t *testing.T) {
	repo := newTestRepo(t)

	saver := db.NewAutosaver(func(ctx context.Context, record db.SessionRecord) error {
		return repo.UpsertSession(ctx, record)
	}, db.DefaultAutosaveDelay, nil)
	// Not started: writes stay queued so the test can observe the live map

	api := NewSessionsAPI(repo, saver, fakeURLBuilder{}, nil, nil, DefaultSessionsAPIConfig())
	created := createSession(t, api)

	add := doJSON(t, api, http.MethodPost, "/api/sessions/"+created.ID+"/layers", AddLayerRequest{
		Source: "logos/logo.png", Width: 100, Height: 80,
	})
	if add.Code != http.StatusCreated {
		t.Fatalf("add layer status = %d", add.Code)
	}

	// The layer is visible through the live state before any flush
	get := doJSON(t, api, http.MethodGet, "/api/sessions/"+created.ID, nil)
	var got SessionResponse
	if err := json.Unmarshal(get.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if len(got.State.Layers) != 1 {
		t.Fatalf("live layer count = %d, want 1", len(got.State.Layers))
	}
	if saver.PendingCount() != 1 {
		t.Errorf("pending autosaves = %d, want 1", saver.PendingCount())
	}

	// After a flush the stored row matches
	if err := saver.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	rec, err := repo.GetSession(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	state, err := editor.Decode([]byte(rec.State))
	if err != nil {
		t.Fatalf("decode stored state: %v", err)
	}
	if len(state.Layers) != 1 {
		t.Errorf("stored layer count = %d, want 1", len(state.Layers))
	}
}

func TestSessionsAPI_Snapshot(t *testing.T) {
	api := newTestAPI(t)
	first := createSession(t, api)
	second := createSession(t, api)

	snapshot := api.Snapshot(context.Background())

	if snapshot.Version == "" {
		t.Error("snapshot version should be set")
	}
	if len(snapshot.Sessions) != 2 {
		t.Fatalf("snapshot sessions = %d, want 2", len(snapshot.Sessions))
	}

	ids := map[string]bool{}
	for _, s := range snapshot.Sessions {
		ids[s.SessionID] = true
		if s.Source != "photos/beach.jpg" {
			t.Errorf("source = %q, want photos/beach.jpg", s.Source)
		}
		if !strings.Contains(s.PreviewPath, "photos/beach.jpg") {
			t.Errorf("preview path = %q, want source path", s.PreviewPath)
		}
	}
	if !ids[first.ID] || !ids[second.ID] {
		t.Errorf("snapshot missing sessions, got %v", ids)
	}
}

func TestSessionsAPI_DeleteDropsPendingAutosave(t *testing.T) {
	repo := newTestRepo(t)

	saver := db.NewAutosaver(func(ctx context.Context, record db.SessionRecord) error {
		return repo.UpsertSession(ctx, record)
	}, db.DefaultAutosaveDelay, nil)

	api := NewSessionsAPI(repo, saver, fakeURLBuilder{}, nil, nil, DefaultSessionsAPIConfig())
	created := createSession(t, api)

	// Queue a debounced write, then delete before it flushes
	add := doJSON(t, api, http.MethodPost, "/api/sessions/"+created.ID+"/layers", AddLayerRequest{
		Source: "logos/logo.png", Width: 100, Height: 80,
	})
	if add.Code != http.StatusCreated {
		t.Fatalf("add layer status = %d", add.Code)
	}
	if saver.PendingCount() != 1 {
		t.Fatalf("pending autosaves = %d, want 1", saver.PendingCount())
	}

	del := doJSON(t, api, http.MethodDelete, "/api/sessions/"+created.ID, nil)
	if del.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", del.Code)
	}
	if saver.PendingCount() != 0 {
		t.Errorf("pending autosaves after delete = %d, want 0", saver.PendingCount())
	}

	// A flush after the delete must not re-insert the session
	if err := saver.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	get := doJSON(t, api, http.MethodGet, "/api/sessions/"+created.ID, nil)
	if get.Code != http.StatusNotFound {
		t.Errorf("get after delete+flush = %d, want 404", get.Code)
	}
}

func TestSessionsAPI_ConfiguredPlacement(t *testing.T) {
	config := DefaultSessionsAPIConfig()
	config.ScaleFactor = 0.5
	config.Placement = geometry.PlaceCenter

	api := NewSessionsAPI(newTestRepo(t), nil, fakeURLBuilder{}, nil, nil, config)
	created := createSession(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/sessions/"+created.ID+"/layers", AddLayerRequest{
		Source: "logos/logo.png", Width: 100, Height: 80,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add layer status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp LayerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode layer response: %v", err)
	}
	// 100x80 at factor 0.5 on a 1000x800 canvas, centered
	if resp.Layer.Width != 50 || resp.Layer.Height != 40 {
		t.Errorf("layer size = %vx%v, want 50x40", resp.Layer.Width, resp.Layer.Height)
	}
	if got := resp.Layer.X.Value(); got != 475 {
		t.Errorf("x = %v, want centered at 475", got)
	}
	if got := resp.Layer.Y.Value(); got != 380 {
		t.Errorf("y = %v, want centered at 380", got)
	}
}

func TestSessionsAPI_ConfiguredSnappingDisabled(t *testing.T) {
	config := DefaultSessionsAPIConfig()
	config.DisableSnapping = true

	api := NewSessionsAPI(newTestRepo(t), nil, fakeURLBuilder{}, nil, nil, config)
	created := createSession(t, api)

	add := doJSON(t, api, http.MethodPost, "/api/sessions/"+created.ID+"/layers", AddLayerRequest{
		Source: "logos/logo.png", Width: 100, Height: 80,
	})
	var layer LayerResponse
	if err := json.Unmarshal(add.Body.Bytes(), &layer); err != nil {
		t.Fatalf("decode add response: %v", err)
	}

	// A drag to (5, 5) is inside the edge snap distance but must pass
	// through untouched when snapping is disabled server-side
	rec := doJSON(t, api, http.MethodPatch,
		"/api/sessions/"+created.ID+"/layers/"+layer.Layer.ID+"/display",
		DisplayRequest{
			Display: geometry.Rect{X: 5, Y: 5, Width: 90, Height: 72},
			Overlay: geometry.Size{Width: 1000, Height: 800},
		})
	if rec.Code != http.StatusOK {
		t.Fatalf("display status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp LayerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode display response: %v", err)
	}
	if resp.Left != "0.5%" {
		t.Errorf("left = %q, want pass-through at 0.5%%", resp.Left)
	}
	if resp.SnappedToCenter.X || resp.SnappedToCenter.Y {
		t.Error("disabled snapping must not set center flags")
	}
}
