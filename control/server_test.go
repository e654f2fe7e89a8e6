package control

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/phanxgames/cubeview"
)

func newTestServer(t *testing.T) (*Server, *cubeview.Scene) {
	t.Helper()
	r := cubeview.NewRecorder(400, 400)
	images := make([]image.Image, cubeview.FaceCount)
	for i := range images {
		img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
		img.SetNRGBA(1, 1, color.NRGBA{uint8(i * 40), 0, 0, 255})
		images[i] = img
	}
	ds, err := cubeview.BuildCube(r, images, 100)
	if err != nil {
		t.Fatalf("BuildCube: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scene := cubeview.NewScene(r)
	scene.SetLogger(logger)
	scene.Add(ds...)
	srv := New(scene, logger)
	srv.AccessLog = io.Discard
	return srv, scene
}

// pump applies posted events on a background goroutine, standing in for the
// game loop, until the test ends.
func pump(t *testing.T, scene *cubeview.Scene) {
	t.Helper()
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for {
			select {
			case <-done:
				return
			default:
			}
			_ = scene.ProcessEvents()
			time.Sleep(time.Millisecond)
		}
	}()
	t.Cleanup(func() {
		close(done)
		<-stopped
	})
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestState(t *testing.T) {
	srv, scene := newTestServer(t)
	if err := scene.Redraw(cubeview.TriggerManual); err != nil {
		t.Fatal(err)
	}
	w := do(t, srv.Router(), http.MethodGet, "/api/state", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var msg frameMessage
	if err := json.Unmarshal(w.Body.Bytes(), &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Frame != 1 || msg.Trigger != "manual" || msg.Draws != 18 {
		t.Errorf("state = %+v", msg)
	}
}

func TestTranslateQueuesEvent(t *testing.T) {
	srv, scene := newTestServer(t)
	w := do(t, srv.Router(), http.MethodPost, "/api/translate/x?value=12.5", nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	if scene.Params().Translation[0] != 0 {
		t.Error("handler changed the scene directly")
	}
	if err := scene.ProcessEvents(); err != nil {
		t.Fatal(err)
	}
	if got := scene.Params().Translation[0]; got != 12.5 {
		t.Errorf("translation x = %g, want 12.5", got)
	}
}

func TestRotateJSONBody(t *testing.T) {
	srv, scene := newTestServer(t)
	w := do(t, srv.Router(), http.MethodPost, "/api/rotate/Y", strings.NewReader(`{"value": 90}`))
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	if err := scene.ProcessEvents(); err != nil {
		t.Fatal(err)
	}
	if got := scene.Params().RotationDegrees()[1]; got < 89.999 || got > 90.001 {
		t.Errorf("rotation y = %g degrees, want 90", got)
	}
}

func TestBadRequests(t *testing.T) {
	srv, _ := newTestServer(t)
	tests := []struct {
		name, target, body string
	}{
		{"unknown axis", "/api/scale/w?value=1", ""},
		{"bad number", "/api/scale/x?value=big", ""},
		{"missing value", "/api/scale/x", "{}"},
		{"bad body", "/api/scale/x", "{"},
		{"bad move", "/api/turn/Q", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv.Router(), http.MethodPost, tt.target, strings.NewReader(tt.body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400, body %s", w.Code, w.Body)
			}
			var e jsonError
			if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil || e.Error == "" {
				t.Errorf("body = %s, want a JSON error", w.Body)
			}
		})
	}
}

func TestTurn(t *testing.T) {
	srv, scene := newTestServer(t)
	w := do(t, srv.Router(), http.MethodPost, "/api/turn/R,U'", nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	if err := scene.ProcessEvents(); err != nil {
		t.Fatal(err)
	}
	if got := cubeview.FormatMoves(scene.History()); got != "R U'" {
		t.Errorf("history = %q", got)
	}
}

func TestQueueFull(t *testing.T) {
	srv, scene := newTestServer(t)
	for {
		if err := scene.Post(cubeview.Event{Kind: cubeview.EventRedraw}); err != nil {
			break
		}
	}
	w := do(t, srv.Router(), http.MethodPost, "/api/redraw", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestClosedScene(t *testing.T) {
	srv, scene := newTestServer(t)
	scene.Close()
	w := do(t, srv.Router(), http.MethodPost, "/api/redraw", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestDump(t *testing.T) {
	srv, scene := newTestServer(t)
	pump(t, scene)
	w := do(t, srv.Router(), http.MethodGet, "/debug/dump", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	if !strings.Contains(w.Body.String(), "18 drawables") {
		t.Errorf("dump = %s", w.Body)
	}
}

func TestDoTimeout(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.Timeout = 20 * time.Millisecond
	// Nothing processes events, so the scene never answers.
	w := do(t, srv.Router(), http.MethodGet, "/debug/dump", nil)
	if w.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", w.Code)
	}
}

func TestScreenshot(t *testing.T) {
	srv, scene := newTestServer(t)
	pump(t, scene)
	w := do(t, srv.Router(), http.MethodPost, "/api/screenshot?label=remote%20shot", nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var got int
	if err := scene.Do(t.Context(), func(s *cubeview.Scene) error {
		got = s.PendingScreenshots()
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("pending screenshots = %d, want 1", got)
	}
}

func TestExport(t *testing.T) {
	srv, scene := newTestServer(t)
	pump(t, scene)
	w := do(t, srv.Router(), http.MethodGet, "/api/export.glb", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "model/gltf-binary" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("glTF")) {
		t.Error("body is not GLB")
	}
	if w := do(t, srv.Router(), http.MethodGet, "/api/export.obj", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown format status = %d, want 404", w.Code)
	}
}

func TestHandlerLogsAccess(t *testing.T) {
	srv, _ := newTestServer(t)
	var buf bytes.Buffer
	srv.AccessLog = &buf
	do(t, srv.Handler(), http.MethodGet, "/api/state", nil)
	if !strings.Contains(buf.String(), "GET /api/state") {
		t.Errorf("access log = %q", buf.String())
	}
}

func TestWebsocketStreamsFrames(t *testing.T) {
	srv, scene := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for srv.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never attached")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := scene.SetScale(cubeview.AxisZ, 3); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var msg frameMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Trigger != "slider" || msg.Scale[2] != 3 {
		t.Errorf("message = %+v", msg)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{cubeview.ErrUnknownAxis, http.StatusBadRequest},
		{cubeview.ErrEventQueueFull, http.StatusServiceUnavailable},
		{errTimeout, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

type failingWriter struct {
	*httptest.ResponseRecorder
}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestWriteFailureUsesServerLogger(t *testing.T) {
	_, scene := newTestServer(t)
	var logs bytes.Buffer
	srv := New(scene, slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	w := failingWriter{httptest.NewRecorder()}
	srv.writeJSON(w, http.StatusOK, map[string]int{"frame": 1})
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	out := logs.String()
	if !strings.Contains(out, "write response") || !strings.Contains(out, "connection reset") {
		t.Errorf("server log = %q, want the write error", out)
	}
}
