// Package control exposes a cube scene over HTTP: REST endpoints to read the
// state, set slider values and apply moves, and a websocket stream of frame
// stats. Handlers never touch the scene directly; they post events that the
// scene's owning goroutine applies.
package control

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/phanxgames/cubeview"
)

// DefaultTimeout bounds how long a handler waits for the scene goroutine.
const DefaultTimeout = 5 * time.Second

// Server is the remote control surface of one scene.
type Server struct {
	// AccessLog receives one line per request. Defaults to os.Stdout.
	AccessLog io.Writer
	// Timeout bounds waits on the scene goroutine. Defaults to
	// DefaultTimeout.
	Timeout time.Duration

	scene    *cubeview.Scene
	logger   *slog.Logger
	hub      *hub
	upgrader websocket.Upgrader
}

// New creates a server for scene and subscribes it to frame stats. It must
// be called on the goroutine that owns the scene, before the loop starts.
func New(scene *cubeview.Scene, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		AccessLog: os.Stdout,
		Timeout:   DefaultTimeout,
		scene:     scene,
		logger:    logger,
		hub:       newHub(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	scene.OnFrame(func(st cubeview.FrameStats) {
		s.hub.broadcast(newFrameMessage(st))
	})
	return s
}

// Router returns the routes without logging or recovery middleware.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/translate/{axis}", s.handleComponent(cubeview.TranslateEvent)).Methods(http.MethodPost)
	api.HandleFunc("/rotate/{axis}", s.handleComponent(cubeview.RotateEvent)).Methods(http.MethodPost)
	api.HandleFunc("/scale/{axis}", s.handleComponent(cubeview.ScaleEvent)).Methods(http.MethodPost)
	api.HandleFunc("/turn/{moves}", s.handleTurn).Methods(http.MethodPost)
	api.HandleFunc("/redraw", s.handleRedraw).Methods(http.MethodPost)
	api.HandleFunc("/screenshot", s.handleScreenshot).Methods(http.MethodPost)
	api.HandleFunc("/export.{format:glb|gltf}", s.handleExport).Methods(http.MethodGet)
	api.HandleFunc("/ws", s.handleWebsocket)
	r.HandleFunc("/debug/dump", s.handleDump).Methods(http.MethodGet)
	return r
}

// Handler returns the routes wrapped with panic recovery and access logging.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router()
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
	return handlers.LoggingHandler(s.AccessLog, h)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("control server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return errors.Wrap(err, "control server")
	case <-ctx.Done():
	}
	s.hub.closeAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown control server")
	}
	return nil
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	return s.hub.count()
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, newFrameMessage(s.scene.Snapshot()))
}

func (s *Server) handleComponent(event func(cubeview.Axis, float64) cubeview.Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		axis, err := cubeview.ParseAxis(mux.Vars(r)["axis"])
		if err != nil {
			s.writeError(w, errors.Wrapf(err, "axis %q", mux.Vars(r)["axis"]))
			return
		}
		v, err := readValue(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.post(w, event(axis, v))
	}
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	moves, err := cubeview.ParseMoves(mux.Vars(r)["moves"])
	if err != nil {
		s.writeError(w, errors.Wrap(err, "parse moves"))
		return
	}
	if len(moves) == 0 {
		s.writeError(w, errors.Wrap(errBadRequest, "no moves"))
		return
	}
	s.post(w, cubeview.TurnEvent(moves...))
}

func (s *Server) handleRedraw(w http.ResponseWriter, r *http.Request) {
	s.post(w, cubeview.Event{Kind: cubeview.EventRedraw})
}

func (s *Server) post(w http.ResponseWriter, ev cubeview.Event) {
	if err := s.scene.Post(ev); err != nil {
		s.writeError(w, errors.Wrap(err, "post event"))
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]bool{"queued": true})
}

// do runs fn on the scene goroutine, bounded by the server timeout.
func (s *Server) do(r *http.Request, fn func(*cubeview.Scene) error) error {
	ctx, cancel := context.WithTimeout(r.Context(), s.Timeout)
	defer cancel()
	err := s.scene.Do(ctx, fn)
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(errTimeout, "wait for scene")
	}
	return err
}

func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	label := r.URL.Query().Get("label")
	if label == "" {
		label = "remote"
	}
	err := s.do(r, func(sc *cubeview.Scene) error {
		sc.Screenshot(label)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"label": label})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := mux.Vars(r)["format"]
	var buf bytes.Buffer
	err := s.do(r, func(sc *cubeview.Scene) error {
		return sc.ExportGLTF(&buf, format == "glb")
	})
	if err != nil {
		s.writeError(w, errors.Wrap(err, "export"))
		return
	}
	contentType := "model/gltf+json"
	if format == "glb" {
		contentType = "model/gltf-binary"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="cube.`+format+`"`)
	if _, err := io.Copy(w, &buf); err != nil {
		s.logger.Debug("write export", "err", err)
	}
}

func (s *Server) handleDump(w http.ResponseWriter, r *http.Request) {
	var dump string
	err := s.do(r, func(sc *cubeview.Scene) error {
		dump = sc.DumpState()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, dump)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		s.logger.Debug("ws upgrade", "err", err)
		return
	}
	s.hub.attach(conn)
}
