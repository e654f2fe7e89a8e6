package control

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/phanxgames/cubeview"
)

type jsonError struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.writeError(w, errors.Wrap(err, "marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("write response", "err", err)
	}
}

// writeError maps err to a status code and writes {"error": ...}.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, statusFor(err), jsonError{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, cubeview.ErrUnknownAxis),
		errors.Is(err, cubeview.ErrUnknownMove),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, cubeview.ErrEventQueueFull),
		errors.Is(err, cubeview.ErrSceneClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, errTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

var (
	errBadRequest = errors.New("bad request")
	errTimeout    = errors.New("scene did not respond")
)

// valueRequest is the body of the slider endpoints.
type valueRequest struct {
	Value *float64 `json:"value"`
}

// readValue reads the value from the query string or a JSON body.
func readValue(r *http.Request) (float64, error) {
	if q := r.URL.Query().Get("value"); q != "" {
		var v float64
		if err := json.Unmarshal([]byte(q), &v); err != nil {
			return 0, errors.Wrapf(errBadRequest, "value %q is not a number", q)
		}
		return v, nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		return 0, errors.Wrap(err, "read body")
	}
	var req valueRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return 0, errors.Wrapf(errBadRequest, "decode body: %v", err)
	}
	if req.Value == nil {
		return 0, errors.Wrap(errBadRequest, "missing value")
	}
	return *req.Value, nil
}

// frameMessage is the wire form of cubeview.FrameStats.
type frameMessage struct {
	Frame           uint64     `json:"frame"`
	Trigger         string     `json:"trigger"`
	Draws           int        `json:"draws"`
	Vertices        int        `json:"vertices"`
	Failed          int        `json:"failed"`
	DurationMS      float64    `json:"duration_ms"`
	Translation     [3]float64 `json:"translation"`
	RotationDegrees [3]float64 `json:"rotation_degrees"`
	Scale           [3]float64 `json:"scale"`
}

func newFrameMessage(st cubeview.FrameStats) frameMessage {
	return frameMessage{
		Frame:           st.Frame,
		Trigger:         st.Trigger.String(),
		Draws:           st.Draws,
		Vertices:        st.Vertices,
		Failed:          st.Failed,
		DurationMS:      float64(st.Duration.Microseconds()) / 1000,
		Translation:     st.Params.Translation,
		RotationDegrees: st.Params.RotationDegrees(),
		Scale:           st.Params.Scale,
	}
}
