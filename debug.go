package cubeview

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// debugLog reports timing and draw-call counts for one redraw.
func (s *Scene) debugLog(stats FrameStats) {
	s.logger.Info("frame",
		"frame", stats.Frame,
		"trigger", stats.Trigger.String(),
		"draws", stats.Draws,
		"vertices", stats.Vertices,
		"failed", stats.Failed,
		"duration", stats.Duration,
	)
	if c, ok := s.backend.(*Canvas); ok {
		tris, batches, clipped := c.LastFrameStats()
		s.logger.Debug("canvas", "triangles", tris, "batches", batches, "clipped", clipped)
	}
}

// dumpConfig prints nested values without pointer addresses so dumps of the
// same state compare equal.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// sceneState is the part of a scene that DumpState prints.
type sceneState struct {
	Params    TransformParameters
	Degrees   [3]float64
	Depth     float64
	Clear     Color
	Frame     uint64
	Last      FrameStats
	Drawables []drawableState
	History   string
	Tweening  bool
	Pending   int
}

type drawableState struct {
	Name     string
	Group    int
	Vertices int
	Draws    uint64
	Disposed bool
}

// DumpState returns a human-readable dump of the scene for debugging. It
// must be called on the owning goroutine.
func (s *Scene) DumpState() string {
	st := sceneState{
		Params:   s.params,
		Depth:    s.Depth,
		Clear:    s.ClearColor,
		Frame:    s.frame,
		Last:     s.Snapshot(),
		History:  FormatMoves(s.history),
		Tweening: s.Tweening(),
		Pending:  s.Pending(),
	}
	deg := s.params.RotationDegrees()
	st.Degrees = [3]float64{deg[0], deg[1], deg[2]}
	for _, d := range s.drawables {
		st.Drawables = append(st.Drawables, drawableState{
			Name:     d.Name(),
			Group:    d.geom.Group,
			Vertices: d.geom.drawCount(),
			Draws:    d.draws,
			Disposed: d.disposed,
		})
	}
	var b strings.Builder
	fmt.Fprintf(&b, "cubeview scene (%d drawables)\n", len(s.drawables))
	b.WriteString(dumpConfig.Sdump(st))
	return b.String()
}
