// Package cubeview renders a textured cube for [Ebitengine] and lets a user
// move, rotate and scale it with sliders, keys or a remote control API.
//
// # Quick start
//
// The simplest way to get started is [Run], which loads the configured
// images, builds the cube and opens a window:
//
//	cfg := cubeview.DefaultConfig()
//	cfg.Images = []string{"front.png", "right.png", "up.png", "back.png", "left.png", "down.png"}
//	if err := cubeview.Run(context.Background(), cfg, cubeview.RunOptions{}); err != nil {
//		log.Fatal(err)
//	}
//
// # Transform pipeline
//
// Every drawable is drawn with the same matrix, composed in a fixed order:
//
//	M = Projection(W, H, D) · Translate · RotateX · RotateY · RotateZ · Scale
//
// [ComposeTransform] builds it from a [TransformParameters] value. Rotations
// are stored in radians; sliders present degrees.
//
// # Scene loop
//
// A [Scene] owns the shared [TransformParameters] and an ordered list of
// [Drawable] values. Each trigger (slider change, move, initial load) pushes
// the parameters to every drawable and draws it once, in insertion order.
// Nothing is redrawn without a trigger.
//
// Drawables own their texture and vertex buffers for their whole lifetime;
// a draw rewrites buffer contents in place and never allocates new GPU
// resources.
//
// # Backends
//
// Drawing goes through the [Backend] interface. [Canvas] renders into an
// offscreen ebiten image with a Kage shader; [Recorder] records draw calls
// without a GPU and is used for headless runs and tests.
//
// [Ebitengine]: https://ebitengine.org
package cubeview
