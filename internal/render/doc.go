// Package render turns camera parameters and a texture into an image by
// tracing one ray per pixel through the wormhole.
//
// Rows are split into bands and traced concurrently. Each band writes only
// its own rows, so the output does not depend on the worker count.
package render
