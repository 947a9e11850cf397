// Package replay drives the gesture engine from a YAML trace instead of a
// camera and an inference model, so the gesture path can run headless.
package replay
