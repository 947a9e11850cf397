// Package logging sets up structured JSON logging for the fortune binaries,
// optionally writing to a size-rotated file.
package logging
