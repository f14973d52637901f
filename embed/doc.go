// Package embed turns query text into vectors in-process. Embedders are pure
// functions of their input and a model loaded once at startup, so a single
// instance is shared by every request.
package embed
