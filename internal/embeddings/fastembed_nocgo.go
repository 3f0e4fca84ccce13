//go:build !cgo

package embeddings

import "errors"

// ErrFastEmbedNotAvailable is returned when FastEmbed is not available
// (requires CGO for the ONNX runtime).
var ErrFastEmbedNotAvailable = errors.New("fastembed: not available (binary built without CGO support)")

func newFastEmbedProvider(_ Config) (Provider, error) {
	return nil, ErrFastEmbedNotAvailable
}
