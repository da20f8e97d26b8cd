//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"
)

// ONNXEmbedder placeholder for builds without CGO. The real implementation
// lives in onnx.go.
type ONNXEmbedder struct{}

// NewONNXEmbedder always fails without CGO; use the hash or ollama provider
// instead, or rebuild with CGO_ENABLED=1 and the onnxruntime library.
func NewONNXEmbedder(_ string, _, _, _ int) (*ONNXEmbedder, error) {
	return nil, errors.New("onnx embedding provider requires a CGO build")
}

// Embed is unreachable without CGO; NewONNXEmbedder never returns an instance.
func (e *ONNXEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("onnx embedding provider requires a CGO build")
}

// EmbedBatch is unreachable without CGO.
func (e *ONNXEmbedder) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, errors.New("onnx embedding provider requires a CGO build")
}

// Dimensions is unreachable without CGO.
func (e *ONNXEmbedder) Dimensions() int { return 0 }

// Close is unreachable without CGO.
func (e *ONNXEmbedder) Close() error { return nil }
