//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/harmonia-chat/harmonia/pkg/utils"
)

// ONNXEmbedder runs a local sentence-embedding model through ONNX Runtime.
// It requires CGO and the onnxruntime shared library. Tensors are allocated
// once at construction and reused for every call, so inference is serialized
// through a mutex.
type ONNXEmbedder struct {
	session    *ort.AdvancedSession
	dimensions int
	maxTokens  int
	cache      *Cache
	tokenizer  Tokenizer

	mu    sync.Mutex
	ids   *ort.Tensor[int64]
	mask  *ort.Tensor[int64]
	types *ort.Tensor[int64]
	out   *ort.Tensor[float32]
}

// NewONNXEmbedder loads the model at modelPath. The runtime environment is
// initialized on first use.
func NewONNXEmbedder(modelPath string, dimensions, maxTokens, cacheSize int) (*ONNXEmbedder, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}

	tokenizer := &SimpleTokenizer{}
	ids, mask, types := tokenizer.Tokenize("", maxTokens)

	var allocated []ort.ArbitraryTensor
	destroyAll := func() {
		for _, t := range allocated {
			_ = t.Destroy()
		}
	}
	newInput := func(name string, data []int64) (*ort.Tensor[int64], error) {
		t, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), data)
		if err != nil {
			destroyAll()
			return nil, fmt.Errorf("failed to create %s tensor: %w", name, err)
		}
		allocated = append(allocated, t)
		return t, nil
	}

	e := &ONNXEmbedder{
		dimensions: dimensions,
		maxTokens:  maxTokens,
		cache:      NewCache(cacheSize),
		tokenizer:  tokenizer,
	}
	var err error
	if e.ids, err = newInput("input_ids", ids); err != nil {
		return nil, err
	}
	if e.mask, err = newInput("attention_mask", mask); err != nil {
		return nil, err
	}
	if e.types, err = newInput("token_type_ids", types); err != nil {
		return nil, err
	}
	e.out, err = ort.NewTensor(ort.NewShape(1, int64(dimensions)), make([]float32, dimensions))
	if err != nil {
		destroyAll()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	allocated = append(allocated, e.out)

	e.session, err = ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"output"},
		[]ort.ArbitraryTensor{e.ids, e.mask, e.types},
		[]ort.ArbitraryTensor{e.out},
		nil,
	)
	if err != nil {
		destroyAll()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}
	return e, nil
}

// Embed returns the unit-normalized embedding for text, using cache when
// available.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ids, mask, types := e.tokenizer.Tokenize(text, e.maxTokens)
	copy(e.ids.GetData(), ids)
	copy(e.mask.GetData(), mask)
	copy(e.types.GetData(), types)

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	embedding := make([]float32, e.dimensions)
	copy(embedding, e.out.GetData()[:e.dimensions])
	utils.NormalizeL2(embedding)

	e.cache.Set(text, embedding)
	return embedding, nil
}

// EmbedBatch calls Embed for each text.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *ONNXEmbedder) Dimensions() int {
	return e.dimensions
}

// Close destroys the session and its tensors.
func (e *ONNXEmbedder) Close() error {
	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	for _, t := range []*ort.Tensor[int64]{e.ids, e.mask, e.types} {
		if t != nil {
			_ = t.Destroy()
		}
	}
	if e.out != nil {
		_ = e.out.Destroy()
		e.out = nil
	}
	e.ids, e.mask, e.types = nil, nil, nil
	return err
}
