package ai

import (
	"context"
	"math"
	"math/rand"
	"sync"
)

// Projection is a deterministic linear map from a model's native embedding
// dimensionality to a fixed target dimensionality.
//
// The weight matrix is generated exactly once, from the configured seed, and
// reused for every call. Regenerating weights per call would make stored
// embeddings mutually incomparable across ingestion runs.
type Projection struct {
	targetDim int
	seed      int64

	mu        sync.Mutex
	sourceDim int
	weights   [][]float32 // [targetDim][sourceDim], built on first use
}

// NewProjection creates a projection onto targetDim dimensions.
// The source dimensionality is fixed by the first vector projected; vectors
// of any other length are rejected afterwards.
func NewProjection(targetDim int, seed int64) *Projection {
	return &Projection{
		targetDim: targetDim,
		seed:      seed,
	}
}

// Apply projects a native-dimension vector to the target dimensionality.
func (p *Projection) Apply(vector []float32) ([]float32, error) {
	if len(vector) == 0 {
		return nil, ErrDimensionMismatch
	}

	p.mu.Lock()
	if p.weights == nil {
		p.sourceDim = len(vector)
		p.weights = buildWeights(p.targetDim, p.sourceDim, p.seed)
	}
	sourceDim := p.sourceDim
	weights := p.weights
	p.mu.Unlock()

	if len(vector) != sourceDim {
		return nil, ErrDimensionMismatch
	}

	out := make([]float32, p.targetDim)
	for i := 0; i < p.targetDim; i++ {
		var sum float32
		row := weights[i]
		for j := 0; j < sourceDim; j++ {
			sum += row[j] * vector[j]
		}
		out[i] = sum
	}
	return out, nil
}

// TargetDim returns the fixed output dimensionality.
func (p *Projection) TargetDim() int {
	return p.targetDim
}

// buildWeights generates a Gaussian random projection matrix. Generation is
// fully determined by (targetDim, sourceDim, seed), so separate processes
// configured with the same seed produce identical matrices.
func buildWeights(targetDim, sourceDim int, seed int64) [][]float32 {
	rng := rand.New(rand.NewSource(seed))
	scale := float32(1.0 / math.Sqrt(float64(sourceDim)))

	weights := make([][]float32, targetDim)
	for i := range weights {
		row := make([]float32, sourceDim)
		for j := range row {
			row[j] = float32(rng.NormFloat64()) * scale
		}
		weights[i] = row
	}
	return weights
}

// ProjectedEmbedder wraps an Embedder and projects every produced vector to
// a fixed target dimensionality.
type ProjectedEmbedder struct {
	inner      Embedder
	projection *Projection
}

var _ Embedder = (*ProjectedEmbedder)(nil)

// NewProjectedEmbedder wraps inner so that all of its output passes through
// the given projection.
func NewProjectedEmbedder(inner Embedder, projection *Projection) *ProjectedEmbedder {
	return &ProjectedEmbedder{
		inner:      inner,
		projection: projection,
	}
}

// EmbedText embeds a single text and projects the result.
func (e *ProjectedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	return e.projection.Apply(vector)
}

// EmbedTexts embeds a batch of texts and projects every result.
func (e *ProjectedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := e.inner.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(vectors))
	for i, vector := range vectors {
		projected, err := e.projection.Apply(vector)
		if err != nil {
			return nil, err
		}
		out[i] = projected
	}
	return out, nil
}
