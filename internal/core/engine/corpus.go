package engine

import (
	"fmt"
	"math"
)

// Corpus is the opportunity count matrix, stored row-major, with row norms
// computed once at load time.
type Corpus struct {
	rows   int
	dim    int
	matrix []float64
	norms  []float64
}

func NewCorpus(vocab *Vocabulary, docs []string) *Corpus {
	dim := vocab.Len()
	c := &Corpus{
		rows:   len(docs),
		dim:    dim,
		matrix: make([]float64, len(docs)*dim),
		norms:  make([]float64, len(docs)),
	}
	for i, doc := range docs {
		row := c.matrix[i*dim : (i+1)*dim]
		copy(row, vocab.Vectorize(doc))
		c.norms[i] = norm2(row)
	}
	return c
}

func (c *Corpus) Len() int {
	return c.rows
}

func (c *Corpus) Dim() int {
	return c.dim
}

// Row returns a copy of the i-th opportunity vector.
func (c *Corpus) Row(i int) []float64 {
	out := make([]float64, c.dim)
	copy(out, c.matrix[i*c.dim:(i+1)*c.dim])
	return out
}

// Cosine scores vec against every opportunity in a single pass over the
// matrix. A zero-norm vector on either side scores 0.
func (c *Corpus) Cosine(vec []float64) ([]float64, error) {
	if len(vec) != c.dim {
		return nil, fmt.Errorf("vector dimension %d does not match vocabulary size %d", len(vec), c.dim)
	}

	scores := make([]float64, c.rows)
	queryNorm := norm2(vec)
	if queryNorm == 0 {
		return scores, nil
	}

	nonZero := make([]int, 0, 16)
	for j, v := range vec {
		if v != 0 {
			nonZero = append(nonZero, j)
		}
	}

	for i := 0; i < c.rows; i++ {
		if c.norms[i] == 0 {
			continue
		}
		base := i * c.dim
		var dot float64
		for _, j := range nonZero {
			dot += vec[j] * c.matrix[base+j]
		}
		scores[i] = clamp01(dot / (queryNorm * c.norms[i]))
	}
	return scores, nil
}

func norm2(vec []float64) float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func clamp01(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
