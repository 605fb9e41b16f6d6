package engine

import (
	"math"
	"reflect"
	"testing"
)

func TestBuildVocabularyIsSortedAndDeduplicated(t *testing.T) {
	vocab := BuildVocabulary([]string{"python sql", "java python"})
	want := []string{"java", "python", "sql"}
	if !reflect.DeepEqual(vocab.Terms(), want) {
		t.Fatalf("Terms() = %v, want %v", vocab.Terms(), want)
	}

	vec := vocab.Vectorize("Python python rust")
	if !reflect.DeepEqual(vec, []float64{0, 2, 0}) {
		t.Fatalf("expected out-of-vocabulary term to be dropped, got %v", vec)
	}
}

func TestCorpusCosineBatch(t *testing.T) {
	docs := []string{"python sql", "java spring", ""}
	vocab := BuildVocabulary(docs)
	corpus := NewCorpus(vocab, docs)

	if corpus.Len() != 3 || corpus.Dim() != vocab.Len() {
		t.Fatalf("unexpected corpus shape %dx%d", corpus.Len(), corpus.Dim())
	}

	scores, err := corpus.Cosine(vocab.Vectorize("python sql"))
	if err != nil {
		t.Fatalf("Cosine() error = %v", err)
	}
	if math.Abs(scores[0]-1) > 1e-9 {
		t.Fatalf("expected identical text to score 1, got %f", scores[0])
	}
	if scores[1] != 0 {
		t.Fatalf("expected disjoint text to score 0, got %f", scores[1])
	}
	if scores[2] != 0 {
		t.Fatalf("expected empty requirements to score 0, got %f", scores[2])
	}

	scores, err = corpus.Cosine(vocab.Vectorize("python"))
	if err != nil {
		t.Fatalf("Cosine() error = %v", err)
	}
	if math.Abs(scores[0]-1/math.Sqrt2) > 1e-9 {
		t.Fatalf("expected 1/sqrt(2), got %f", scores[0])
	}
}

func TestCorpusCosineZeroQuery(t *testing.T) {
	docs := []string{"python sql", "java"}
	vocab := BuildVocabulary(docs)
	corpus := NewCorpus(vocab, docs)

	scores, err := corpus.Cosine(vocab.Vectorize("cobol"))
	if err != nil {
		t.Fatalf("Cosine() error = %v", err)
	}
	for i, s := range scores {
		if s != 0 {
			t.Fatalf("expected zero score at %d, got %f", i, s)
		}
	}
}

func TestCorpusCosineRejectsDimensionMismatch(t *testing.T) {
	docs := []string{"python sql"}
	corpus := NewCorpus(BuildVocabulary(docs), docs)
	if _, err := corpus.Cosine([]float64{1}); err == nil {
		t.Fatalf("expected dimension mismatch error")
	}
}
