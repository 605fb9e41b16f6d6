package engine

import "sort"

// Vocabulary is the fixed, ordered term set fitted on the opportunity corpus.
// It is immutable after BuildVocabulary returns.
type Vocabulary struct {
	terms []string
	index map[string]int
}

func BuildVocabulary(docs []string) *Vocabulary {
	seen := make(map[string]struct{}, 256)
	for _, doc := range docs {
		for _, token := range Tokenize(doc) {
			seen[token] = struct{}{}
		}
	}

	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	index := make(map[string]int, len(terms))
	for i, term := range terms {
		index[term] = i
	}
	return &Vocabulary{terms: terms, index: index}
}

func (v *Vocabulary) Len() int {
	return len(v.terms)
}

func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Vectorize returns raw term counts over the vocabulary.
// Terms outside the vocabulary contribute nothing.
func (v *Vocabulary) Vectorize(text string) []float64 {
	vec := make([]float64, len(v.terms))
	for _, token := range Tokenize(text) {
		if i, ok := v.index[token]; ok {
			vec[i]++
		}
	}
	return vec
}
