// Package tfidf implements the pre-fitted term-frequency/inverse-document-
// frequency vectorizer. The vocabulary and idf weights are trained offline
// and shipped as a JSON artifact; at runtime the transform is a pure,
// deterministic function of the input text.
package tfidf

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode"
)

type Vectorizer struct {
	vocabulary map[string]int
	idf        []float64
}

type artifact struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
}

func Load(path string) (*Vectorizer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vectorizer artifact: %w", err)
	}

	var art artifact
	if err := json.Unmarshal(raw, &art); err != nil {
		return nil, fmt.Errorf("parse vectorizer artifact: %w", err)
	}
	if len(art.IDF) == 0 {
		return nil, fmt.Errorf("vectorizer artifact %s has an empty idf table", path)
	}
	for term, idx := range art.Vocabulary {
		if idx < 0 || idx >= len(art.IDF) {
			return nil, fmt.Errorf("vectorizer artifact %s: term %q maps to index %d outside idf table of %d", path, term, idx, len(art.IDF))
		}
	}

	return &Vectorizer{
		vocabulary: art.Vocabulary,
		idf:        art.IDF,
	}, nil
}

func (v *Vectorizer) Dimensions() int { return len(v.idf) }

// Vectorize computes the l2-normalized tf-idf vector for text. Tokens
// outside the fitted vocabulary are ignored, matching the offline
// transform.
func (v *Vectorizer) Vectorize(text string) []float64 {
	counts := make(map[int]float64, 64)
	for _, token := range tokenize(text) {
		if idx, ok := v.vocabulary[token]; ok {
			counts[idx]++
		}
	}

	vector := make([]float64, len(v.idf))
	var sumSquares float64
	for idx, tf := range counts {
		weight := tf * v.idf[idx]
		vector[idx] = weight
		sumSquares += weight * weight
	}
	if sumSquares > 0 {
		norm := math.Sqrt(sumSquares)
		for idx := range vector {
			vector[idx] /= norm
		}
	}
	return vector
}

func tokenize(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 32)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
