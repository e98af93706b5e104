package textutil

import "math"

// Fingerprint is a term-frequency vector over normalized tokens.
type Fingerprint struct {
	tokens map[string]float64
	norm   float64
}

// NewFingerprint builds a fingerprint from tokens that are already normalized.
// Empty tokens are ignored. Returns nil when nothing remains.
func NewFingerprint(tokens []string) *Fingerprint {
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		if token == "" {
			continue
		}
		counts[token]++
	}
	if len(counts) == 0 {
		return nil
	}
	var norm float64
	for _, count := range counts {
		norm += count * count
	}
	return &Fingerprint{tokens: counts, norm: math.Sqrt(norm)}
}

// TokenCount returns the number of unique tokens in the fingerprint.
func (f *Fingerprint) TokenCount() int {
	if f == nil {
		return 0
	}
	return len(f.tokens)
}

// Coverage returns the fraction of f's unique tokens that also appear in other.
func (f *Fingerprint) Coverage(other *Fingerprint) float64 {
	if f == nil || other == nil || len(f.tokens) == 0 {
		return 0
	}
	shared := 0
	for token := range f.tokens {
		if _, ok := other.tokens[token]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(f.tokens))
}

// Similarity returns the cosine of the angle between the two frequency
// vectors: 1 for identical token distributions, 0 when nothing is shared or
// either side is empty.
func (f *Fingerprint) Similarity(other *Fingerprint) float64 {
	if f == nil || other == nil || f.norm == 0 || other.norm == 0 {
		return 0
	}
	small, large := f.tokens, other.tokens
	if len(small) > len(large) {
		small, large = large, small
	}
	var dot float64
	for token, count := range small {
		dot += count * large[token]
	}
	return dot / (f.norm * other.norm)
}
