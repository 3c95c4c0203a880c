package matching

import (
	"strings"
)

// DefaultPunctuation is the set of runes removed from both résumé text and requirement terms.
const DefaultPunctuation = ".,/#!$%^&*;:{}=-_`~()"

// Config holds the tunables of the keyword matcher.
type Config struct {
	// Punctuation lists every rune deleted during normalization.
	// An empty value falls back to DefaultPunctuation.
	Punctuation string `mapstructure:"punctuation"`
}

// Normalizer applies the same lower-casing and punctuation stripping to résumés and terms.
type Normalizer struct {
	punct map[rune]struct{}
}

// NewNormalizer builds a Normalizer for the given punctuation set.
func NewNormalizer(punctuation string) *Normalizer {
	if punctuation == "" {
		punctuation = DefaultPunctuation
	}

	set := make(map[rune]struct{}, len(punctuation))
	for _, r := range punctuation {
		set[r] = struct{}{}
	}

	return &Normalizer{punct: set}
}

// Normalize lower-cases the text and deletes punctuation. Whitespace is kept as-is.
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}

	lowered := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if _, skip := n.punct[r]; skip {
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

// Tokenize returns the set of unique tokens found in the text.
func (n *Normalizer) Tokenize(text string) map[string]struct{} {
	fields := strings.Fields(n.Normalize(text))

	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tokens[f] = struct{}{}
	}

	return tokens
}

// NormalizeTerm normalizes a requirement term without splitting it.
// Internal whitespace runs collapse into a single space.
func (n *Normalizer) NormalizeTerm(term string) string {
	return strings.Join(strings.Fields(n.Normalize(term)), " ")
}
