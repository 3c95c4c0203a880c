package matching

import (
	"fmt"
	"strings"
)

// Tier tells how a requirement term was found in a résumé.
type Tier int

const (
	// TierNone means the term was not found.
	TierNone Tier = iota
	// TierToken is an exact match against a single résumé token.
	TierToken
	// TierPhrase is a substring match against the normalized résumé text.
	TierPhrase
)

func (t Tier) String() string {
	switch t {
	case TierToken:
		return "token"
	case TierPhrase:
		return "phrase"
	default:
		return "none"
	}
}

// MarshalText lets tiers render as words in JSON and logs.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses the words written by MarshalText.
func (t *Tier) UnmarshalText(text []byte) error {
	switch string(text) {
	case "token":
		*t = TierToken
	case "phrase":
		*t = TierPhrase
	case "none", "":
		*t = TierNone
	default:
		return fmt.Errorf("unknown match tier %q", text)
	}
	return nil
}

// document is a résumé prepared for matching.
type document struct {
	tokens map[string]struct{}
	text   string
}

func (n *Normalizer) prepare(resumeText string) document {
	text := n.Normalize(resumeText)
	tokens := make(map[string]struct{})
	for _, f := range strings.Fields(text) {
		tokens[f] = struct{}{}
	}
	return document{tokens: tokens, text: text}
}

// match decides the tier of an already normalized term. Tier 1 is checked first.
func (d document) match(term string) Tier {
	if term == "" {
		return TierNone
	}

	if !strings.Contains(term, " ") {
		if _, ok := d.tokens[term]; ok {
			return TierToken
		}
	}

	if strings.Contains(d.text, term) {
		return TierPhrase
	}

	return TierNone
}
