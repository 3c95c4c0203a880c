// Package matching scores plain résumé text against a job's requirement terms.
//
// Both sides go through the same normalization: lower-casing and deletion of a fixed
// punctuation set. A term found as a résumé token scores TokenPoints, a term found only as a
// substring of the normalized text scores PhrasePoints. Each point value is multiplied by the
// requirement weight. Scoring is pure and safe for concurrent use.
package matching

const (
	// TokenPoints is awarded for a tier 1 (exact token) match.
	TokenPoints = 10.0
	// PhrasePoints is awarded for a tier 2 (substring) match.
	PhrasePoints = 5.0
	// DefaultMaxScore is the upper bound of a normalized score.
	DefaultMaxScore = 100.0
)

// Options controls optional post-processing of the raw score.
type Options struct {
	// Normalize rescales the total into [0, MaxScore].
	Normalize bool `json:"normalize,omitempty" mapstructure:"normalize"`
	// MaxScore is the upper bound used when Normalize is set. Defaults to 100.
	MaxScore float64 `json:"max_score,omitempty" mapstructure:"max-score"`
}

// TermMatch is the outcome for a single deduplicated requirement.
type TermMatch struct {
	Term   string  `json:"term"`
	Tier   Tier    `json:"tier"`
	Weight float64 `json:"weight"`
	Points float64 `json:"points"`
}

// Result is the outcome of a scoring call.
type Result struct {
	Score        float64     `json:"score"`
	MatchedTerms []string    `json:"matched_terms"`
	Terms        []TermMatch `json:"terms,omitempty"`
	// Fallback holds the failure behind a stand-in zero score. Empty for a real score.
	Fallback string `json:"fallback,omitempty"`
}

// IsFallback reports whether the score stands in for a failed scoring call.
func (r *Result) IsFallback() bool {
	return r != nil && r.Fallback != ""
}

// Empty returns a zero result with a non-nil matched list.
func Empty() *Result {
	return &Result{MatchedTerms: []string{}}
}

// KeywordScorer is the local, deterministic scoring strategy.
type KeywordScorer struct {
	normalizer *Normalizer
}

// NewKeywordScorer creates a scorer from an explicit configuration.
func NewKeywordScorer(cfg Config) *KeywordScorer {
	return &KeywordScorer{normalizer: NewNormalizer(cfg.Punctuation)}
}

var defaultScorer = NewKeywordScorer(Config{})

// Score runs the default keyword scorer.
func Score(resumeText string, reqs []Requirement, opts Options) *Result {
	return defaultScorer.Score(resumeText, reqs, opts)
}

// Score matches every deduplicated requirement against the résumé and sums the points.
func (s *KeywordScorer) Score(resumeText string, reqs []Requirement, opts Options) *Result {
	terms := dedupe(s.normalizer, reqs)
	result := Empty()
	if len(terms) == 0 {
		return result
	}

	doc := s.normalizer.prepare(resumeText)

	var total, possible float64
	result.Terms = make([]TermMatch, 0, len(terms))
	for _, t := range terms {
		tier := doc.match(t.term)
		points := 0.0
		switch tier {
		case TierToken:
			points = TokenPoints * t.weight
		case TierPhrase:
			points = PhrasePoints * t.weight
		}

		if tier != TierNone {
			result.MatchedTerms = append(result.MatchedTerms, t.term)
		}
		result.Terms = append(result.Terms, TermMatch{
			Term:   t.term,
			Tier:   tier,
			Weight: t.weight,
			Points: points,
		})

		total += points
		possible += TokenPoints * t.weight
	}

	result.Score = total
	if opts.Normalize {
		result.Score = Rescale(total, possible, opts.MaxScore)
	}

	return result
}

// Rescale maps total out of possible onto [0, maxScore].
func Rescale(total, possible, maxScore float64) float64 {
	if maxScore <= 0 {
		maxScore = DefaultMaxScore
	}
	if possible <= 0 {
		return 0
	}
	return total / possible * maxScore
}
