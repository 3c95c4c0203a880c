package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/resume-scorer/internal/matching"
	"github.com/spigell/resume-scorer/internal/metrics"
	"github.com/spigell/resume-scorer/internal/scoring"
	"github.com/spigell/resume-scorer/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	maxModelScore       = 100.0

	systemInstruction = "You are a strict technical recruiter. You score résumés against job requirements and answer in JSON only."
)

// ScorerConfig configures the remote scoring strategy.
type ScorerConfig struct {
	// Matching provides the normalization used to map model answers back to requirement terms.
	Matching     matching.Config
	MaxLogLength int
	// FallbackToZero turns remote failures into a zero score instead of an error.
	FallbackToZero bool
}

// Scorer asks a Gemini model for a 0..100 fit score.
type Scorer struct {
	generator  contentGenerator
	normalizer *matching.Normalizer
	fallback   bool
	maxLogLen  int
	logger     *zap.Logger
}

// NewScorer creates the remote scoring strategy.
func NewScorer(generator contentGenerator, cfg ScorerConfig, logger *zap.Logger) *Scorer {
	maxLogLength := cfg.MaxLogLength
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		generator:  generator,
		normalizer: matching.NewNormalizer(cfg.Matching.Punctuation),
		fallback:   cfg.FallbackToZero,
		maxLogLen:  maxLogLength,
		logger:     logger,
	}
}

func (s *Scorer) Name() string { return scoring.StrategyRemote }

// Score sends the résumé and job to the model. Empty inputs short-circuit to a zero result.
func (s *Scorer) Score(ctx context.Context, req scoring.Request) (*matching.Result, error) {
	if strings.TrimSpace(req.ResumeText) == "" || len(req.Requirements) == 0 {
		return matching.Empty(), nil
	}

	prompt := buildPrompt(req.ResumeText, describeJob(req))

	s.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return s.fail(err)
	}

	s.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return s.fail(err)
	}

	s.logger.Debug("gemini assessment",
		zap.Float64("score", assessment.score),
		zap.String("reason", assessment.reason),
	)

	return s.toResult(assessment, req), nil
}

func (s *Scorer) fail(err error) (*matching.Result, error) {
	if !s.fallback {
		return nil, err
	}

	metrics.RemoteFallbacks.WithLabelValues(fallbackReason(err)).Inc()
	s.logger.Warn("remote scoring failed, falling back to zero score", zap.Error(err))
	result := matching.Empty()
	result.Fallback = err.Error()
	return result, nil
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, scoring.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, scoring.ErrServiceUnavailable):
		return "unavailable"
	case errors.Is(err, scoring.ErrInvalidResponse):
		return "invalid_response"
	default:
		return "error"
	}
}

// toResult keeps only matched terms that correspond to requested requirements, in request order.
func (s *Scorer) toResult(a *assessment, req scoring.Request) *matching.Result {
	claimed := make(map[string]struct{}, len(a.matched))
	for _, term := range a.matched {
		if n := s.normalizer.NormalizeTerm(term); n != "" {
			claimed[n] = struct{}{}
		}
	}

	result := matching.Empty()
	seen := make(map[string]struct{}, len(req.Requirements))
	for _, r := range req.Requirements {
		term := s.normalizer.NormalizeTerm(r.Term)
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		if _, ok := claimed[term]; ok {
			result.MatchedTerms = append(result.MatchedTerms, term)
		}
	}

	result.Score = a.score
	if req.Options.Normalize {
		result.Score = matching.Rescale(a.score, maxModelScore, req.Options.MaxScore)
	}

	return result
}

func describeJob(req scoring.Request) string {
	var b strings.Builder
	if desc := strings.TrimSpace(req.JobDescription); desc != "" {
		b.WriteString(desc)
		b.WriteString("\n\n")
	}

	b.WriteString("Requirements:\n")
	for _, r := range req.Requirements {
		term := strings.Join(strings.Fields(r.Term), " ")
		if term == "" {
			continue
		}
		w := r.EffectiveWeight()
		if w == matching.DefaultWeight {
			fmt.Fprintf(&b, "- %s\n", term)
			continue
		}
		fmt.Fprintf(&b, "- %s (weight %s)\n", term, strconv.FormatFloat(w, 'f', -1, 64))
	}

	return strings.TrimSpace(b.String())
}

func buildPrompt(resumeText, jobDescription string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job:\n{{JOB_DESCRIPTION}}\n\nRésumé:\n{{RESUME_TEXT}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{JOB_DESCRIPTION}}", jobDescription)
	prompt = strings.ReplaceAll(prompt, "{{RESUME_TEXT}}", strings.TrimSpace(resumeText))
	return prompt
}

type assessment struct {
	score   float64
	matched []string
	reason  string
}

func parseResponse(raw string) (*assessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("%w: parse gemini response: %w", scoring.ErrInvalidResponse, err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return nil, fmt.Errorf("%w: score is missing or not a number", scoring.ErrInvalidResponse)
	}

	score = math.Round(math.Max(0, math.Min(maxModelScore, score)))

	return &assessment{
		score:   score,
		matched: coerceStrings(data["matched_terms"]),
		reason:  coerceString(data["reason"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(val, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
