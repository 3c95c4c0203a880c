package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spigell/resume-scorer/internal/matching"
	"github.com/spigell/resume-scorer/internal/scoring"
)

const maxResumeBytes = 1 << 20

// ScoreRequest is the body of POST /v1/score.
type ScoreRequest struct {
	ResumeText     string                 `json:"resume_text" validate:"max=1048576"`
	Requirements   []matching.Requirement `json:"requirements" validate:"max=1000"`
	JobDescription string                 `json:"job_description,omitempty" validate:"max=65536"`
	Options        ScoreOptions           `json:"options"`
	JobID          string                 `json:"job_id,omitempty" validate:"required_with=ApplicationID,max=128"`
	ApplicationID  string                 `json:"application_id,omitempty" validate:"required_with=JobID,max=128"`
}

type ScoreOptions struct {
	Normalize bool    `json:"normalize"`
	MaxScore  float64 `json:"max_score" validate:"gte=0"`
}

// ScoreResponse is the body returned by POST /v1/score.
type ScoreResponse struct {
	Score        float64              `json:"score"`
	MatchedTerms []string             `json:"matched_terms"`
	Terms        []matching.TermMatch `json:"terms,omitempty"`
	Strategy     string               `json:"strategy"`
	ResultID     string               `json:"result_id,omitempty"`
	Fallback     string               `json:"fallback,omitempty"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the request and converts validator failures into *ErrValidation.
func (r *ScoreRequest) Validate(v *validator.Validate) error {
	if err := v.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ErrValidation{Field: fe.Field(), Message: describeTag(fe)}
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}

	for i, req := range r.Requirements {
		if strings.TrimSpace(req.Term) == "" {
			return &ErrValidation{Field: fmt.Sprintf("requirements[%d]", i), Message: "term must not be empty"}
		}
	}
	return nil
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required_with":
		return "required when " + fe.Param() + " is set"
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}

func (r *ScoreRequest) toScoring() scoring.Request {
	return scoring.Request{
		ResumeText:     r.ResumeText,
		Requirements:   r.Requirements,
		JobDescription: r.JobDescription,
		Options: matching.Options{
			Normalize: r.Options.Normalize,
			MaxScore:  r.Options.MaxScore,
		},
	}
}
