package matching

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// DefaultWeight is applied to requirements without an explicit positive weight.
const DefaultWeight = 1.0

// Requirement is a single skill or phrase a job asks for.
type Requirement struct {
	Term   string  `json:"term" mapstructure:"term"`
	Weight float64 `json:"weight,omitempty" mapstructure:"weight"`
}

// EffectiveWeight returns the weight used in scoring.
func (r Requirement) EffectiveWeight() float64 {
	if r.Weight <= 0 || math.IsNaN(r.Weight) || math.IsInf(r.Weight, 0) {
		return DefaultWeight
	}
	return r.Weight
}

// Terms builds unweighted requirements from bare strings.
func Terms(terms ...string) []Requirement {
	reqs := make([]Requirement, 0, len(terms))
	for _, t := range terms {
		reqs = append(reqs, Requirement{Term: t})
	}
	return reqs
}

// UnmarshalJSON accepts either a bare string or a {"term", "weight"} object.
func (r *Requirement) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var term string
		if err := json.Unmarshal(data, &term); err != nil {
			return err
		}
		*r = Requirement{Term: term}
		return nil
	}

	type plain Requirement
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("requirement must be a string or an object with a term: %w", err)
	}
	*r = Requirement(p)
	return nil
}

// RequirementHook is a mapstructure decode hook turning bare strings into Requirements.
func RequirementHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(Requirement{}) {
			return data, nil
		}
		if from.Kind() == reflect.String {
			return Requirement{Term: reflect.ValueOf(data).String()}, nil
		}
		return data, nil
	}
}

// DecodeRequirements converts loosely typed config values (strings or maps) into Requirements.
func DecodeRequirements(raw any) ([]Requirement, error) {
	if raw == nil {
		return nil, nil
	}

	var reqs []Requirement
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       RequirementHook(),
		WeaklyTypedInput: true,
		Result:           &reqs,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode requirements: %w", err)
	}

	for i, r := range reqs {
		if strings.TrimSpace(r.Term) == "" {
			return nil, fmt.Errorf("requirement #%d: %w", i, errEmptyTerm)
		}
	}

	return reqs, nil
}

var errEmptyTerm = errors.New("term must not be empty")

// normalizedRequirement is a requirement after boundary normalization.
type normalizedRequirement struct {
	term   string
	weight float64
}

// dedupe normalizes terms and drops duplicates and empties. The first occurrence wins.
func dedupe(n *Normalizer, reqs []Requirement) []normalizedRequirement {
	seen := make(map[string]struct{}, len(reqs))
	out := make([]normalizedRequirement, 0, len(reqs))

	for _, r := range reqs {
		term := n.NormalizeTerm(r.Term)
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, normalizedRequirement{term: term, weight: r.EffectiveWeight()})
	}

	return out
}
