// Package rubric validates scoring submissions against rubric definitions.
//
// Validation is the gate in front of the score record store: a raw
// key-to-value map from a judge either comes out the other side as a
// normalized map of typed criterion values, or the submission is rejected
// with an error naming the exact offending criterion. Records already in
// the store are never re-validated here; aggregation tolerates historical
// drift instead.
package rubric

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ngage-io/tally/internal/domain/model"
)

// definition validates rubric structs via tags on the model types.
var definition = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // shared validator instance, stateless after construction

// ValidateDefinition checks a rubric definition itself: non-empty name,
// at least one criterion, unique keys, positive bounds and weights.
func ValidateDefinition(r model.ScoringRubric) error {
	if err := definition.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	for _, c := range r.Criteria {
		if c.Type == model.CriterionScale && c.MinScore >= c.MaxScore {
			return fmt.Errorf("%w: scale criterion %q requires min < max", ErrInvalidDefinition, c.Key)
		}
	}
	return nil
}

// Validate checks raw judge-supplied values against a rubric and returns a
// normalized map ready to embed in a Score. The first violation found is
// returned; keys are visited in deterministic order so retries surface the
// same error.
func Validate(raw map[string]any, r model.ScoringRubric) (map[string]model.CriterionValue, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	normalized := make(map[string]model.CriterionValue, len(raw))
	for _, key := range keys {
		c, ok := r.Criterion(key)
		if !ok {
			return nil, &UnknownCriterionError{Key: key}
		}
		value := raw[key]
		if isAbsent(value) {
			continue
		}
		v, err := normalize(c, value)
		if err != nil {
			return nil, err
		}
		normalized[key] = v
	}

	for _, c := range r.Criteria {
		if !c.Required {
			continue
		}
		if _, ok := normalized[c.Key]; !ok {
			return nil, &MissingRequiredFieldError{Key: c.Key}
		}
	}

	return normalized, nil
}

// isAbsent treats nil and blank strings as "no value supplied".
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func normalize(c model.ScoringCriterion, value any) (model.CriterionValue, error) {
	switch c.Type {
	case model.CriterionBoolean:
		b, ok := coerceBool(value)
		if !ok {
			return model.CriterionValue{}, &InvalidTypeError{Key: c.Key, Value: value}
		}
		return model.BoolValue(b), nil
	case model.CriterionScale:
		n, ok := coerceFloat(value)
		if !ok {
			return model.CriterionValue{}, &InvalidTypeError{Key: c.Key, Value: value}
		}
		if n < c.MinScore || n > c.MaxScore {
			return model.CriterionValue{}, &OutOfRangeError{Key: c.Key, Value: n, Min: c.MinScore, Max: c.MaxScore}
		}
		return model.NumberValue(n), nil
	default: // numeric
		n, ok := coerceFloat(value)
		if !ok {
			return model.CriterionValue{}, &InvalidTypeError{Key: c.Key, Value: value}
		}
		if n < 0 || n > c.MaxScore {
			return model.CriterionValue{}, &OutOfRangeError{Key: c.Key, Value: n, Min: 0, Max: c.MaxScore}
		}
		return model.NumberValue(n), nil
	}
}

// coerceBool normalizes the upstream client convention of stringly-typed
// booleans ("true"/"1") into real booleans before typed validation.
func coerceBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
		return false, false
	case float64:
		if v == 1 {
			return true, true
		}
		if v == 0 {
			return false, true
		}
		return false, false
	case int:
		return v != 0, true
	default:
		return false, false
	}
}

func coerceFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
