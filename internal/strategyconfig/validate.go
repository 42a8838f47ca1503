package strategyconfig

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/precinho/internal/s1_normalize"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// 에러 메시지에 yaml 키 사용
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks all required constraints
// 1단계: struct tag, 2단계: cross-field 규칙
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fromFieldError(verrs[0])
		}
		return err
	}

	// === Scoring ===
	sum := 0
	names := make(map[string]bool, len(cfg.Scoring.Rules))
	for i, r := range cfg.Scoring.Rules {
		field := fmt.Sprintf("scoring.rules[%d]", i)
		if names[r.Name] {
			return ValidationError{field + ".name", fmt.Sprintf("duplicate rule %q", r.Name)}
		}
		names[r.Name] = true

		if !isScoreField(r.Field) {
			return ValidationError{field + ".field", fmt.Sprintf("unknown field %q", r.Field)}
		}
		if r.Lower == nil && r.Upper == nil {
			return ValidationError{field, "at least one of lower/upper required"}
		}
		if r.Lower != nil && r.Upper != nil && *r.Lower >= *r.Upper {
			return ValidationError{field, "lower must be < upper"}
		}
		sum += r.Weight
	}
	if sum != 100 {
		return ValidationError{"scoring.rules", fmt.Sprintf("weights must sum to 100, got %d", sum)}
	}

	// === Classification ===
	if cfg.Classification.Thresholds.Large <= cfg.Classification.Thresholds.Mid {
		return ValidationError{"classification.thresholds", "large must be > mid"}
	}

	// === Universe ===
	seen := make(map[string]bool, len(cfg.Universe.Tickers))
	for _, t := range cfg.Universe.Tickers {
		key := s1_normalize.CanonicalTicker(t)
		if seen[key] {
			return ValidationError{"universe.tickers", fmt.Sprintf("duplicate ticker %q", t)}
		}
		seen[key] = true
	}

	return nil
}

func fromFieldError(fe validator.FieldError) ValidationError {
	// Namespace: "Config.scoring.rules[0].weight" → "scoring.rules[0].weight"
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}

	msg := fe.Tag()
	if fe.Param() != "" {
		msg = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
	}
	return ValidationError{Field: ns, Message: fmt.Sprintf("failed '%s' (got %v)", msg, fe.Value())}
}

func isScoreField(name string) bool {
	switch name {
	case s1_normalize.FieldPriceEarnings,
		s1_normalize.FieldPriceToBook,
		s1_normalize.FieldReturnOnEquity,
		s1_normalize.FieldDividendYield,
		s1_normalize.FieldDebtToEquity,
		s1_normalize.FieldMarketCap,
		s1_normalize.FieldCurrentPrice:
		return true
	}
	return false
}
