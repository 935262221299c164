// Package policy defines the per-column transformation policy surface:
// which strategy repairs a column's missing values and which treatment
// bounds its outliers. Policies are plain data, supplied through
// configuration, with AgriClimate as the documented default table.
package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"agriprep/internal/errors"
)

// Strategy selects how missing values in a column are repaired
type Strategy string

const (
	Mean   Strategy = "mean"
	Median Strategy = "median"
	Mode   Strategy = "mode"
	Drop   Strategy = "drop"
)

// Treatment selects how outliers in a numeric column are bounded
type Treatment string

const (
	// None leaves a column unbounded
	None Treatment = "none"
	// IQR clamps into [Q1-1.5*IQR, Q3+1.5*IQR]
	IQR Treatment = "iqr"
	// Clip clamps into a fixed [Min, Max] range
	Clip Treatment = "clip"
)

// ColumnRule is the policy for a single column. The zero value means no
// explicit rule. Min and Max only apply to the clip treatment.
type ColumnRule struct {
	Missing  Strategy  `yaml:"missing" validate:"omitempty,oneof=mean median mode drop"`
	Outliers Treatment `yaml:"outliers" validate:"omitempty,oneof=none iqr clip"`
	Min      float64   `yaml:"min"`
	Max      float64   `yaml:"max"`
}

// Set is the complete policy surface. Columns carries the explicit
// per-column rules; Default repairs unlisted columns. UnlistedNumeric
// optionally extends outlier bounding to every numeric column without an
// explicit rule (iqr), instead of touching only the listed ones.
type Set struct {
	Default         Strategy              `yaml:"default_strategy" validate:"omitempty,oneof=mean median mode drop"`
	UnlistedNumeric Treatment             `yaml:"unlisted_numeric" validate:"omitempty,oneof=none iqr"`
	Columns         map[string]ColumnRule `yaml:"columns" validate:"dive"`
}

// RuleFor returns the explicit rule for a column
func (s Set) RuleFor(column string) (ColumnRule, bool) {
	rule, ok := s.Columns[column]
	return rule, ok
}

// StrategyFor returns the missing-value strategy for a column: the
// explicit rule when one names a strategy, then the set default, then
// mean.
func (s Set) StrategyFor(column string) Strategy {
	if rule, ok := s.Columns[column]; ok && rule.Missing != "" {
		return rule.Missing
	}
	if s.Default != "" {
		return s.Default
	}
	return Mean
}

// TreatmentFor returns the outlier treatment for a column. Unlisted
// columns fall back to UnlistedNumeric when set, else none.
func (s Set) TreatmentFor(column string) (Treatment, ColumnRule) {
	if rule, ok := s.Columns[column]; ok && rule.Outliers != "" && rule.Outliers != None {
		return rule.Outliers, rule
	}
	if _, ok := s.Columns[column]; !ok && s.UnlistedNumeric == IQR {
		return IQR, ColumnRule{Outliers: IQR}
	}
	return None, ColumnRule{}
}

// Validate checks strategy and treatment enum membership and clip bounds
func (s Set) Validate() error {
	v := validator.New()
	if err := v.Struct(s); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return errors.NewConfigError("invalid policy", err)
		}
		messages := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			messages = append(messages, formatFieldError(fieldErr))
		}
		return errors.NewConfigError("invalid policy", fmt.Errorf("%s", strings.Join(messages, "; ")))
	}

	// Clip bounds are cross-field and out of reach for struct tags
	names := make([]string, 0, len(s.Columns))
	for name := range s.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rule := s.Columns[name]
		if rule.Outliers == Clip && rule.Min >= rule.Max {
			return errors.NewConfigError(
				fmt.Sprintf("clip bounds for column %q require min < max", name), nil).
				WithContext("min", rule.Min).
				WithContext("max", rule.Max)
		}
	}
	return nil
}

// formatFieldError formats a validator error message
func formatFieldError(err validator.FieldError) string {
	switch err.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", err.Field(), strings.Replace(err.Param(), " ", ", ", -1))
	default:
		return fmt.Sprintf("%s failed %s validation", err.Field(), err.Tag())
	}
}
