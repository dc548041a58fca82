// Package config provides configuration management for the factory monitor.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"factory-monitor/internal/model"
)

// ValidationError represents a single validation error with user-friendly message.
type ValidationError struct {
	Field   string      // Field path (e.g., "broadcast.send_timeout")
	Tag     string      // Validation tag that failed (e.g., "required", "gte")
	Value   interface{} // Actual value that failed validation
	Message string      // User-friendly error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// validate is the package-level validator instance.
var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("timezone", validateTimezone)
}

// Validate validates the configuration and returns user-friendly error messages.
func Validate(cfg *Config) error {
	var validationErrors ValidationErrors

	if err := validate.Struct(cfg); err != nil {
		validationErrors = append(validationErrors, fieldErrors(err, "")...)
	}

	if errs := validateBroadcast(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if errs := validateLines(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if errs := ValidateRules(cfg.Anomaly.Rules); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if errs := validateTimezoneConfig(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

// ValidateRules checks every threshold rule: required fields, a known metric,
// and warning/critical bounds ordered according to the rule direction.
func ValidateRules(rules []*model.ThresholdRule) ValidationErrors {
	var errors ValidationErrors

	if len(rules) == 0 {
		return append(errors, &ValidationError{
			Field:   "anomaly.rules",
			Tag:     "required",
			Message: "at least one threshold rule is required",
		})
	}

	probe := model.ProductionLine{}
	for i, r := range rules {
		field := fmt.Sprintf("anomaly.rules[%d]", i)
		if r == nil {
			errors = append(errors, &ValidationError{Field: field, Tag: "required", Message: "rule is empty"})
			continue
		}

		if err := validate.Struct(r); err != nil {
			errors = append(errors, fieldErrors(err, field)...)
			continue
		}

		if _, ok := probe.MetricValue(r.Metric); !ok {
			errors = append(errors, &ValidationError{
				Field:   field + ".metric",
				Tag:     "metric",
				Value:   r.Metric,
				Message: fmt.Sprintf("unknown metric %q", r.Metric),
			})
		}

		ordered := r.Warning < r.Critical
		want := "less"
		if r.Direction == model.DirectionBelow {
			ordered = r.Warning > r.Critical
			want = "greater"
		}
		if !ordered {
			errors = append(errors, &ValidationError{
				Field:   field,
				Tag:     "threshold_order",
				Value:   fmt.Sprintf("warning=%v, critical=%v", r.Warning, r.Critical),
				Message: fmt.Sprintf("warning threshold (%.2f) must be %s than critical threshold (%.2f) for direction %q", r.Warning, want, r.Critical, r.Direction),
			})
		}
	}

	return errors
}

// validateTimezone is a custom validator for timezone strings.
func validateTimezone(fl validator.FieldLevel) bool {
	tz := fl.Field().String()
	if tz == "" {
		return true // Empty is allowed, will use default
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// validateBroadcast checks the tick cadence against the delivery timeout.
// A delivery must give up before the next tick is due.
func validateBroadcast(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	b := cfg.Broadcast
	if b.Interval <= 0 {
		errors = append(errors, &ValidationError{
			Field:   "broadcast.interval",
			Tag:     "gt",
			Value:   b.Interval,
			Message: "interval must be positive",
		})
	}
	if b.SendTimeout <= 0 {
		errors = append(errors, &ValidationError{
			Field:   "broadcast.send_timeout",
			Tag:     "gt",
			Value:   b.SendTimeout,
			Message: "send timeout must be positive",
		})
	}
	if b.Interval > 0 && b.SendTimeout >= b.Interval {
		errors = append(errors, &ValidationError{
			Field:   "broadcast.send_timeout",
			Tag:     "timeout_order",
			Value:   fmt.Sprintf("send_timeout=%v, interval=%v", b.SendTimeout, b.Interval),
			Message: fmt.Sprintf("send timeout (%v) must be shorter than interval (%v)", b.SendTimeout, b.Interval),
		})
	}

	return errors
}

// validateLines checks that line ids are unique.
func validateLines(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	seen := make(map[string]bool, len(cfg.Lines))
	for i, l := range cfg.Lines {
		if l.ID == "" {
			continue
		}
		if seen[l.ID] {
			errors = append(errors, &ValidationError{
				Field:   fmt.Sprintf("lines[%d].id", i),
				Tag:     "unique",
				Value:   l.ID,
				Message: fmt.Sprintf("duplicate line id %q", l.ID),
			})
		}
		seen[l.ID] = true
	}

	return errors
}

// validateTimezoneConfig validates the timezone configuration.
func validateTimezoneConfig(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Report.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Report.Timezone); err != nil {
			errors = append(errors, &ValidationError{
				Field:   "report.timezone",
				Tag:     "timezone",
				Value:   cfg.Report.Timezone,
				Message: fmt.Sprintf("invalid timezone: %s", cfg.Report.Timezone),
			})
		}
	}

	return errors
}

// fieldErrors converts validator errors into ValidationErrors.
// prefix replaces the root struct name when set.
func fieldErrors(err error, prefix string) ValidationErrors {
	var errors ValidationErrors

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors
	}
	for _, fe := range fieldErrs {
		field := formatFieldName(fe.Namespace())
		if prefix != "" {
			field = prefix + "." + field
		}
		errors = append(errors, &ValidationError{
			Field:   field,
			Tag:     fe.Tag(),
			Value:   fe.Value(),
			Message: translateError(fe),
		})
	}
	return errors
}

// formatFieldName converts the validator field namespace to a user-friendly format.
// Example: "Config.Broadcast.SendTimeout" -> "broadcast.sendtimeout"
func formatFieldName(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:] // Remove the root struct name
	}

	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}

	return strings.Join(parts, ".")
}

// translateError converts a validator.FieldError to a user-friendly message.
func translateError(fe validator.FieldError) string {
	field := formatFieldName(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "url":
		return fmt.Sprintf("invalid URL format: %v", fe.Value())
	case "gt":
		return fmt.Sprintf("value must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("value must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("value must be less than or equal to %s", fe.Param())
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "oneof":
		return fmt.Sprintf("value must be one of: %s", fe.Param())
	case "timezone":
		return fmt.Sprintf("invalid timezone: %v", fe.Value())
	default:
		return fmt.Sprintf("validation failed on '%s' tag for field '%s'", fe.Tag(), field)
	}
}
