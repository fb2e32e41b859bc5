package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	CodeRequired          = "required"
	CodeTooShort          = "too_short"
	CodeTooLong           = "too_long"
	CodeInvalidCharacters = "invalid_characters"
	CodeNegative          = "negative"
)

// FieldError is a single validation failure for one form field.
type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string { return e.Message }

// FieldErrors collects failures keyed by field name. All validators run
// unconditionally so every field can surface its own error at once.
type FieldErrors map[string]FieldError

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e[f].Message))
	}
	return strings.Join(parts, "; ")
}

var planNamePattern = regexp.MustCompile(`^[A-Za-z0-9 _-]+$`)

func ValidatePlanName(name string) *FieldError {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return &FieldError{Code: CodeRequired, Message: "Plan name is required"}
	}
	if len(trimmed) < 3 {
		return &FieldError{Code: CodeTooShort, Message: "Plan name must be at least 3 characters"}
	}
	if len(trimmed) > 50 {
		return &FieldError{Code: CodeTooLong, Message: "Plan name must be at most 50 characters"}
	}
	if !planNamePattern.MatchString(trimmed) {
		return &FieldError{Code: CodeInvalidCharacters, Message: "Plan name contains invalid characters"}
	}
	return nil
}

func ValidateSubtitle(subtitle string) *FieldError {
	trimmed := strings.TrimSpace(subtitle)
	if trimmed == "" {
		return &FieldError{Code: CodeRequired, Message: "Subtitle is required"}
	}
	if len(trimmed) < 3 {
		return &FieldError{Code: CodeTooShort, Message: "Subtitle must be at least 3 characters"}
	}
	if len(trimmed) > 100 {
		return &FieldError{Code: CodeTooLong, Message: "Subtitle must be at most 100 characters"}
	}
	// Subtitles allow punctuation the name validator forbids; only markup
	// characters are blocked.
	if strings.ContainsAny(trimmed, "<>{}") {
		return &FieldError{Code: CodeInvalidCharacters, Message: "Subtitle contains invalid characters"}
	}
	return nil
}

func ValidateDescription(description string) *FieldError {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return &FieldError{Code: CodeRequired, Message: "Description is required"}
	}
	if len(trimmed) < 10 {
		return &FieldError{Code: CodeTooShort, Message: "Description must be at least 10 characters"}
	}
	if len(trimmed) > 500 {
		return &FieldError{Code: CodeTooLong, Message: "Description must be at most 500 characters"}
	}
	return nil
}

// ValidatePrice accepts zero. The message text predates the implemented
// boundary and is kept as-is.
func ValidatePrice(price float64) *FieldError {
	if price < 0 {
		return &FieldError{Code: CodeNegative, Message: "Price must be greater than 0"}
	}
	return nil
}

// ValidatePlanFields runs all five field validators and returns every
// failure. A nil map means the form is valid.
func ValidatePlanFields(name, subtitle, description string, monthlyPrice, annualPrice float64) FieldErrors {
	errs := FieldErrors{}
	if err := ValidatePlanName(name); err != nil {
		errs["name"] = *err
	}
	if err := ValidateSubtitle(subtitle); err != nil {
		errs["subtitle"] = *err
	}
	if err := ValidateDescription(description); err != nil {
		errs["description"] = *err
	}
	if err := ValidatePrice(monthlyPrice); err != nil {
		errs["monthlyPrice"] = *err
	}
	if err := ValidatePrice(annualPrice); err != nil {
		errs["annualPrice"] = *err
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
