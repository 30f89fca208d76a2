package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// E.164 with optional leading plus.
var phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)

// RequiredString validates that a string is not empty after trimming whitespace.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{
			Field:             field,
			Message:           "field is required",
			TranslationKey:    "validation.required",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// MaxLenString validates the rune length of value.
func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at most %d characters long", max),
			TranslationKey:    "validation.max_length",
			TranslationValues: map[string]any{"field": field, "max": max},
		},
	}
}

func NonNegativeAmount[T Numeric](field string, value T) Rule {
	return Rule{
		Check: func() bool { return value >= 0 },
		Error: ValidationError{
			Field:             field,
			Message:           "amount cannot be negative",
			TranslationKey:    "validation.non_negative_amount",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// InRange validates min <= value <= max.
func InRange[T Numeric](field string, value, min, max T) Rule {
	return Rule{
		Check: func() bool { return value >= min && value <= max },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be between %v and %v", min, max),
			TranslationKey:    "validation.range",
			TranslationValues: map[string]any{"field": field, "min": min, "max": max},
		},
	}
}

func InList[T comparable](field string, value T, allowed []T) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(allowed, value) },
		Error: ValidationError{
			Field:             field,
			Message:           "must be one of the allowed values",
			TranslationKey:    "validation.in_list",
			TranslationValues: map[string]any{"field": field, "allowed": allowed},
		},
	}
}

// ValidEmail validates a bare address such as "user@example.com".
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			addr, err := mail.ParseAddress(strings.TrimSpace(value))
			if err != nil || addr.Address != strings.TrimSpace(value) {
				return false
			}
			at := strings.LastIndex(addr.Address, "@")
			domain := addr.Address[at+1:]
			return at > 0 && strings.Contains(domain, ".") &&
				!strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
		},
		Error: ValidationError{
			Field:             field,
			Message:           "must be a valid email address",
			TranslationKey:    "validation.email",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// ValidPhone validates an international (E.164) phone number. Spaces and
// dashes are ignored.
func ValidPhone(field, value string) Rule {
	return Rule{
		Check: func() bool {
			cleaned := strings.NewReplacer(" ", "", "-", "").Replace(value)
			return phoneRegex.MatchString(cleaned)
		},
		Error: ValidationError{
			Field:             field,
			Message:           "must be a valid phone number in international format",
			TranslationKey:    "validation.phone",
			TranslationValues: map[string]any{"field": field},
		},
	}
}
