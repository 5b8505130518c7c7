// Package validation holds the field-validation rules shared by the
// checkout shipping guard and the pre-submission order check. Both consume
// the same struct tags, email pattern, and violation mapping from here so
// the two checks cannot drift apart.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmaaza/surgical-mart-sub001/apperrors"
)

var structValidator = validator.New()

// The validator's email tag is looser than the address pattern the
// marketplace accepts; callers check this pattern explicitly.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail reports whether addr is an acceptable email address.
func ValidEmail(addr string) bool {
	return emailPattern.MatchString(addr)
}

// InvalidEmail is the violation reported for a malformed email address.
func InvalidEmail() apperrors.FieldViolation {
	return apperrors.FieldViolation{
		Field: "email", Rule: "email", Message: "email address is not valid",
	}
}

// Struct runs tag validation on v and maps every failure onto a field
// violation. A nil return means all tags passed.
func Struct(v interface{}) []apperrors.FieldViolation {
	err := structValidator.Struct(v)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []apperrors.FieldViolation{{
			Field: "struct", Rule: "struct", Message: err.Error(),
		}}
	}

	violations := make([]apperrors.FieldViolation, 0, len(errs))
	for _, fe := range errs {
		violations = append(violations, violation(fe))
	}
	return violations
}

func violation(fe validator.FieldError) apperrors.FieldViolation {
	field := strings.ToLower(fe.Field())
	if field == "fullname" {
		field = "full_name"
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = field + " is required"
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "email":
		msg = "email address is not valid"
	default:
		msg = field + " is invalid"
	}
	return apperrors.FieldViolation{Field: field, Rule: fe.Tag(), Message: msg}
}

// AppendUnique adds v unless a violation with the same field and rule is
// already present.
func AppendUnique(violations []apperrors.FieldViolation, v apperrors.FieldViolation) []apperrors.FieldViolation {
	for _, existing := range violations {
		if existing.Field == v.Field && existing.Rule == v.Rule {
			return violations
		}
	}
	return append(violations, v)
}
