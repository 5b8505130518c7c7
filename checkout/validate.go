package checkout

import (
	"fmt"
	"regexp"

	"github.com/mmaaza/surgical-mart-sub001/apperrors"
	"github.com/mmaaza/surgical-mart-sub001/models"
	"github.com/mmaaza/surgical-mart-sub001/validation"
)

// shippingValidator enforces the Shipping → Payment guard: all mandatory
// fields present, a well-formed email, and a phone in the national format
// +<country-code> followed by exactly ten digits. The field rules live in
// the shared validation package; only the phone format is checkout policy.
type shippingValidator struct {
	countryCode  string
	phonePattern *regexp.Regexp
}

func newShippingValidator(countryCode string) *shippingValidator {
	if countryCode == "" {
		countryCode = "977"
	}
	return &shippingValidator{
		countryCode:  countryCode,
		phonePattern: regexp.MustCompile(`^\+` + regexp.QuoteMeta(countryCode) + `\d{10}$`),
	}
}

func (v *shippingValidator) validate(details models.ShippingDetails) []apperrors.FieldViolation {
	violations := validation.Struct(details)

	if details.Email != "" && !validation.ValidEmail(details.Email) {
		violations = validation.AppendUnique(violations, validation.InvalidEmail())
	}
	if details.Phone != "" && !v.phonePattern.MatchString(details.Phone) {
		violations = validation.AppendUnique(violations, apperrors.FieldViolation{
			Field: "phone", Rule: "format",
			Message: fmt.Sprintf("phone must be +%s followed by 10 digits", v.countryCode),
		})
	}

	return violations
}
