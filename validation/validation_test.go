package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmaaza/surgical-mart-sub001/apperrors"
	"github.com/mmaaza/surgical-mart-sub001/models"
	"github.com/mmaaza/surgical-mart-sub001/validation"
)

func TestValidEmail(t *testing.T) {
	assert.True(t, validation.ValidEmail("asha@example.com"))
	assert.False(t, validation.ValidEmail("asha@@example"))
	assert.False(t, validation.ValidEmail("asha@nodot"))
	assert.False(t, validation.ValidEmail("with space@example.com"))
}

func TestStruct_MapsViolationsToWireFieldNames(t *testing.T) {
	violations := validation.Struct(models.ShippingDetails{
		FullName: "A",
		Email:    "asha@example.com",
		Phone:    "+9779812345678",
		Address:  "12 Durbar Marg, near the clock tower",
		City:     "Kathmandu",
		Province: "Bagmati",
	})

	require.Len(t, violations, 1)
	assert.Equal(t, "full_name", violations[0].Field)
	assert.Equal(t, "min", violations[0].Rule)
	assert.Contains(t, violations[0].Message, "at least 2")
}

func TestStruct_NilForValidInput(t *testing.T) {
	assert.Nil(t, validation.Struct(models.ShippingDetails{
		FullName: "Asha Shrestha",
		Email:    "asha@example.com",
		Phone:    "+9779812345678",
		Address:  "12 Durbar Marg, near the clock tower",
		City:     "Kathmandu",
		Province: "Bagmati",
	}))
}

func TestAppendUnique_DeduplicatesByFieldAndRule(t *testing.T) {
	base := []apperrors.FieldViolation{validation.InvalidEmail()}

	same := validation.AppendUnique(base, validation.InvalidEmail())
	assert.Len(t, same, 1)

	grown := validation.AppendUnique(base, apperrors.FieldViolation{
		Field: "email", Rule: "required", Message: "email is required",
	})
	assert.Len(t, grown, 2)
}
