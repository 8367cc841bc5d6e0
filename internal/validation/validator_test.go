package validation

import (
	"testing"

	domainerrors "github.com/habitloop/habitloop-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Recurrence string `json:"recurrence" validate:"oneof=daily weekly"`
	Date       string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func TestValidate_Passes(t *testing.T) {
	v := New()

	err := v.Validate(sample{
		Name:       "Morning run",
		Email:      "runner@example.com",
		Recurrence: "daily",
		Date:       "2026-03-12",
	})
	assert.NoError(t, err)
}

func TestValidate_CollectsFieldErrors(t *testing.T) {
	v := New()

	err := v.Validate(sample{Recurrence: "hourly", Date: "12/03/2026"})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "is required", details["email"])
	assert.Equal(t, "must be one of: daily weekly", details["recurrence"])
	assert.Equal(t, "must be a date in the form 2006-01-02", details["date"])
}
