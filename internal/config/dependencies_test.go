package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/apperr"
)

type sample struct {
	Name    string `json:"name" validate:"required"`
	Status  string `json:"status" validate:"omitempty,oneof=pending done"`
	Date    string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	Secret  string `json:"password" validate:"required"`
	Confirm string `json:"password_confirmation" validate:"eqfield=Secret"`
}

func TestValidateStructUsesJSONNames(t *testing.T) {
	err := ValidateStruct(sample{Status: "later", Date: "2025/01/01", Secret: "a", Confirm: "b"})
	require.Error(t, err)

	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "status")
	assert.Contains(t, verr.Fields, "start_date")
	assert.Equal(t, "the password confirmation does not match", verr.Fields["password_confirmation"])
	assert.NotContains(t, verr.Fields, "password")
}

func TestValidateStructPasses(t *testing.T) {
	assert.NoError(t, ValidateStruct(sample{Name: "x", Status: "done", Date: "2025-01-01", Secret: "a", Confirm: "a"}))
}
