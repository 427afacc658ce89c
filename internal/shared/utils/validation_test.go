package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizhub/internal/shared/errors"
)

func TestIsValidSubdomain(t *testing.T) {
	for _, ok := range []string{"acme", "beta-2", "a"} {
		assert.True(t, IsValidSubdomain(ok), ok)
	}
	for _, bad := range []string{"", "Acme", "-acme", "acme-", "ac.me", "ac_me"} {
		assert.False(t, IsValidSubdomain(bad), bad)
	}
}

func TestIsValidDatabaseName(t *testing.T) {
	assert.True(t, IsValidDatabaseName("tenant_acme"))
	assert.False(t, IsValidDatabaseName("tenant-acme"))
	assert.False(t, IsValidDatabaseName("acme`; DROP DATABASE x"))
}

func TestValidateStruct(t *testing.T) {
	type input struct {
		Name      string `json:"name" validate:"required,max=10"`
		Subdomain string `json:"subdomain" validate:"required,subdomain"`
		Database  string `json:"database_name" validate:"dbname"`
	}

	require.NoError(t, ValidateStruct(input{Name: "Acme", Subdomain: "acme"}))

	err := ValidateStruct(input{Name: "", Subdomain: "ACME", Database: "bad-name"})
	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeValidation, appErr.ErrCode)
	assert.Contains(t, appErr.Details, "name is required")
	assert.Contains(t, appErr.Details, "subdomain must be a lower-case DNS label")
	assert.Contains(t, appErr.Details, "database_name may only contain")
}
