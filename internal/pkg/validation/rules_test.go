package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrongPassword(t *testing.T) {
	assert.True(t, StrongPassword("lovelace1815"))
	assert.False(t, StrongPassword("short1"))
	assert.False(t, StrongPassword("lettersonly"))
	assert.False(t, StrongPassword("1234567890"))
}

type sample struct {
	Password string `json:"password" validate:"password"`
	Currency string `json:"currency" validate:"omitempty,currency"`
	Title    string `json:"title" validate:"notblank"`
}

func TestRegisteredRules(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	assert.NoError(t, v.Struct(sample{Password: "abc12345", Currency: "usd", Title: "Reunion"}))
	assert.NoError(t, v.Struct(sample{Password: "abc12345", Title: "Reunion"}))

	err := v.Struct(sample{Password: "abcdefgh", Currency: "EURO", Title: "  "})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	fields := map[string]string{}
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	assert.Equal(t, map[string]string{"password": "password", "currency": "currency", "title": "notblank"}, fields)
}
