// internal/models/user_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campolink/campolink-backend/internal/utils"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	var u User
	require.NoError(t, u.SetPassword("CafeFuerte9!"))

	assert.NotEqual(t, "CafeFuerte9!", u.PasswordHash)
	assert.NoError(t, u.CheckPassword("CafeFuerte9!"))
	assert.Error(t, u.CheckPassword("otra-clave"))
}

func TestVerificationCodeRoundTrip(t *testing.T) {
	code, err := utils.GenerateVerificationCode()
	require.NoError(t, err)
	require.Len(t, code, 32)

	var u User
	u.SetVerificationCode(code)

	assert.NotEqual(t, code, u.VerificationCodeHash)
	assert.True(t, u.CheckVerificationCode(code))
	assert.False(t, u.CheckVerificationCode("codigo-equivocado"))
}

func TestCheckVerificationCodeWithoutStoredHash(t *testing.T) {
	var u User
	assert.False(t, u.CheckVerificationCode(""))
	assert.False(t, u.CheckVerificationCode("cualquiera"))
}
