package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "JBSWY3DPEHPK3PXP"

func TestGenerateTOTP(t *testing.T) {
	code, err := GenerateTOTP(testSecret)
	require.NoError(t, err)
	assert.Len(t, code, 6)
}

func TestGenerateTOTP_EmptySecret(t *testing.T) {
	_, err := GenerateTOTP("")
	assert.Error(t, err)
}

func TestGenerateTOTP_NormalizesSecret(t *testing.T) {
	// Secrets are often presented lowercased and space-grouped.
	messy, err := GenerateTOTP("jbsw y3dp ehpk 3pxp")
	require.NoError(t, err)

	clean, err := GenerateTOTP(testSecret)
	require.NoError(t, err)

	assert.Equal(t, clean, messy)
}

func TestValidateTOTP_RoundTrip(t *testing.T) {
	code, err := GenerateTOTP(testSecret)
	require.NoError(t, err)

	valid, err := ValidateTOTP(code, testSecret)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestValidateTOTP_WrongCode(t *testing.T) {
	valid, err := ValidateTOTP("000000", testSecret)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestCheckSecret(t *testing.T) {
	assert.NoError(t, CheckSecret(testSecret))
	assert.NoError(t, CheckSecret("jbsw y3dp ehpk 3pxp"))
	assert.Error(t, CheckSecret(""))
	assert.Error(t, CheckSecret("not a secret !!!"))
}

func TestValidateTOTP_EmptyInputs(t *testing.T) {
	_, err := ValidateTOTP("", testSecret)
	assert.Error(t, err)

	_, err = ValidateTOTP("123456", "")
	assert.Error(t, err)
}
