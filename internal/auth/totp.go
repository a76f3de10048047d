package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// defaultOpts matches what most authenticator apps issue: 6 digits, 30s
// period, SHA1.
var defaultOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    6,
	Algorithm: otp.AlgorithmSHA1,
}

// GenerateTOTP derives the current one-time code from a shared secret.
// Used by login checks against targets that gate their UI behind 2FA.
func GenerateTOTP(secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("totp secret cannot be empty")
	}

	cleanSecret := strings.ToUpper(strings.ReplaceAll(secret, " ", ""))

	passcode, err := totp.GenerateCodeCustom(cleanSecret, time.Now().UTC(), defaultOpts)
	if err != nil {
		return "", fmt.Errorf("failed to generate totp code: %w", err)
	}

	return passcode, nil
}

// CheckSecret reports whether a shared secret can produce verifiable codes.
// Suite validation uses it so a malformed secret fails before the browser
// ever reaches a login form.
func CheckSecret(secret string) error {
	code, err := GenerateTOTP(secret)
	if err != nil {
		return err
	}
	valid, err := ValidateTOTP(code, secret)
	if err != nil {
		return err
	}
	if !valid {
		return fmt.Errorf("secret does not verify its own codes")
	}
	return nil
}

// ValidateTOTP checks a code against the shared secret, allowing one period
// of clock skew.
func ValidateTOTP(passcode, secret string) (bool, error) {
	if secret == "" {
		return false, fmt.Errorf("totp secret cannot be empty")
	}
	if passcode == "" {
		return false, fmt.Errorf("passcode cannot be empty")
	}

	cleanSecret := strings.ToUpper(strings.ReplaceAll(secret, " ", ""))

	valid, err := totp.ValidateCustom(passcode, cleanSecret, time.Now().UTC(), defaultOpts)
	if err != nil {
		return false, fmt.Errorf("failed to validate totp code: %w", err)
	}

	return valid, nil
}
