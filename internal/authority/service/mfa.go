package service

import (
	"github.com/pquerna/otp/totp"
)

// validTOTP checks a one-time code against an account's enrollment secret.
func validTOTP(code, secret string) bool {
	return totp.Validate(code, secret)
}

// EnrollTOTP generates a fresh TOTP enrollment for a local account and
// returns the shared secret plus the otpauth provisioning URL for
// authenticator apps.
func EnrollTOTP(issuer, accountName string) (secret, url string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}
