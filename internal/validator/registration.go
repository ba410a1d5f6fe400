package validator

import (
	"net/url"
	"strings"
	"unicode"
)

// MinPasswordLen is the minimum accepted password length.
const MinPasswordLen = 8

// Password checks the password complexity policy: length >= 8 and at least
// one uppercase letter, one lowercase letter, one digit and one character
// that is none of those. It returns an empty string when the password
// passes, otherwise the message describing the first missing requirement.
func Password(pw string) string {
	if len(pw) < MinPasswordLen {
		return "password must be at least 8 characters"
	}
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	switch {
	case !upper:
		return "password must contain at least one uppercase letter"
	case !lower:
		return "password must contain at least one lowercase letter"
	case !digit:
		return "password must contain at least one digit"
	case !special:
		return "password must contain at least one special character"
	}
	return ""
}

// RegistrationProfile checks the optional profile fields supplied at
// registration. Empty strings are treated as absent. Only URLs are
// validated; the remaining fields are free-form text.
func RegistrationProfile(linkedinURL, websiteURL string) map[string]string {
	problems := map[string]string{}
	if !urlValidOrEmpty(linkedinURL) {
		problems["linkedin_url"] = "invalid url"
	}
	if !urlValidOrEmpty(websiteURL) {
		problems["website_url"] = "invalid url"
	}
	return problems
}

func urlValidOrEmpty(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
