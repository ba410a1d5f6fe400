// Package validator implements the input rules for the admission workflow.
// Each function returns a map of field name to human-readable message; an
// empty map means the input passed. Handlers attach the map as the
// "details" of a 400 response.
package validator

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Bounds for application intake fields.
const (
	MinNameLen       = 3
	MinCompanyLen    = 2
	MinMotivationLen = 50
	MaxMotivationLen = 1000
)

// Application checks a membership application submission. All checks run so
// the caller receives every violation at once rather than only the first.
func Application(name, email, company, motivation string) map[string]string {
	problems := map[string]string{}
	if utf8.RuneCountInString(strings.TrimSpace(name)) < MinNameLen {
		problems["name"] = fmt.Sprintf("name must be at least %d characters", MinNameLen)
	}
	if !EmailValid(email) {
		problems["email"] = "invalid email"
	}
	if utf8.RuneCountInString(strings.TrimSpace(company)) < MinCompanyLen {
		problems["company"] = fmt.Sprintf("company must be at least %d characters", MinCompanyLen)
	}
	n := utf8.RuneCountInString(strings.TrimSpace(motivation))
	switch {
	case n < MinMotivationLen:
		problems["motivation"] = fmt.Sprintf("motivation must be at least %d characters", MinMotivationLen)
	case n > MaxMotivationLen:
		problems["motivation"] = fmt.Sprintf("motivation must be at most %d characters", MaxMotivationLen)
	}
	return problems
}

// EmailValid reports whether the address parses as a single RFC 5322
// address without a display name.
func EmailValid(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
