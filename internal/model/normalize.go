package model

import "strings"

// NormalizeEmail normalizes an email address for identity comparison:
// trim leading/trailing whitespace, then lowercase. An empty result means
// "no email"; callers must not dedupe on it.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// EmailDomain returns the part after the last "@" of a normalized address,
// or "" when the address has no domain.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return email[at+1:]
}
