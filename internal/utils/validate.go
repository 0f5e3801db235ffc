package utils

import (
	"errors"
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

var (
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrEmailDomainDenied = errors.New("email domain is not allowed")
)

// ValidateEmail checks the address format and, when a non-empty allow-list
// is supplied, that the domain is one of the permitted company domains.
// Matching is case-insensitive.
func ValidateEmail(email string, allowedDomains []string) error {
	email = strings.TrimSpace(email)
	if !emailRe.MatchString(email) {
		return ErrInvalidEmail
	}
	if len(allowedDomains) == 0 {
		return nil
	}
	domain := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
	for _, d := range allowedDomains {
		if strings.ToLower(strings.TrimSpace(d)) == domain {
			return nil
		}
	}
	return ErrEmailDomainDenied
}
