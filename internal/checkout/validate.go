package checkout

import (
	"regexp"
	"strings"
	"time"

	"github.com/tikko-events/checkout-go/internal/domain"
)

const minAge = 18

var (
	nonDigitRe = regexp.MustCompile(`[^\d]`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

func stripNonDigits(s string) string {
	return nonDigitRe.ReplaceAllString(s, "")
}

// validateUserInfo checks the user-info step contract and returns nil when
// everything passes. All failing fields are reported together.
func validateUserInfo(u domain.UserData, idType domain.IdentificationType, now time.Time) *ValidationError {
	fields := make(map[string]string)

	if strings.TrimSpace(u.FullName) == "" {
		fields["full_name"] = "full name is required"
	}

	email := strings.TrimSpace(u.Email)
	switch {
	case email == "":
		fields["email"] = "email is required"
	case !emailRe.MatchString(email):
		fields["email"] = "email is not valid"
	case email != strings.TrimSpace(u.ConfirmEmail):
		fields["confirm_email"] = "emails do not match"
	}

	if err := validatePhone(u.Phone); err != "" {
		fields["phone"] = err
	} else if stripNonDigits(u.Phone) != stripNonDigits(u.ConfirmPhone) {
		fields["confirm_phone"] = "phone numbers do not match"
	}

	if err := validateIdentification(u.Identification, idType); err != "" {
		fields["identification"] = err
	}

	if err := validateBirthdate(u.Birthdate, now); err != "" {
		fields["birthdate"] = err
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// validatePhone requires an explicit country code. Brazilian numbers (+55)
// must carry exactly 11 digits after the country code; any other country code
// only needs a minimum overall length of 8 digits.
func validatePhone(phone string) string {
	trimmed := strings.TrimSpace(phone)
	if trimmed == "" {
		return "phone is required"
	}
	if !strings.HasPrefix(trimmed, "+") {
		return "phone must include a country code"
	}

	digits := stripNonDigits(trimmed)
	if strings.HasPrefix(digits, "55") {
		if len(digits) != 2+11 {
			return "brazilian phone must have 11 digits after +55"
		}
		return ""
	}

	if len(digits) < 8 {
		return "phone number is too short"
	}
	return ""
}

func validateIdentification(id string, idType domain.IdentificationType) string {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "identification is required"
	}

	if idType == domain.IdentificationCPF {
		if len(stripNonDigits(trimmed)) != 11 {
			return "cpf must have exactly 11 digits"
		}
		return ""
	}

	if len(trimmed) < 5 {
		return "identification is too short"
	}
	return ""
}

func validateBirthdate(birthdate string, now time.Time) string {
	trimmed := strings.TrimSpace(birthdate)
	if trimmed == "" {
		return "birthdate is required"
	}

	born, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return "birthdate must be YYYY-MM-DD"
	}

	if born.After(now.AddDate(-minAge, 0, 0)) {
		return "you must be at least 18 years old"
	}
	return ""
}
