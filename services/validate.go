package services

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"tournament-platform/apperrors"
)

// normalizeIdentity trims and case-folds usernames and emails before storage and lookup.
// A Caser is stateful, so each call gets its own.
func normalizeIdentity(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func maxLen(s string, n int) bool {
	return utf8.RuneCountInString(s) <= n
}

func validateUsername(f *apperrors.FieldErrors, field, username string) {
	n := utf8.RuneCountInString(username)
	if n < 3 || n > 30 {
		f.Add(field, "username must have from 3 to 30 characters")
		return
	}
	for _, c := range username {
		if !(('a' <= c && c <= 'z') ||
			('A' <= c && c <= 'Z') ||
			('0' <= c && c <= '9') ||
			c == '_') {
			f.Add(field, "allowed characters in username: A-Z, a-z, 0-9, _")
			return
		}
	}
}

func validateEmail(f *apperrors.FieldErrors, field, email string, required bool) {
	if email == "" {
		f.Check(!required, field, "email is required")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		f.Add(field, "email format is invalid")
		return
	}
	f.Check(maxLen(email, 100), field, "email must be at most 100 characters")
}

func validatePassword(f *apperrors.FieldErrors, field, password string) {
	if utf8.RuneCountInString(password) < 8 {
		f.Add(field, "password must have at least 8 characters")
		return
	}
	var lower, upper, digit bool
	for _, c := range password {
		switch {
		case unicode.IsLower(c):
			lower = true
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsDigit(c):
			digit = true
		}
	}
	f.Check(lower && upper && digit, field, "password must contain an uppercase letter, a lowercase letter and a digit")
}

func validatePersonName(f *apperrors.FieldErrors, field, name string, required bool) {
	if name == "" {
		f.Check(!required, field, field+" is required")
		return
	}
	f.Check(maxLen(name, 50), field, field+" must be at most 50 characters")
	for _, c := range name {
		if !unicode.IsLetter(c) && c != ' ' {
			f.Add(field, field+" may only contain letters and spaces")
			return
		}
	}
}

func validatePhone(f *apperrors.FieldErrors, field, phone string) {
	if phone == "" {
		return
	}
	f.Check(maxLen(phone, 20), field, "phone must be at most 20 characters")
	for _, c := range phone {
		if !strings.ContainsRune("0123456789+- ()", c) {
			f.Add(field, "phone format is invalid")
			return
		}
	}
}
