package core

import (
	"net/mail"
	"strings"
)

const (
	DefaultNickname = "Meloon user"
	DefaultLanguage = "zh-CN"

	minPasswordLen = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLen = 72
	maxLanguageLen = 10
)

// User is a registered ledger owner; its ID is the owner id of every row
// the user records.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Nickname     string
	Language     string
}

type (
	Registration struct {
		Email    string
		Password string
		Nickname string
		Language string
	}

	Credentials struct {
		Email    string
		Password string
	}
)

// ErrBadCredentials never says whether the email or the password was wrong.
var ErrBadCredentials = &Error{Kind: KindUnauthenticated, Op: "login", Msg: "invalid email or password"}

// NormalizeEmail lower-cases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validateEmail(op, email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || len(email) > maxTextLen {
		return Validation(op, "invalid email %q", email)
	}
	return nil
}

// Validate expects a normalized email.
func (r Registration) Validate() error {
	if err := validateEmail("register", r.Email); err != nil {
		return err
	}
	if n := len(r.Password); n < minPasswordLen || n > maxPasswordLen {
		return Validation("register", "password must be %d to %d bytes", minPasswordLen, maxPasswordLen)
	}
	if len(r.Language) > maxLanguageLen {
		return Validation("register", "language tag too long")
	}
	return validateText(r.Nickname)
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return Validation("login", "email and password are required")
	}
	return nil
}
