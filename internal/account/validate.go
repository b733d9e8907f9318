package account

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/model"
)

// Symbols is the set of characters that satisfy the password symbol rule.
const Symbols = `!@#$%^&*()_+-=[]{}|;:'",.<>/?\~`

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 6

// Age and height bounds, inclusive. Height is in inches.
const (
	MinAge    = 18
	MaxAge    = 100
	MinHeight = 36
	MaxHeight = 96
)

const (
	msgPassword = "Password not valid"
	msgAge      = "Enter a number between 18 and 100"
	msgHeight   = "Enter a number between 36 and 96"
)

// PasswordCheck reports each password rule separately so a form can show
// them live.
type PasswordCheck struct {
	Length  bool // at least MinPasswordLength characters
	CaseMix bool // an upper and a lower case letter
	Digit   bool
	Symbol  bool // a character from Symbols
	Match   bool // equals the confirmation
}

// OK reports whether every rule holds.
func (c PasswordCheck) OK() bool {
	return c.Length && c.CaseMix && c.Digit && c.Symbol && c.Match
}

// CheckPassword evaluates password and its confirmation against every rule.
func CheckPassword(password, confirm string) PasswordCheck {
	var upper, lower bool
	c := PasswordCheck{
		Length: len([]rune(password)) >= MinPasswordLength,
		Match:  password == confirm,
	}
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			c.Digit = true
		}
		if strings.ContainsRune(Symbols, r) {
			c.Symbol = true
		}
	}
	c.CaseMix = upper && lower
	return c
}

// ValidateAge parses an age field.
func ValidateAge(input string) (int, error) {
	return parseBounded(input, MinAge, MaxAge, "age", msgAge)
}

// ValidateHeight parses a height field, in inches.
func ValidateHeight(input string) (int, error) {
	return parseBounded(input, MinHeight, MaxHeight, "height", msgHeight)
}

func parseBounded(input string, lo, hi int, field, msg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < lo || n > hi {
		return 0, apperror.ValidationFailed(field, msg)
	}
	return n, nil
}

// SignUpForm is the raw sign-up input. Age and Height are text as typed.
type SignUpForm struct {
	Username string
	Email    string
	Password string
	Confirm  string
	Gender   string
	Age      string
	Height   string
}

// Registration is a validated sign-up.
type Registration struct {
	Username string
	Email    string
	Password string
	Gender   string
	Age      int
	Height   int
}

// Validate checks every field locally. All failures are returned together,
// joined with errors.Join; apperror.Fields maps them back to fields.
func (f SignUpForm) Validate() (Registration, error) {
	var errs []error
	reg := Registration{
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		Gender:   f.Gender,
	}

	if reg.Username == "" {
		errs = append(errs, apperror.ValidationFailed("username", "Enter a username"))
	}
	if !validEmail(reg.Email) {
		errs = append(errs, apperror.ValidationFailed("email", "Enter a valid email address"))
	}
	if !CheckPassword(f.Password, f.Confirm).OK() {
		errs = append(errs, apperror.ValidationFailed("password", msgPassword))
	}
	if !model.IsValidGender(reg.Gender) {
		errs = append(errs, apperror.ValidationFailed("gender", "Select Male, Female or Other"))
	}

	var err error
	if reg.Age, err = ValidateAge(f.Age); err != nil {
		errs = append(errs, err)
	}
	if reg.Height, err = ValidateHeight(f.Height); err != nil {
		errs = append(errs, err)
	}
	return reg, errors.Join(errs...)
}

func validEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t")
}
