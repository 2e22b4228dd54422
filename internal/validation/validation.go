// Package validation holds the pure form rules shared by request DTOs and page forms.
// Every helper returns a Result; none of them has side effects.
package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MinPasswordLength = 8
	MinPhoneDigits    = 10
	MaxPhoneDigits    = 15
	MinOTPLength      = 4
	MaxOTPLength      = 6
	MinNameLength     = 2
	MaxNameLength     = 100
	MaxAge            = 150
	AdultAge          = 18
	maxEmailLength    = 254
)

type Result struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

func result(errs []string) Result {
	if errs == nil {
		errs = []string{}
	}
	return Result{IsValid: len(errs) == 0, Errors: errs}
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return Phone(fl.Field().String()).IsValid
	})
	validate.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		return Password(fl.Field().String()).IsValid
	})
	validate.RegisterValidation("otp", func(fl validator.FieldLevel) bool {
		return OTP(fl.Field().String()).IsValid
	})
	validate.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
		return Name(fl.Field().String()).IsValid
	})
}

// Phone accepts 10 to 15 digits once formatting characters (space, dash, dot, parentheses and a
// leading plus) are stripped.
func Phone(s string) Result {
	s = strings.TrimSpace(s)
	if s == "" {
		return result([]string{"phone number is required"})
	}

	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		case r == '+' && i == 0:
		default:
			return result([]string{"phone number contains invalid characters"})
		}
	}

	if digits < MinPhoneDigits || digits > MaxPhoneDigits {
		return result([]string{fmt.Sprintf("phone number must have between %d and %d digits", MinPhoneDigits, MaxPhoneDigits)})
	}
	return result(nil)
}

// DigitsOnly strips everything but ASCII digits.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func Email(s string) Result {
	s = strings.TrimSpace(s)
	if s == "" {
		return result([]string{"email is required"})
	}
	if len(s) > maxEmailLength {
		return result([]string{"email is too long"})
	}
	if err := validate.Var(s, "email"); err != nil {
		return result([]string{"email must be a valid email address"})
	}
	return result(nil)
}

// Password requires length, upper, lower, digit and special character. All missing rules are
// reported, not only the first one.
func Password(s string) Result {
	var errs []string
	if utf8.RuneCountInString(s) < MinPasswordLength {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	if !upper {
		errs = append(errs, "password must contain an uppercase letter")
	}
	if !lower {
		errs = append(errs, "password must contain a lowercase letter")
	}
	if !digit {
		errs = append(errs, "password must contain a number")
	}
	if !special {
		errs = append(errs, "password must contain a special character")
	}
	return result(errs)
}

// PasswordRuleCount is the number of rules Password checks.
const PasswordRuleCount = 5

// PasswordStrength scores 0..PasswordRuleCount, one point per satisfied rule.
func PasswordStrength(s string) int {
	return PasswordRuleCount - len(Password(s).Errors)
}

func OTP(s string) Result {
	s = strings.TrimSpace(s)
	if s == "" {
		return result([]string{"verification code is required"})
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return result([]string{"verification code must contain digits only"})
		}
	}
	if len(s) < MinOTPLength || len(s) > MaxOTPLength {
		return result([]string{fmt.Sprintf("verification code must be %d to %d digits", MinOTPLength, MaxOTPLength)})
	}
	return result(nil)
}

// Name allows letters, spaces, hyphens and apostrophes.
func Name(s string) Result {
	s = strings.TrimSpace(s)
	if s == "" {
		return result([]string{"name is required"})
	}

	var errs []string
	n := utf8.RuneCountInString(s)
	if n < MinNameLength {
		errs = append(errs, fmt.Sprintf("name must be at least %d characters", MinNameLength))
	}
	if n > MaxNameLength {
		errs = append(errs, fmt.Sprintf("name must be at most %d characters", MaxNameLength))
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' && r != '\'' {
			errs = append(errs, "name can only contain letters, spaces, hyphens and apostrophes")
			break
		}
	}
	return result(errs)
}

// Age returns completed years between dob and now, by calendar date.
func Age(dob, now time.Time) int {
	by, bm, bd := dob.Date()
	ny, nm, nd := now.Date()
	age := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		age--
	}
	return age
}

// DateOfBirth checks 0 <= age <= 150. requireAdult adds the self-registration rule (age >= 18).
func DateOfBirth(dob, now time.Time, requireAdult bool) Result {
	if dob.IsZero() {
		return result([]string{"date of birth is required"})
	}
	if dob.After(now) {
		return result([]string{"date of birth cannot be in the future"})
	}

	age := Age(dob, now)
	if age < 0 || age > MaxAge {
		return result([]string{fmt.Sprintf("age must be between 0 and %d", MaxAge)})
	}
	if requireAdult && age < AdultAge {
		return result([]string{fmt.Sprintf("you must be at least %d years old", AdultAge)})
	}
	return result(nil)
}

// Struct runs the `validate` tags of a request DTO and formats field errors.
func Struct(v any) Result {
	err := validate.Struct(v)
	if err == nil {
		return result(nil)
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return result([]string{err.Error()})
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, formatFieldError(fe))
	}
	return result(msgs)
}

// Merge combines results, keeping error order.
func Merge(rs ...Result) Result {
	var errs []string
	for _, r := range rs {
		errs = append(errs, r.Errors...)
	}
	return result(errs)
}

func formatFieldError(fe validator.FieldError) string {
	field := fieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "phone":
		return fmt.Sprintf("%s must have between %d and %d digits", field, MinPhoneDigits, MaxPhoneDigits)
	case "password_strength":
		return fmt.Sprintf("%s must be at least %d characters and contain upper and lower case letters, a number and a special character", field, MinPasswordLength)
	case "otp":
		return fmt.Sprintf("%s must be %d to %d digits", field, MinOTPLength, MaxOTPLength)
	case "person_name":
		return fmt.Sprintf("%s can only contain letters, spaces, hyphens and apostrophes", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// fieldName turns "PhoneNumber" into "phone number".
func fieldName(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte(' ')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
