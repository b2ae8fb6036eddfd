// Package validation rejects malformed input locally, before any network
// call is made.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/dogmatch/internal/models"
	"github.com/patric-chuzhbe/dogmatch/internal/user"
)

// ErrInvalid is matched by every error this package returns.
var ErrInvalid = errors.New("invalid input")

// Error describes one rejected field.
type Error struct {
	Field   string
	Message string
}

// Error renders the field and the message.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes every *Error match ErrInvalid.
func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

var zipCodePattern = regexp.MustCompile(`^\d{5}$`)

var validate = validator.New()

// Login checks the login form. Both fields are trimmed before checking.
func Login(name, email string) (*user.User, error) {
	usr := &user.User{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
	}

	err := validate.Struct(usr)
	if err == nil {
		return usr, nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return nil, err
	}

	first := fieldErrors[0]
	field := strings.ToLower(first.Field())
	switch first.Tag() {
	case "required":
		return nil, &Error{Field: field, Message: "is required"}
	case "email":
		return nil, &Error{Field: field, Message: "must be a valid email address"}
	}

	return nil, &Error{Field: field, Message: "failed " + first.Tag() + " check"}
}

// ZipCode accepts exactly five digits.
func ZipCode(zip string) error {
	if !zipCodePattern.MatchString(zip) {
		return &Error{Field: "zipCode", Message: fmt.Sprintf("%q is not a 5-digit zip code", zip)}
	}

	return nil
}

// AgeRange checks optional bounds. Either may be nil.
func AgeRange(minAge, maxAge *int) error {
	if minAge != nil && *minAge < 0 {
		return &Error{Field: "ageMin", Message: "must not be negative"}
	}
	if maxAge != nil && *maxAge < 0 {
		return &Error{Field: "ageMax", Message: "must not be negative"}
	}
	if minAge != nil && maxAge != nil && *minAge > *maxAge {
		return &Error{Field: "ageMin", Message: "must not exceed ageMax"}
	}

	return nil
}

// Sort parses "<field>:<order>". An empty value yields the default sort.
func Sort(raw string) (models.Sort, error) {
	sort, err := models.ParseSort(raw)
	if err != nil {
		return models.Sort{}, &Error{Field: "sort", Message: err.Error()}
	}

	return sort, nil
}
