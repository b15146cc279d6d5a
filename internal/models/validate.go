package models

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ValidationError reports the first invalid field of a payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MaxNameLength     = 50
	MinPasswordLength = 6
)

// Normalize trims the text fields and lowercases the email.
func (p *ProfileUpdate) Normalize() {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
}

// Validate expects a normalized profile.
func (p *ProfileUpdate) Validate() error {
	if n := utf8.RuneCountInString(p.Username); n < MinUsernameLength || n > MaxUsernameLength {
		return invalid("username", "Username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength)
	}
	if !emailPattern.MatchString(p.Email) {
		return invalid("email", "Please enter a valid email")
	}
	if p.FirstName == "" {
		return invalid("firstName", "First name is required")
	}
	if utf8.RuneCountInString(p.FirstName) > MaxNameLength {
		return invalid("firstName", "First name must be at most %d characters", MaxNameLength)
	}
	if p.LastName == "" {
		return invalid("lastName", "Last name is required")
	}
	if utf8.RuneCountInString(p.LastName) > MaxNameLength {
		return invalid("lastName", "Last name must be at most %d characters", MaxNameLength)
	}
	if !p.Role.Valid() {
		return invalid("role", "Role must be one of admin, analyst, viewer")
	}
	return nil
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return invalid("password", "Password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// Normalize trims description and tags, dropping empty tags, and fills
// the default profile URL.
func (t *Transaction) Normalize() {
	t.UserID = strings.TrimSpace(t.UserID)
	t.Description = strings.TrimSpace(t.Description)
	tags := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	t.Tags = tags
	if strings.TrimSpace(t.UserProfile) == "" {
		t.UserProfile = DefaultUserProfile
	}
}

// Validate checks a transaction submitted through the API, which must
// carry a positive amount.
func (t *Transaction) Validate() error {
	if t.Amount <= 0 {
		return invalid("amount", "Amount must be greater than 0")
	}
	return t.validateFields()
}

// ValidateStored checks a transaction as it may exist in the collection,
// e.g. rows being imported. Zero amounts are allowed there.
func (t *Transaction) ValidateStored() error {
	if t.Amount < 0 {
		return invalid("amount", "Amount cannot be negative")
	}
	return t.validateFields()
}

func (t *Transaction) validateFields() error {
	if !t.Category.Valid() {
		return invalid("category", "Category must be Revenue or Expense")
	}
	if !t.Status.Valid() {
		return invalid("status", "Status must be Paid, Pending or Failed")
	}
	if t.UserID == "" {
		return invalid("user_id", "user_id is required")
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return invalid("description", "Description must be at most %d characters", MaxDescriptionLength)
	}
	return nil
}
