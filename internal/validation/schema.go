package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ContactRequest is the contact form payload. The `website` field is the
// honeypot: hidden in the presenting UI, so humans leave it empty.
type ContactRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Service  string `json:"service"`
	Budget   string `json:"budget"`
	Timeline string `json:"timeline"`
	Message  string `json:"message"`
	Website  string `json:"website"`
}

// NewsletterRequest is the newsletter signup payload.
type NewsletterRequest struct {
	Email string `json:"email"`
}

// FieldError is a single violated rule, reported to the client as-is.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	nameRegex  = regexp.MustCompile(`^[a-zA-Zа-яА-Я\s]+$`)
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^[+]?[1-9]?[0-9]{7,15}$`)

	phoneStrip = strings.NewReplacer(" ", "", "(", "", ")", "", "-", "")
)

// ValidateContact checks the contact payload against the field rules, in
// declaration order, reporting only the first violated rule per field.
// The honeypot field is deliberately not a rule here; the anti-spam engine
// owns it so that bots get the same success response as everyone else.
func ValidateContact(req *ContactRequest) []FieldError {
	var errs []FieldError

	// Rune counts, not bytes: Cyrillic names are valid input.
	switch {
	case utf8.RuneCountInString(req.Name) < 2:
		errs = append(errs, FieldError{"name", "Name must be at least 2 characters"})
	case utf8.RuneCountInString(req.Name) > 50:
		errs = append(errs, FieldError{"name", "Name must be less than 50 characters"})
	case !nameRegex.MatchString(req.Name):
		errs = append(errs, FieldError{"name", "Name can only contain letters and spaces"})
	}

	if err := validateEmail(req.Email); err != nil {
		errs = append(errs, *err)
	}

	if req.Phone != "" && !phoneRegex.MatchString(phoneStrip.Replace(req.Phone)) {
		errs = append(errs, FieldError{"phone", "Please enter a valid phone number"})
	}

	if utf8.RuneCountInString(req.Company) > 100 {
		errs = append(errs, FieldError{"company", "Company name must be less than 100 characters"})
	}

	if req.Service == "" {
		errs = append(errs, FieldError{"service", "Please select a service"})
	}

	switch {
	case utf8.RuneCountInString(req.Message) < 10:
		errs = append(errs, FieldError{"message", "Message must be at least 10 characters"})
	case utf8.RuneCountInString(req.Message) > 1000:
		errs = append(errs, FieldError{"message", "Message must be less than 1000 characters"})
	}

	return errs
}

// ValidateNewsletter checks the newsletter payload.
func ValidateNewsletter(req *NewsletterRequest) []FieldError {
	if err := validateEmail(req.Email); err != nil {
		return []FieldError{*err}
	}
	return nil
}

func validateEmail(email string) *FieldError {
	switch {
	case !emailRegex.MatchString(email):
		return &FieldError{"email", "Please enter a valid email address"}
	case len(email) > 100:
		return &FieldError{"email", "Email must be less than 100 characters"}
	}
	return nil
}
