package validation

import (
	"reflect"
	"strings"
	"testing"
)

func validContact() *ContactRequest {
	return &ContactRequest{
		Name:    "Ana Petrova",
		Email:   "ana@example.com",
		Service: "marketing",
		Message: "I would like to discuss a project with your team.",
	}
}

func fieldErrorFor(t *testing.T, errs []FieldError, field string) *FieldError {
	t.Helper()
	for i := range errs {
		if errs[i].Field == field {
			return &errs[i]
		}
	}
	return nil
}

func TestValidateContactAcceptsValidPayload(t *testing.T) {
	if errs := ValidateContact(validContact()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateContactNameRules(t *testing.T) {
	cases := []struct {
		name    string
		value   string
		message string
	}{
		{"too short", "A", "Name must be at least 2 characters"},
		{"too long", strings.Repeat("a", 51), "Name must be less than 50 characters"},
		{"digits", "Ana2", "Name can only contain letters and spaces"},
		{"symbols", "Ana!", "Name can only contain letters and spaces"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validContact()
			req.Name = tc.value
			errs := ValidateContact(req)
			fe := fieldErrorFor(t, errs, "name")
			if fe == nil {
				t.Fatalf("expected name error, got %v", errs)
			}
			if fe.Message != tc.message {
				t.Fatalf("expected %q, got %q", tc.message, fe.Message)
			}
		})
	}
}

func TestValidateContactAcceptsCyrillicName(t *testing.T) {
	req := validContact()
	req.Name = "Анна Петрова"
	if errs := ValidateContact(req); len(errs) != 0 {
		t.Fatalf("expected no errors for Cyrillic name, got %v", errs)
	}
}

func TestValidateContactShortCircuitsPerField(t *testing.T) {
	// A one-char digit name violates both the length and character rules;
	// only the first declared rule may be reported.
	req := validContact()
	req.Name = "7"
	errs := ValidateContact(req)

	count := 0
	for _, e := range errs {
		if e.Field == "name" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected one name error, got %d (%v)", count, errs)
	}
	if errs[0].Message != "Name must be at least 2 characters" {
		t.Fatalf("expected the length rule first, got %q", errs[0].Message)
	}
}

func TestValidateContactEmailRules(t *testing.T) {
	req := validContact()
	req.Email = "not-an-email"
	if fe := fieldErrorFor(t, ValidateContact(req), "email"); fe == nil {
		t.Fatal("expected email error for invalid shape")
	}

	req = validContact()
	req.Email = strings.Repeat("a", 95) + "@example.com"
	fe := fieldErrorFor(t, ValidateContact(req), "email")
	if fe == nil {
		t.Fatal("expected email error for overlong address")
	}
	if fe.Message != "Email must be less than 100 characters" {
		t.Fatalf("expected length message, got %q", fe.Message)
	}
}

func TestValidateContactPhoneOptional(t *testing.T) {
	req := validContact()
	req.Phone = ""
	if fe := fieldErrorFor(t, ValidateContact(req), "phone"); fe != nil {
		t.Fatalf("expected no phone error when absent, got %v", fe)
	}

	// Separators are stripped before matching.
	req.Phone = "+7 (912) 345-67-89"
	if fe := fieldErrorFor(t, ValidateContact(req), "phone"); fe != nil {
		t.Fatalf("expected formatted number to pass, got %v", fe)
	}

	req.Phone = "12"
	if fe := fieldErrorFor(t, ValidateContact(req), "phone"); fe == nil {
		t.Fatal("expected phone error for too-short number")
	}
}

func TestValidateContactServiceRequired(t *testing.T) {
	req := validContact()
	req.Service = ""
	fe := fieldErrorFor(t, ValidateContact(req), "service")
	if fe == nil {
		t.Fatal("expected service error")
	}
	if fe.Message != "Please select a service" {
		t.Fatalf("unexpected message %q", fe.Message)
	}
}

func TestValidateContactMessageRules(t *testing.T) {
	req := validContact()
	req.Message = "short"
	fe := fieldErrorFor(t, ValidateContact(req), "message")
	if fe == nil {
		t.Fatal("expected message error")
	}
	if fe.Message != "Message must be at least 10 characters" {
		t.Fatalf("unexpected message %q", fe.Message)
	}

	req.Message = strings.Repeat("a", 1001)
	fe = fieldErrorFor(t, ValidateContact(req), "message")
	if fe == nil || fe.Message != "Message must be less than 1000 characters" {
		t.Fatalf("expected max-length error, got %v", fe)
	}
}

func TestValidateContactCompanyOptional(t *testing.T) {
	req := validContact()
	req.Company = strings.Repeat("c", 101)
	if fe := fieldErrorFor(t, ValidateContact(req), "company"); fe == nil {
		t.Fatal("expected company error for overlong name")
	}
}

func TestValidateContactHoneypotNotASchemaRule(t *testing.T) {
	// A filled honeypot belongs to the spam gate, not the validator, so
	// bots cannot learn from a field error.
	req := validContact()
	req.Website = "https://spam.example"
	if errs := ValidateContact(req); len(errs) != 0 {
		t.Fatalf("expected honeypot to pass schema validation, got %v", errs)
	}
}

func TestValidateContactErrorsInDeclarationOrder(t *testing.T) {
	req := &ContactRequest{Name: "A", Email: "bad", Service: "", Message: "short"}
	errs := ValidateContact(req)

	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	want := []string{"name", "email", "service", "message"}
	if !reflect.DeepEqual(fields, want) {
		t.Fatalf("expected order %v, got %v", want, fields)
	}
}

func TestValidateContactIsPure(t *testing.T) {
	req := validContact()
	before := *req
	_ = ValidateContact(req)
	first := ValidateContact(req)
	second := ValidateContact(req)

	if *req != before {
		t.Fatal("validator mutated its input")
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated validation disagreed: %v vs %v", first, second)
	}
}

func TestValidateNewsletter(t *testing.T) {
	if errs := ValidateNewsletter(&NewsletterRequest{Email: "a@a.com"}); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}

	errs := ValidateNewsletter(&NewsletterRequest{Email: "nope"})
	if len(errs) != 1 || errs[0].Field != "email" {
		t.Fatalf("expected one email error, got %v", errs)
	}
}
