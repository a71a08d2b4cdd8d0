package validation

import (
	"strings"

	"sparkchat/pkg/models"
)

// Validators reject records with missing required fields before anything is
// persisted; partial documents must never reach the store.

// Error marks a record that failed validation. Handlers map it to a 400
// response; anything else is a server error.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func ValidateUser(u models.User) error {
	var errs []string
	if strings.TrimSpace(u.Identity) == "" {
		errs = append(errs, "identity is required")
	}
	if u.CredentialHash == "" {
		errs = append(errs, "credential is required")
	}
	switch u.Privacy {
	case "", models.PrivacyEveryone, models.PrivacyContacts, models.PrivacyNobody:
	default:
		errs = append(errs, "invalid privacy setting")
	}
	return join(errs)
}

func ValidateMessage(m models.Message) error {
	var errs []string
	if m.Sender == "" {
		errs = append(errs, "sender is required")
	}
	if m.Receiver == "" {
		errs = append(errs, "receiver is required")
	}
	if m.Text == "" && m.File == "" {
		errs = append(errs, "text or file is required")
	}
	return join(errs)
}

func ValidateStatus(s models.Status) error {
	var errs []string
	if s.Author == "" {
		errs = append(errs, "author is required")
	}
	if s.Text == "" && s.File == "" {
		errs = append(errs, "text or file is required")
	}
	return join(errs)
}

func ValidateGroup(g models.Group) error {
	var errs []string
	if strings.TrimSpace(g.Name) == "" {
		errs = append(errs, "name is required")
	}
	if len(g.Members) == 0 {
		errs = append(errs, "at least one member is required")
	}
	for _, m := range g.Members {
		if strings.TrimSpace(m) == "" {
			errs = append(errs, "empty member identity")
			break
		}
	}
	return join(errs)
}

func join(errs []string) error {
	if len(errs) > 0 {
		return &Error{msg: strings.Join(errs, "; ")}
	}
	return nil
}
