package validation

import (
	"errors"
	"testing"

	"sparkchat/pkg/models"
)

func TestValidators(t *testing.T) {
	t.Run("UserRequiredFields", func(t *testing.T) {
		err := ValidateUser(models.User{})
		if err == nil {
			t.Fatalf("expected error for empty user")
		}
		var verr *Error
		if !errors.As(err, &verr) {
			t.Fatalf("expected *Error, got %T", err)
		}
		if ValidateUser(models.User{Identity: "alice", CredentialHash: "h"}) != nil {
			t.Fatalf("minimal valid user rejected")
		}
	})

	t.Run("UserPrivacyEnum", func(t *testing.T) {
		u := models.User{Identity: "alice", CredentialHash: "h", Privacy: "friends-of-friends"}
		if ValidateUser(u) == nil {
			t.Fatalf("unknown privacy value accepted")
		}
		u.Privacy = models.PrivacyContacts
		if err := ValidateUser(u); err != nil {
			t.Fatalf("valid privacy rejected: %v", err)
		}
	})

	t.Run("MessageNeedsContent", func(t *testing.T) {
		m := models.Message{Sender: "a", Receiver: "b"}
		if ValidateMessage(m) == nil {
			t.Fatalf("message without text or file accepted")
		}
		m.File = "/uploads/x.jpg"
		if err := ValidateMessage(m); err != nil {
			t.Fatalf("file-only message rejected: %v", err)
		}
	})

	t.Run("GroupMembers", func(t *testing.T) {
		if ValidateGroup(models.Group{Name: "g"}) == nil {
			t.Fatalf("empty member list accepted")
		}
		if ValidateGroup(models.Group{Name: "g", Members: []string{"a", " "}}) == nil {
			t.Fatalf("blank member identity accepted")
		}
		if err := ValidateGroup(models.Group{Name: "g", Members: []string{"a"}}); err != nil {
			t.Fatalf("valid group rejected: %v", err)
		}
	})

	t.Run("StatusNeedsContent", func(t *testing.T) {
		if ValidateStatus(models.Status{Author: "a"}) == nil {
			t.Fatalf("empty status accepted")
		}
		if err := ValidateStatus(models.Status{Author: "a", Text: "x"}); err != nil {
			t.Fatalf("valid status rejected: %v", err)
		}
	})
}
