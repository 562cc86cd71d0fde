package services

import (
	"testing"

	"github.com/pulsohq/pulso/pkg/internal/models"
)

func TestAccountLifecycle(t *testing.T) {
	openTestDatabase(t)

	account, err := NewAccount("alice", "hunter22", models.AccountRoleAdmin)
	if err != nil {
		t.Fatalf("account creation failed: %v", err)
	}
	if account.PasswordHash == "hunter22" {
		t.Fatalf("password must not be stored in the clear")
	}

	if _, err := NewAccount("alice", "other", models.AccountRoleViewer); err == nil {
		t.Fatalf("duplicate username should be rejected")
	}

	got, err := Authenticate("alice", "hunter22")
	if err != nil {
		t.Fatalf("valid credentials should authenticate: %v", err)
	}
	if got.ID != account.ID || got.Role != models.AccountRoleAdmin {
		t.Fatalf("unexpected account: %+v", got)
	}

	if _, err := Authenticate("alice", "wrong"); err == nil {
		t.Fatalf("wrong password should fail")
	}
	if _, err := Authenticate("nobody", "hunter22"); err == nil {
		t.Fatalf("unknown username should fail")
	}
}

func TestAuthenticateErrorsAreUniform(t *testing.T) {
	openTestDatabase(t)
	if _, err := NewAccount("alice", "hunter22", models.AccountRoleViewer); err != nil {
		t.Fatalf("account creation failed: %v", err)
	}

	_, unknownUser := Authenticate("nobody", "hunter22")
	_, wrongPassword := Authenticate("alice", "wrong")
	if unknownUser.Error() != wrongPassword.Error() {
		t.Fatalf("failure modes must be indistinguishable: %q vs %q",
			unknownUser.Error(), wrongPassword.Error())
	}
}

func TestAccountAdministration(t *testing.T) {
	openTestDatabase(t)

	alice, err := NewAccount("alice", "hunter22", models.AccountRoleAdmin)
	if err != nil {
		t.Fatalf("account creation failed: %v", err)
	}
	bob, err := NewAccount("bob", "hunter22", models.AccountRoleViewer)
	if err != nil {
		t.Fatalf("account creation failed: %v", err)
	}

	accounts, count, err := ListAccount(10, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if count != 2 || len(accounts) != 2 {
		t.Fatalf("expected both accounts, got count=%d len=%d", count, len(accounts))
	}

	got, err := GetAccount(bob.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Username != "bob" {
		t.Fatalf("unexpected account: %+v", got)
	}

	if _, err := GetAccount(999); err == nil {
		t.Fatalf("unknown account should not resolve")
	}

	// Renaming onto a taken username is refused.
	if _, err := UpdateAccount(bob.ID, "alice", models.AccountRoleViewer); err == nil {
		t.Fatalf("username clash should be rejected")
	}

	updated, err := UpdateAccount(bob.ID, "robert", models.AccountRoleAdmin)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Username != "robert" || updated.Role != models.AccountRoleAdmin {
		t.Fatalf("unexpected account after update: %+v", updated)
	}

	if err := DeleteAccount(alice.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := GetAccount(alice.ID); err == nil {
		t.Fatalf("deleted account should be invisible")
	}
	if _, count, err := ListAccount(10, 0); err != nil || count != 1 {
		t.Fatalf("expected one account left, got count=%d err=%v", count, err)
	}
}

func TestUpdateAccountPassword(t *testing.T) {
	openTestDatabase(t)
	account, err := NewAccount("alice", "hunter22", models.AccountRoleViewer)
	if err != nil {
		t.Fatalf("account creation failed: %v", err)
	}

	if err := UpdateAccountPassword(account.ID, "new-password"); err != nil {
		t.Fatalf("password update failed: %v", err)
	}
	if _, err := Authenticate("alice", "hunter22"); err == nil {
		t.Fatalf("old password should no longer work")
	}
	if _, err := Authenticate("alice", "new-password"); err != nil {
		t.Fatalf("new password should work: %v", err)
	}
}
