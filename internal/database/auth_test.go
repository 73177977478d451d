package database

import (
	"context"
	"errors"
	"testing"

	"family-fund-go/internal/models"
	"family-fund-go/internal/store"
)

func TestSignUpAndSignIn(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()

	session, err := service.SignUp(ctx, store.SignUpParams{
		Email:    "Alice@Example.com",
		Password: "correct-horse",
		Name:     "Alice",
	})
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if session.Email != "alice@example.com" {
		t.Errorf("Expected lowercased email, got %s", session.Email)
	}
	if session.Metadata["name"] != "Alice" {
		t.Errorf("Expected name metadata, got %v", session.Metadata)
	}

	if err := service.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	again, err := service.SignIn(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if again.UserId != session.UserId {
		t.Errorf("Expected same identity, got %s and %s", session.UserId, again.UserId)
	}
}

func TestSignUp_CreatesProfileRow(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()

	session, err := service.SignUp(ctx, store.SignUpParams{
		Email:    "carol@example.com",
		Password: "pw123456",
		Name:     "Carol",
	})
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	// The profile must be addressable straight away; the provisioning
	// tools promote it without ever running a session refresh.
	profile, err := service.GetProfile(ctx, session.UserId)
	if err != nil {
		t.Fatalf("GetProfile after SignUp failed: %v", err)
	}
	if profile.Name != "Carol" || profile.Role != models.RoleMember {
		t.Errorf("Unexpected profile: %+v", profile)
	}

	admin := models.RoleAdmin
	if err := service.UpdateProfile(ctx, session.UserId, store.UpdateProfileParams{Role: &admin}); err != nil {
		t.Fatalf("UpdateProfile after SignUp failed: %v", err)
	}
	profile, err = service.GetProfile(ctx, session.UserId)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.Role != models.RoleAdmin {
		t.Errorf("Expected promoted role admin, got %s", profile.Role)
	}
}

func TestSignUp_DerivesNameFromEmail(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()

	session, err := service.SignUp(ctx, store.SignUpParams{Email: "dave@example.com", Password: "pw123456"})
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	profile, err := service.GetProfile(ctx, session.UserId)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.Name != "dave" {
		t.Errorf("Expected name derived from email local part, got %q", profile.Name)
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()

	if _, err := service.SignUp(ctx, store.SignUpParams{Email: "bob@example.com", Password: "pw123456"}); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	_, err := service.SignUp(ctx, store.SignUpParams{Email: "bob@example.com", Password: "other-pw"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()

	if _, err := service.SignUp(ctx, store.SignUpParams{Email: "carol@example.com", Password: "pw123456"}); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	if _, err := service.SignIn(ctx, "carol@example.com", "wrong"); !errors.Is(err, store.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := service.SignIn(ctx, "nobody@example.com", "pw123456"); !errors.Is(err, store.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestCurrentSession_NilWhenSignedOut(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()

	session, err := service.CurrentSession(ctx)
	if err != nil || session != nil {
		t.Fatalf("Expected (nil, nil) before sign-in, got (%v, %v)", session, err)
	}

	if _, err := service.SignUp(ctx, store.SignUpParams{Email: "dave@example.com", Password: "pw123456"}); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	session, err = service.CurrentSession(ctx)
	if err != nil {
		t.Fatalf("CurrentSession failed: %v", err)
	}
	if session == nil || session.Email != "dave@example.com" {
		t.Fatalf("Expected live session, got %+v", session)
	}

	if err := service.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	session, err = service.CurrentSession(ctx)
	if err != nil || session != nil {
		t.Fatalf("Expected (nil, nil) after sign-out, got (%v, %v)", session, err)
	}
}

func TestOnAuthStateChange_DeliversTransitions(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()

	var events []store.AuthEvent
	unsubscribe := service.OnAuthStateChange(func(event store.AuthEvent, session *models.Session) {
		events = append(events, event)
	})

	if _, err := service.SignUp(ctx, store.SignUpParams{Email: "erin@example.com", Password: "pw123456"}); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if err := service.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	if len(events) != 2 || events[0] != store.AuthSignedIn || events[1] != store.AuthSignedOut {
		t.Errorf("Expected [SIGNED_IN SIGNED_OUT], got %v", events)
	}

	unsubscribe()
	if _, err := service.SignIn(ctx, "erin@example.com", "pw123456"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("Expected no events after unsubscribe, got %v", events)
	}
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	service := setupTestDb(t)

	err := service.RequestPasswordReset(context.Background(), "ghost@example.com")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
