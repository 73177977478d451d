package session

import (
	"context"
	"testing"

	"family-fund-go/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

func TestResolveProfile_CreatesLazily(t *testing.T) {
	platform := newTestPlatform(t)
	ctx := context.Background()

	session := &models.Session{
		UserId:   "id1",
		Email:    "alice@example.com",
		Metadata: map[string]string{"name": "Alice", "avatar": "https://example.com/a.png"},
	}

	profile, err := ResolveProfile(ctx, platform, session)
	if err != nil {
		t.Fatalf("ResolveProfile failed: %v", err)
	}
	if profile.Name != "Alice" || profile.Avatar != "https://example.com/a.png" {
		t.Errorf("Profile not built from metadata: %+v", profile)
	}
	if profile.Role != models.RoleMember {
		t.Errorf("Expected default role member, got %s", profile.Role)
	}
	if profile.Transient {
		t.Error("Persisted profile flagged transient")
	}

	// The row must actually exist now.
	if _, err := platform.GetProfile(ctx, "id1"); err != nil {
		t.Errorf("Profile not persisted: %v", err)
	}
}

func TestResolveProfile_IdempotentOnExisting(t *testing.T) {
	platform := newTestPlatform(t)
	ctx := context.Background()

	if err := platform.EnsureProfile(ctx, models.Profile{
		Id:    "id1",
		Email: "alice@example.com",
		Name:  "Original",
		Role:  models.RoleAdmin,
	}); err != nil {
		t.Fatalf("EnsureProfile failed: %v", err)
	}

	session := &models.Session{
		UserId:   "id1",
		Email:    "alice@example.com",
		Metadata: map[string]string{"name": "Different"},
	}

	first, err := ResolveProfile(ctx, platform, session)
	if err != nil {
		t.Fatalf("First ResolveProfile failed: %v", err)
	}
	second, err := ResolveProfile(ctx, platform, session)
	if err != nil {
		t.Fatalf("Second ResolveProfile failed: %v", err)
	}

	if first.Name != "Original" || second.Name != "Original" {
		t.Errorf("Existing profile overwritten: %s / %s", first.Name, second.Name)
	}
	if first.Role != models.RoleAdmin || *first != *second {
		t.Errorf("Resolver not idempotent: %+v vs %+v", first, second)
	}
}

func TestDisplayNamePriority(t *testing.T) {
	cases := []struct {
		name     string
		metadata map[string]string
		email    string
		want     string
	}{
		{"explicit name", map[string]string{"name": "Alice", "full_name": "Alice Smith"}, "a@example.com", "Alice"},
		{"full name fallback", map[string]string{"full_name": "Alice Smith"}, "a@example.com", "Alice Smith"},
		{"email local part", nil, "alice@example.com", "alice"},
		{"last resort", nil, "", "User"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session := &models.Session{Email: tc.email, Metadata: tc.metadata}
			if got := displayName(session); got != tc.want {
				t.Errorf("displayName = %q, want %q", got, tc.want)
			}
		})
	}
}
