package session

import (
	"context"
	"errors"
	"strings"

	"family-fund-go/internal/models"
	"family-fund-go/internal/store"

	"go.uber.org/zap"
)

// ResolveProfile guarantees a profile for the authenticated identity,
// creating one lazily on first federated login. When the profile exists
// this is a pure read. When persisting fails (e.g. an authorization rule
// blocks the insert) a transient in-memory profile is returned so the
// caller can still render; it is superseded by the next successful
// refresh once the row exists.
func ResolveProfile(ctx context.Context, platform store.Platform, session *models.Session) (*models.Profile, error) {
	profile, err := platform.GetProfile(ctx, session.UserId)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	fresh := models.Profile{
		Id:     session.UserId,
		Email:  session.Email,
		Name:   displayName(session),
		Avatar: session.Metadata["avatar"],
		Role:   models.RoleMember,
	}

	if err := platform.EnsureProfile(ctx, fresh); err != nil {
		zap.L().Warn("Failed to persist profile, using transient fallback",
			zap.String("identity_id", session.UserId),
			zap.Error(err))
		fresh.Transient = true
		return &fresh, nil
	}

	// Re-read: a concurrent refresh or a server-side trigger may have won
	// the insert race with different contents.
	profile, err = platform.GetProfile(ctx, session.UserId)
	if err != nil {
		zap.L().Warn("Profile missing after upsert, using transient fallback",
			zap.String("identity_id", session.UserId),
			zap.Error(err))
		fresh.Transient = true
		return &fresh, nil
	}
	return profile, nil
}

// displayName derives a profile name from identity metadata in priority
// order: explicit name, full name, email local part, literal "User".
func displayName(session *models.Session) string {
	if name := strings.TrimSpace(session.Metadata["name"]); name != "" {
		return name
	}
	if name := strings.TrimSpace(session.Metadata["full_name"]); name != "" {
		return name
	}
	if at := strings.IndexByte(session.Email, '@'); at > 0 {
		return session.Email[:at]
	}
	return "User"
}
