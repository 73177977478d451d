package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"family-fund-go/internal/models"
	"family-fund-go/internal/store"

	"go.uber.org/zap"
)

func scanProfile(scanner interface {
	Scan(dest ...any) error
}) (*models.Profile, error) {
	var p models.Profile
	err := scanner.Scan(&p.Id, &p.Email, &p.Name, &p.Avatar, &p.Role, &p.Bio, &p.IsSuspended, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := scanProfile(s.db.QueryRowContext(ctx, queryGetProfile, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		zap.L().Error("Failed to query profile", zap.String("profile_id", id), zap.Error(err))
		return nil, fmt.Errorf("unable to query profile: %w", err)
	}
	return profile, nil
}

func (s *Service) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	profile, err := scanProfile(s.db.QueryRowContext(ctx, queryGetProfileByEmail, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		zap.L().Error("Failed to query profile by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("unable to query profile by email: %w", err)
	}
	return profile, nil
}

// EnsureProfile inserts the profile if no row with its id exists yet and
// does nothing otherwise. Safe to call from concurrent refreshes.
func (s *Service) EnsureProfile(ctx context.Context, profile models.Profile) error {
	role := profile.Role
	if role == "" {
		role = models.RoleMember
	}
	result, err := s.db.ExecContext(ctx, queryEnsureProfile,
		profile.Id, profile.Email, profile.Name, profile.Avatar, role, profile.Bio, profile.IsSuspended)
	if err != nil {
		return fmt.Errorf("unable to ensure profile: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows > 0 {
		zap.L().Info("Created profile", zap.String("profile_id", profile.Id), zap.String("email", profile.Email))
	}
	return nil
}

func (s *Service) UpdateProfile(ctx context.Context, id string, params store.UpdateProfileParams) error {
	existing, err := s.GetProfile(ctx, id)
	if err != nil {
		return err
	}

	if params.Name != nil {
		existing.Name = *params.Name
	}
	if params.Bio != nil {
		existing.Bio = *params.Bio
	}
	if params.Avatar != nil {
		existing.Avatar = *params.Avatar
	}
	if params.Role != nil {
		existing.Role = *params.Role
	}
	if params.Suspended != nil {
		existing.IsSuspended = *params.Suspended
	}

	if _, err := s.db.ExecContext(ctx, queryUpdateProfile,
		existing.Name, existing.Bio, existing.Avatar, existing.Role, existing.IsSuspended, id); err != nil {
		return fmt.Errorf("unable to update profile: %w", err)
	}

	zap.L().Info("Updated profile", zap.String("profile_id", id))
	return nil
}

func (s *Service) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.db.QueryContext(ctx, queryListProfiles)
	if err != nil {
		return nil, fmt.Errorf("unable to query profiles: %w", err)
	}
	defer closeRows(rows)

	var profiles []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan profile row: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile rows: %w", err)
	}
	return profiles, nil
}

// FirstAdmin returns the longest-standing administrator; wallet requests
// are routed to it.
func (s *Service) FirstAdmin(ctx context.Context) (*models.Profile, error) {
	profile, err := scanProfile(s.db.QueryRowContext(ctx, queryFirstAdmin))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("unable to query admin profile: %w", err)
	}
	return profile, nil
}
