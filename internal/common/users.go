package common

import (
	"context"
	"fmt"

	"family-fund-go/internal/store"

	"go.uber.org/zap"
)

// ProfileInfo represents simplified profile information for command-line utilities
type ProfileInfo struct {
	Id    string
	Name  string
	Email string
	Role  string
}

// InitializeProfiles retrieves profiles based on an optional email filter.
// If emailFilter is provided, returns a single profile with that email.
// If emailFilter is empty, returns all profiles.
func InitializeProfiles(ctx context.Context, platform store.Platform, emailFilter string, logger *zap.Logger) ([]ProfileInfo, error) {
	var profiles []ProfileInfo

	if emailFilter != "" {
		logger.Info("Looking up profile by email", zap.String("email", emailFilter))
		profile, err := platform.GetProfileByEmail(ctx, emailFilter)
		if err != nil {
			return nil, fmt.Errorf("profile not found: %w", err)
		}
		profiles = append(profiles, ProfileInfo{
			Id:    profile.Id,
			Name:  profile.Name,
			Email: profile.Email,
			Role:  string(profile.Role),
		})
	} else {
		allProfiles, err := platform.ListProfiles(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get profiles: %w", err)
		}
		for _, p := range allProfiles {
			profiles = append(profiles, ProfileInfo{
				Id:    p.Id,
				Name:  p.Name,
				Email: p.Email,
				Role:  string(p.Role),
			})
		}
	}

	logger.Info("Retrieved profiles", zap.Int("count", len(profiles)))
	return profiles, nil
}
