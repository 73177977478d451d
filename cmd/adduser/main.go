package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"regexp"

	"family-fund-go/internal/common"
	"family-fund-go/internal/config"
	"family-fund-go/internal/models"
	"family-fund-go/internal/store"

	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	// Parse command line flags
	nameFlag := flag.String("name", "", "User's full name (required)")
	emailFlag := flag.String("email", "", "User's email address (required)")
	passwordFlag := flag.String("password", "", "User's password (required)")
	adminFlag := flag.Bool("admin", false, "Grant the admin role to the new user")
	flag.Parse()

	if *nameFlag == "" || *emailFlag == "" || *passwordFlag == "" {
		zap.L().Fatal("Required flags: --name, --email and --password")
	}

	if err := validateName(*nameFlag); err != nil {
		zap.L().Fatal("Invalid name", zap.Error(err))
	}
	if err := validateEmail(*emailFlag); err != nil {
		zap.L().Fatal("Invalid email", zap.Error(err))
	}
	if err := validatePassword(*passwordFlag); err != nil {
		zap.L().Fatal("Invalid password", zap.Error(err))
	}

	zap.L().Info("Starting user creation process",
		zap.String("name", *nameFlag),
		zap.String("email", *emailFlag),
		zap.Bool("admin", *adminFlag))

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	session, err := services.Platform.SignUp(ctx, store.SignUpParams{
		Email:    *emailFlag,
		Password: *passwordFlag,
		Name:     *nameFlag,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			zap.L().Fatal("User already exists with this email", zap.String("email", *emailFlag))
		}
		zap.L().Fatal("Failed to create user", zap.Error(err))
	}

	if *adminFlag {
		admin := models.RoleAdmin
		if err := services.Platform.UpdateProfile(ctx, session.UserId, store.UpdateProfileParams{Role: &admin}); err != nil {
			zap.L().Fatal("Failed to grant admin role", zap.Error(err))
		}
	}

	// The sign-up left a live session behind; this tool only provisions.
	if err := services.Platform.SignOut(ctx); err != nil {
		zap.L().Warn("Failed to sign out provisioning session", zap.Error(err))
	}

	profile, err := services.Platform.GetProfile(ctx, session.UserId)
	if err != nil {
		zap.L().Fatal("Failed to read back profile", zap.Error(err))
	}

	fmt.Println()
	common.PrintHeader("USER CREATED", common.DefaultWidth)
	fmt.Printf("ID:    %s\n", profile.Id)
	fmt.Printf("Name:  %s\n", profile.Name)
	fmt.Printf("Email: %s\n", profile.Email)
	fmt.Printf("Role:  %s\n", profile.Role)
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()

	zap.L().Info("User created successfully", zap.String("id", profile.Id))
}
