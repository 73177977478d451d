package main

import (
	"context"
	"flag"
	"fmt"

	"family-fund-go/internal/common"
	"family-fund-go/internal/config"
	"family-fund-go/internal/models"
	"family-fund-go/internal/store"

	"go.uber.org/zap"
)

type seedStats struct {
	created        int
	alreadyPresent int
	failed         []string
}

// seedCategories inserts every configured category that does not exist
// yet. Matching is by name so re-running setup is safe.
func seedCategories(ctx context.Context, services *common.Services, categoriesFile string) seedStats {
	zap.L().Info("Loading category configuration", zap.String("file", categoriesFile))
	categoryConfigs, err := common.LoadCategoryConfig(categoriesFile)
	if err != nil {
		zap.L().Fatal("Failed to load category config", zap.Error(err))
	}
	zap.L().Info("Category configuration loaded", zap.Int("count", len(categoryConfigs)))

	existing, err := services.Platform.ListCategories(ctx)
	if err != nil {
		zap.L().Fatal("Failed to read categories from database", zap.Error(err))
	}
	present := make(map[string]bool, len(existing))
	for _, c := range existing {
		present[c.Name] = true
	}

	stats := seedStats{}
	for _, cc := range categoryConfigs {
		if present[cc.Name] {
			stats.alreadyPresent++
			continue
		}

		_, err := services.Platform.CreateCategory(ctx, models.Category{
			Name:      cc.Name,
			Type:      models.TransactionType(cc.Type),
			Color:     cc.Color,
			Icon:      cc.Icon,
			IsDefault: cc.Default,
		})
		if err != nil {
			zap.L().Error("Failed to create category",
				zap.String("name", cc.Name),
				zap.Error(err))
			stats.failed = append(stats.failed, cc.Name)
			continue
		}
		stats.created++
	}
	return stats
}

// bootstrapAdmin registers the first administrator account when the
// flags are provided. Promoting the fresh profile is a direct role
// update since no admin exists yet to approve it.
func bootstrapAdmin(ctx context.Context, services *common.Services, name, email, password string) {
	session, err := services.Platform.SignUp(ctx, store.SignUpParams{
		Email:    email,
		Password: password,
		Name:     name,
	})
	if err != nil {
		if err == store.ErrDuplicate {
			zap.L().Info("Administrator account already exists", zap.String("email", email))
			return
		}
		zap.L().Fatal("Failed to create administrator account", zap.Error(err))
	}

	admin := models.RoleAdmin
	if err := services.Platform.UpdateProfile(ctx, session.UserId, store.UpdateProfileParams{Role: &admin}); err != nil {
		zap.L().Fatal("Failed to promote administrator", zap.Error(err))
	}
	if err := services.Platform.SignOut(ctx); err != nil {
		zap.L().Warn("Failed to sign out bootstrap session", zap.Error(err))
	}

	zap.L().Info("Administrator account created",
		zap.String("id", session.UserId),
		zap.String("email", email))
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	adminName := flag.String("admin-name", "", "Bootstrap administrator's full name (optional)")
	adminEmail := flag.String("admin-email", "", "Bootstrap administrator's email (optional)")
	adminPassword := flag.String("admin-password", "", "Bootstrap administrator's password (optional)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	zap.L().Info("Setting up SQLite database", zap.String("path", cfg.Database.Path))
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	stats := seedCategories(ctx, services, cfg.Seed.CategoriesFile)

	if *adminEmail != "" {
		if *adminName == "" || *adminPassword == "" {
			zap.L().Fatal("Bootstrap admin requires all three flags: --admin-name, --admin-email and --admin-password")
		}
		bootstrapAdmin(ctx, services, *adminName, *adminEmail, *adminPassword)
	}

	fmt.Println()
	common.PrintHeader("SETUP SUMMARY", common.DefaultWidth)
	fmt.Printf("Categories created:  %d\n", stats.created)
	fmt.Printf("Already present:     %d\n", stats.alreadyPresent)
	fmt.Printf("Failed:              %d\n", len(stats.failed))
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()

	if len(stats.failed) > 0 {
		zap.L().Warn("Setup completed with some failures",
			zap.Int("created", stats.created),
			zap.Strings("failed_categories", stats.failed))
		return
	}
	zap.L().Info("Setup complete", zap.Int("categories_created", stats.created))
}
