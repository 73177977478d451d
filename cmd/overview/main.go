package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"family-fund-go/internal/common"
	"family-fund-go/internal/config"
	"family-fund-go/internal/metrics"
	"family-fund-go/internal/models"
	"family-fund-go/internal/session"
	"family-fund-go/internal/store"
	"family-fund-go/internal/visibility"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func printAccounts(snap session.Snapshot) {
	accounts := visibility.VisibleAccounts(snap.Profile, snap.Accounts)
	fmt.Printf("\n┌─ Wallets: %d\n", len(accounts))
	for i, account := range accounts {
		suffix := ""
		if account.IsSuspended {
			suffix = " [suspended]"
		}
		if account.Owner != nil && account.Owner.Id != snap.Profile.Id {
			suffix += fmt.Sprintf(" (owner: %s)", account.Owner.Name)
		}
		fmt.Printf("%s %-20s: %12s%s\n",
			common.BoxPrefix(i == len(accounts)-1),
			account.Name,
			common.FormatAmount(account.Balance, false),
			suffix)
	}
}

func printGroups(snap session.Snapshot) {
	joined, available := visibility.PartitionGroups(snap.Profile, snap.GroupAccounts)
	fmt.Printf("\n┌─ Family funds: %d joined, %d available\n", len(joined), len(available))

	groups := append(append([]models.GroupAccount{}, joined...), available...)
	for i, group := range groups {
		balance, masked := visibility.MaskedBalance(snap.Profile, &group)
		shown := common.FormatAmount(balance, false)
		if masked {
			shown = "hidden"
		}
		fmt.Printf("%s %-20s: %12s (%d members)\n",
			common.BoxPrefix(i == len(groups)-1),
			group.Name,
			shown,
			len(group.Members))
	}
}

func printMetrics(snap session.Snapshot, showFull bool) {
	income := metrics.TotalIncome(snap.Transactions)
	expense := metrics.TotalExpense(snap.Transactions)

	fmt.Printf("\n┌─ Last %d days\n", metrics.DefaultTrendWindow)
	fmt.Printf("│ Income:       %12s\n", common.FormatAmount(income, showFull))
	fmt.Printf("│ Expense:      %12s\n", common.FormatAmount(expense, showFull))
	fmt.Printf("│ Health score: %d/100\n", metrics.HealthScore(income, expense))

	balance := totalBalance(snap)
	trend := metrics.TrendSeries(metrics.TrendBalance, snap.Transactions, balance, metrics.DefaultTrendWindow, time.Now())
	fmt.Printf("│ Balance trend:")
	for _, point := range trend {
		fmt.Printf(" %s", common.FormatAmount(point.Value, false))
	}
	fmt.Println()

	breakdown := metrics.CategoryBreakdown(snap.Transactions)
	fmt.Printf("└─ Top expense categories: %d\n", len(breakdown))
	for i, sum := range breakdown {
		if i == 3 {
			break
		}
		fmt.Printf("   %-20s: %12s\n", sum.Name, common.FormatAmount(sum.Total, showFull))
	}
}

func printBuckets(snap session.Snapshot) {
	buckets := visibility.BucketTransactions(snap.Profile, snap.Transactions, snap.Accounts)
	fmt.Printf("\n┌─ Transactions: %d total\n", len(snap.Transactions))
	fmt.Printf("│ Fund:     %d\n", len(buckets.Fund))
	fmt.Printf("│ Personal: %d\n", len(buckets.Personal))
	fmt.Printf("└─ Users:   %d\n", len(buckets.Users))
}

func printNotifications(snap session.Snapshot) {
	var pending int
	for i := range snap.Notifications {
		if snap.Notifications[i].ActionRequired() {
			pending++
		}
	}
	fmt.Printf("\nNotifications: %d (%d awaiting a decision)\n", len(snap.Notifications), pending)
}

// totalBalance sums the wallets the viewer owns plus every joined fund.
func totalBalance(snap session.Snapshot) (total decimal.Decimal) {
	for i := range snap.Accounts {
		if snap.Accounts[i].UserId == snap.Profile.Id {
			total = total.Add(snap.Accounts[i].Balance)
		}
	}
	for i := range snap.GroupAccounts {
		if snap.GroupAccounts[i].HasMember(snap.Profile.Id) {
			total = total.Add(snap.GroupAccounts[i].Balance)
		}
	}
	return total
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "Email to sign in with (required)")
	passwordFlag := flag.String("password", "", "Password to sign in with (required)")
	fullFlag := flag.Bool("full", false, "Show amounts at full precision")
	flag.Parse()

	if *emailFlag == "" || *passwordFlag == "" {
		logger.Fatal("Required flags: --email and --password")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Connecting to database", zap.String("path", cfg.Database.Path))
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if _, err := services.Platform.SignIn(ctx, *emailFlag, *passwordFlag); err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			logger.Fatal("Invalid email or password")
		}
		logger.Fatal("Failed to sign in", zap.Error(err))
	}

	sessionStore := session.New(services.Platform)
	defer sessionStore.Close()
	if err := sessionStore.Initialize(ctx); err != nil {
		logger.Fatal("Failed to load session state", zap.Error(err))
	}

	snap := sessionStore.Snapshot()
	if snap.Profile == nil {
		logger.Fatal("No profile resolved for session")
	}

	common.PrintHeader("FAMILY FUND OVERVIEW", common.DefaultWidth)
	fmt.Printf("User: %s (%s) role=%s\n", snap.Profile.Name, snap.Profile.Email, snap.Profile.Role)

	printAccounts(snap)
	printGroups(snap)
	printMetrics(snap, *fullFlag)
	printBuckets(snap)
	printNotifications(snap)

	common.PrintFooter("Overview complete", common.DefaultWidth)

	if err := services.Platform.SignOut(ctx); err != nil {
		logger.Warn("Failed to sign out", zap.Error(err))
	}
}
