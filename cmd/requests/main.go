package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"family-fund-go/internal/common"
	"family-fund-go/internal/config"
	"family-fund-go/internal/models"
	"family-fund-go/internal/store"
	"family-fund-go/internal/workflow"

	"go.uber.org/zap"
)

func describe(n *models.Notification) string {
	switch n.Type {
	case models.NotifJoinRequest:
		return fmt.Sprintf("join group %s by %s", n.Data.GroupId, n.Data.RequesterId)
	case models.NotifLeaveRequest:
		return fmt.Sprintf("leave group %s by %s", n.Data.GroupId, n.Data.RequesterId)
	case models.NotifWalletRequest:
		return fmt.Sprintf("new %s wallet %q (%s)", n.Data.WalletType, n.Data.WalletName, n.Data.Reason)
	case models.NotifInvite:
		return fmt.Sprintf("friend invite from %s", n.Data.RequesterId)
	}
	return n.Message
}

func listPending(pending []models.Notification) {
	common.PrintHeader("PENDING REQUESTS", common.DefaultWidth)
	if len(pending) == 0 {
		fmt.Println("Nothing waiting for a decision.")
		return
	}
	for i, n := range pending {
		fmt.Printf("%s %s  [%s] %s\n",
			common.BoxPrefix(i == len(pending)-1),
			n.Id,
			n.Type,
			describe(&n))
	}
}

func findPending(pending []models.Notification, id string) *models.Notification {
	for i := range pending {
		if pending[i].Id == id {
			return &pending[i]
		}
	}
	return nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "Email address to sign in with (required)")
	passwordFlag := flag.String("password", "", "Password to sign in with (required)")
	acceptFlag := flag.String("accept", "", "Request id to accept")
	rejectFlag := flag.String("reject", "", "Request id to reject")
	flag.Parse()

	if *emailFlag == "" || *passwordFlag == "" {
		logger.Fatal("Required flags: --email and --password")
	}
	if *acceptFlag != "" && *rejectFlag != "" {
		logger.Fatal("Use either --accept or --reject, not both")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	session, err := services.Platform.SignIn(ctx, *emailFlag, *passwordFlag)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			logger.Fatal("Invalid email or password")
		}
		logger.Fatal("Failed to sign in", zap.Error(err))
	}
	defer func() {
		if err := services.Platform.SignOut(ctx); err != nil {
			logger.Warn("Failed to sign out", zap.Error(err))
		}
	}()

	profile, err := services.Platform.GetProfile(ctx, session.UserId)
	if err != nil {
		logger.Fatal("Failed to load profile", zap.Error(err))
	}

	notifications, err := services.Platform.ListNotifications(ctx, profile.Id)
	if err != nil {
		logger.Fatal("Failed to list notifications", zap.Error(err))
	}
	var pending []models.Notification
	for _, n := range notifications {
		if n.ActionRequired() {
			pending = append(pending, n)
		}
	}

	if *acceptFlag == "" && *rejectFlag == "" {
		listPending(pending)
		return
	}

	id, accept := *acceptFlag, true
	if *rejectFlag != "" {
		id, accept = *rejectFlag, false
	}
	target := findPending(pending, id)
	if target == nil {
		logger.Fatal("No pending request with that id", zap.String("id", id))
	}

	if err := workflow.New(services.Platform).Resolve(ctx, profile, target, accept); err != nil {
		if errors.Is(err, store.ErrNotAuthorized) {
			logger.Fatal("You are not allowed to resolve this request", zap.String("id", id))
		}
		logger.Fatal("Failed to resolve request", zap.Error(err))
	}

	verdict := "accepted"
	if !accept {
		verdict = "rejected"
	}
	fmt.Printf("Request %s %s: %s\n", target.Id, verdict, describe(target))
}
