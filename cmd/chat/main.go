package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"family-fund-go/internal/chat"
	"family-fund-go/internal/common"
	"family-fund-go/internal/config"
	"family-fund-go/internal/models"
	"family-fund-go/internal/session"
	"family-fund-go/internal/store"

	"go.uber.org/zap"
)

// acceptedFriend verifies an accepted friendship exists between the two
// profiles in either direction.
func acceptedFriend(ctx context.Context, platform store.Platform, selfId, friendId string) (bool, error) {
	friendships, err := platform.ListFriendships(ctx, selfId, models.RequestAccepted)
	if err != nil {
		return false, err
	}
	for _, f := range friendships {
		if f.RequesterId == friendId || f.ReceiverId == friendId {
			return true, nil
		}
	}
	return false, nil
}

func printMessage(msg models.Message, selfId string) {
	who := "them"
	if msg.SenderId == selfId {
		who = "you"
	}
	fmt.Printf("[%s] %s: %s\n", msg.CreatedAt.Format("15:04:05"), who, msg.Content)
}

func main() {
	emailFlag := flag.String("email", "", "Email to sign in with (required)")
	passwordFlag := flag.String("password", "", "Password to sign in with (required)")
	friendFlag := flag.String("friend", "", "Friend's email to chat with (required)")
	flag.Parse()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	if *emailFlag == "" || *passwordFlag == "" || *friendFlag == "" {
		zap.L().Fatal("Required flags: --email, --password and --friend")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if _, err := services.Platform.SignIn(ctx, *emailFlag, *passwordFlag); err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			zap.L().Fatal("Invalid email or password")
		}
		zap.L().Fatal("Failed to sign in", zap.Error(err))
	}
	defer func() {
		if err := services.Platform.SignOut(ctx); err != nil {
			zap.L().Warn("Failed to sign out", zap.Error(err))
		}
	}()

	sessionStore := session.New(services.Platform)
	defer sessionStore.Close()
	if err := sessionStore.Initialize(ctx); err != nil {
		zap.L().Fatal("Failed to load session state", zap.Error(err))
	}
	self := sessionStore.Snapshot().Profile
	if self == nil {
		zap.L().Fatal("No profile resolved for session")
	}

	friend, err := services.Platform.GetProfileByEmail(ctx, *friendFlag)
	if err != nil {
		zap.L().Fatal("Friend not found", zap.String("email", *friendFlag), zap.Error(err))
	}

	ok, err := acceptedFriend(ctx, services.Platform, self.Id, friend.Id)
	if err != nil {
		zap.L().Fatal("Failed to check friendship", zap.Error(err))
	}
	if !ok {
		zap.L().Fatal("No accepted friendship with this user; send a friend request first",
			zap.String("friend", friend.Email))
	}

	conversation, err := chat.Open(ctx, services.Platform, self, friend.Id)
	if err != nil {
		zap.L().Fatal("Failed to open conversation", zap.Error(err))
	}
	defer conversation.Close()

	fmt.Printf("Chatting with %s. Type a message and press enter; Ctrl+C to leave.\n\n", friend.Name)
	for _, msg := range conversation.Transcript() {
		printMessage(msg, self.Id)
	}

	// Own sends already echo on the prompt line, so only print the
	// friend's side as it arrives.
	unsub := conversation.Subscribe(func(transcript []models.Message) {
		if len(transcript) == 0 {
			return
		}
		last := transcript[len(transcript)-1]
		if last.SenderId == friend.Id {
			printMessage(last, self.Id)
		}
	})
	defer unsub()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sigChan:
			fmt.Println("\nLeaving chat")
			return
		case line, open := <-lines:
			if !open {
				return
			}
			if line == "" {
				continue
			}
			if err := conversation.Send(ctx, line); err != nil {
				zap.L().Error("Failed to send message", zap.Error(err))
			}
		}
	}
}
