package database

import (
	"context"
	"testing"
	"time"

	"family-fund-go/internal/models"
)

func TestInsertMessage_DeliversToSubscriber(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()

	received := make(chan models.Message, 1)
	unsubscribe, err := service.SubscribeMessages("bob", func(msg models.Message) {
		received <- msg
	})
	if err != nil {
		t.Fatalf("SubscribeMessages failed: %v", err)
	}
	defer unsubscribe()

	stored, err := service.InsertMessage(ctx, "alice", "bob", "hello")
	if err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}

	select {
	case msg := <-received:
		if msg.Id != stored.Id || msg.Content != "hello" {
			t.Errorf("Delivered message mismatch: %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for delivery")
	}
}

func TestInsertMessage_NotDeliveredToOthers(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()

	received := make(chan models.Message, 1)
	unsubscribe, err := service.SubscribeMessages("carol", func(msg models.Message) {
		received <- msg
	})
	if err != nil {
		t.Fatalf("SubscribeMessages failed: %v", err)
	}
	defer unsubscribe()

	if _, err := service.InsertMessage(ctx, "alice", "bob", "private"); err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}

	select {
	case msg := <-received:
		t.Errorf("Message leaked to wrong recipient: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestListMessages_ChronologicalBothDirections(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()

	if _, err := service.InsertMessage(ctx, "alice", "bob", "first"); err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}
	if _, err := service.InsertMessage(ctx, "bob", "alice", "second"); err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}
	if _, err := service.InsertMessage(ctx, "alice", "carol", "unrelated"); err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}

	messages, err := service.ListMessages(ctx, "alice", "bob", 50)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[0].Content != "first" || messages[1].Content != "second" {
		t.Errorf("Messages not chronological: %v, %v", messages[0].Content, messages[1].Content)
	}
}
