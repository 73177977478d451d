package realtime

import (
	"context"
	"testing"

	"family-fund-go/internal/models"
)

func TestLocalBus_DeliversToReceiverOnly(t *testing.T) {
	bus := NewLocalBus()
	defer func() { _ = bus.Close() }()

	var forBob, forCarol []models.Message
	unsubBob, err := bus.Subscribe("bob", func(msg models.Message) { forBob = append(forBob, msg) })
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer unsubBob()
	unsubCarol, err := bus.Subscribe("carol", func(msg models.Message) { forCarol = append(forCarol, msg) })
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer unsubCarol()

	msg := models.Message{Id: "m1", SenderId: "alice", ReceiverId: "bob", Content: "hi"}
	if err := bus.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(forBob) != 1 || forBob[0].Id != "m1" {
		t.Errorf("Bob should have received the message, got %v", forBob)
	}
	if len(forCarol) != 0 {
		t.Errorf("Carol should not have received anything, got %v", forCarol)
	}
}

func TestLocalBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := NewLocalBus()
	defer func() { _ = bus.Close() }()

	var count int
	unsub, err := bus.Subscribe("bob", func(models.Message) { count++ })
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	msg := models.Message{Id: "m1", ReceiverId: "bob"}
	if err := bus.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	unsub()
	if err := bus.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if count != 1 {
		t.Errorf("Expected 1 delivery, got %d", count)
	}
}

func TestLocalBus_ClosedDropsMessages(t *testing.T) {
	bus := NewLocalBus()

	var count int
	if _, err := bus.Subscribe("bob", func(models.Message) { count++ }); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := bus.Publish(context.Background(), models.Message{ReceiverId: "bob"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no delivery after close, got %d", count)
	}
}
