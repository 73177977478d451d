package database

import (
	"context"
	"fmt"
	"time"

	"family-fund-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InsertMessage stores a chat message and publishes it to the realtime
// broker for the recipient. A publish failure is logged, not returned:
// the authoritative row exists and the next history load delivers it.
func (s *Service) InsertMessage(ctx context.Context, senderId, receiverId, content string) (*models.Message, error) {
	msg := models.Message{
		Id:         uuid.New().String(),
		SenderId:   senderId,
		ReceiverId: receiverId,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, queryInsertMessage,
		msg.Id, msg.SenderId, msg.ReceiverId, msg.Content, msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("unable to insert message: %w", err)
	}

	if err := s.broker.Publish(ctx, msg); err != nil {
		zap.L().Warn("Failed to publish chat message",
			zap.String("message_id", msg.Id),
			zap.Error(err))
	}

	return &msg, nil
}

// ListMessages returns the most recent messages between the two
// participants in chronological order.
func (s *Service) ListMessages(ctx context.Context, userA, userB string, limit int) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, queryListMessagesBetween, userA, userB, userB, userA, limit)
	if err != nil {
		return nil, fmt.Errorf("unable to query messages: %w", err)
	}
	defer closeRows(rows)

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.Id, &m.SenderId, &m.ReceiverId, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("unable to scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	// The query returns newest-first for the LIMIT; flip to chronological.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *Service) SubscribeMessages(receiverId string, fn func(models.Message)) (func(), error) {
	return s.broker.Subscribe(receiverId, fn)
}
