package database

import (
	"context"
	"fmt"
	"time"

	"family-fund-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Service) CreateFriendship(ctx context.Context, requesterId, receiverId string) (*models.Friendship, error) {
	id := uuid.New().String()
	if _, err := s.db.ExecContext(ctx, queryInsertFriendship, id, requesterId, receiverId); err != nil {
		return nil, fmt.Errorf("unable to create friendship: %w", err)
	}

	zap.L().Info("Created friendship request",
		zap.String("friendship_id", id),
		zap.String("requester_id", requesterId),
		zap.String("receiver_id", receiverId))

	return &models.Friendship{
		Id:          id,
		RequesterId: requesterId,
		ReceiverId:  receiverId,
		Status:      models.RequestPending,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// AcceptFriendship flips the row to accepted. There is no reject path for
// friendships; a declined invite only resolves the notification.
func (s *Service) AcceptFriendship(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, queryAcceptFriendship, id); err != nil {
		return fmt.Errorf("unable to accept friendship: %w", err)
	}
	zap.L().Info("Accepted friendship", zap.String("friendship_id", id))
	return nil
}

func (s *Service) ListFriendships(ctx context.Context, userId string, status models.RequestStatus) ([]models.Friendship, error) {
	rows, err := s.db.QueryContext(ctx, queryListFriendships, userId, userId, status)
	if err != nil {
		return nil, fmt.Errorf("unable to query friendships: %w", err)
	}
	defer closeRows(rows)

	var friendships []models.Friendship
	for rows.Next() {
		var f models.Friendship
		if err := rows.Scan(&f.Id, &f.RequesterId, &f.ReceiverId, &f.Status, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("unable to scan friendship row: %w", err)
		}
		friendships = append(friendships, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friendship rows: %w", err)
	}
	return friendships, nil
}
