package database

import (
	"context"
	"encoding/json"
	"fmt"

	"family-fund-go/internal/models"
	"family-fund-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Service) ListNotifications(ctx context.Context, userId string) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx, queryListNotifications, userId)
	if err != nil {
		zap.L().Error("Failed to query notifications", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query notifications: %w", err)
	}
	defer closeRows(rows)

	var notifications []models.Notification
	for rows.Next() {
		var (
			n       models.Notification
			rawData string
		)
		err := rows.Scan(&n.Id, &n.UserId, &n.Title, &n.Message, &n.Type, &n.Status, &n.IsRead, &rawData, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("unable to scan notification row: %w", err)
		}
		if rawData != "" {
			if err := json.Unmarshal([]byte(rawData), &n.Data); err != nil {
				return nil, fmt.Errorf("unable to decode notification data: %w", err)
			}
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return notifications, nil
}

func (s *Service) CreateNotification(ctx context.Context, params store.CreateNotificationParams) (*models.Notification, error) {
	rawData, err := json.Marshal(params.Data)
	if err != nil {
		return nil, fmt.Errorf("unable to encode notification data: %w", err)
	}

	status := params.Status
	if status == "" {
		status = models.RequestPending
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, queryInsertNotification,
		id, params.UserId, params.Title, params.Message, params.Type, status, string(rawData))
	if err != nil {
		return nil, fmt.Errorf("unable to create notification: %w", err)
	}

	zap.L().Info("Created notification",
		zap.String("notification_id", id),
		zap.String("user_id", params.UserId),
		zap.String("type", string(params.Type)))

	return &models.Notification{
		Id:      id,
		UserId:  params.UserId,
		Title:   params.Title,
		Message: params.Message,
		Type:    params.Type,
		Status:  status,
		Data:    params.Data,
	}, nil
}

// ResolveNotification marks a request notification terminal: status set,
// read flag raised.
func (s *Service) ResolveNotification(ctx context.Context, id string, status models.RequestStatus) error {
	if _, err := s.db.ExecContext(ctx, queryResolveNotification, status, id); err != nil {
		return fmt.Errorf("unable to resolve notification: %w", err)
	}
	zap.L().Info("Resolved notification", zap.String("notification_id", id), zap.String("status", string(status)))
	return nil
}

func (s *Service) MarkNotificationRead(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, queryMarkNotificationRead, id); err != nil {
		return fmt.Errorf("unable to mark notification read: %w", err)
	}
	return nil
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context, userId string) error {
	if _, err := s.db.ExecContext(ctx, queryMarkAllNotificationsRead, userId); err != nil {
		return fmt.Errorf("unable to mark notifications read: %w", err)
	}
	return nil
}
