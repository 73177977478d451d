package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"family-fund-go/internal/models"
	"family-fund-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func scanGroupAccount(scanner interface {
	Scan(dest ...any) error
}) (*models.GroupAccount, error) {
	var (
		g                         models.GroupAccount
		balanceStr                string
		members, pending, leaving string
	)
	err := scanner.Scan(&g.Id, &g.UserId, &g.Name, &balanceStr, &g.IsSuspended,
		&members, &pending, &leaving, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	if g.Balance, err = decimal.NewFromString(balanceStr); err != nil {
		return nil, fmt.Errorf("unable to parse group balance %q: %w", balanceStr, err)
	}
	if g.Members, err = decodeIdSet(members); err != nil {
		return nil, err
	}
	if g.PendingMembers, err = decodeIdSet(pending); err != nil {
		return nil, err
	}
	if g.LeavingMembers, err = decodeIdSet(leaving); err != nil {
		return nil, err
	}
	return &g, nil
}

func decodeIdSet(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("unable to decode member set %q: %w", raw, err)
	}
	return ids, nil
}

func encodeIdSet(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("unable to encode member set: %w", err)
	}
	return string(raw), nil
}

func (s *Service) ListGroupAccounts(ctx context.Context) ([]models.GroupAccount, error) {
	rows, err := s.db.QueryContext(ctx, queryListGroupAccounts)
	if err != nil {
		zap.L().Error("Failed to query group accounts", zap.Error(err))
		return nil, fmt.Errorf("unable to query group accounts: %w", err)
	}
	defer closeRows(rows)

	var groups []models.GroupAccount
	for rows.Next() {
		g, err := scanGroupAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan group account row: %w", err)
		}
		groups = append(groups, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group account rows: %w", err)
	}
	return groups, nil
}

func (s *Service) GetGroupAccount(ctx context.Context, id string) (*models.GroupAccount, error) {
	g, err := scanGroupAccount(s.db.QueryRowContext(ctx, queryGetGroupAccount, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		zap.L().Error("Failed to query group account", zap.String("group_id", id), zap.Error(err))
		return nil, fmt.Errorf("unable to query group account: %w", err)
	}
	return g, nil
}

// CreateGroupAccount creates a shared fund; the creator is an implicit
// initial member.
func (s *Service) CreateGroupAccount(ctx context.Context, creatorId, name string) (*models.GroupAccount, error) {
	id := uuid.New().String()
	members, err := encodeIdSet([]string{creatorId})
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, queryInsertGroupAccount, id, creatorId, name, members); err != nil {
		return nil, fmt.Errorf("unable to create group account: %w", err)
	}

	zap.L().Info("Created group account", zap.String("group_id", id), zap.String("creator_id", creatorId))
	return &models.GroupAccount{
		Id:        id,
		UserId:    creatorId,
		Name:      name,
		Balance:   decimal.Zero,
		Members:   []string{creatorId},
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UpdateGroupMembers atomically replaces the three membership sets. The
// sets must already be pairwise disjoint; this is validated before write.
func (s *Service) UpdateGroupMembers(ctx context.Context, id string, sets store.MemberSets) error {
	g := models.GroupAccount{
		Id:             id,
		Members:        sets.Members,
		PendingMembers: sets.PendingMembers,
		LeavingMembers: sets.LeavingMembers,
	}
	if err := g.ValidateMemberSets(); err != nil {
		return err
	}

	members, err := encodeIdSet(sets.Members)
	if err != nil {
		return err
	}
	pending, err := encodeIdSet(sets.PendingMembers)
	if err != nil {
		return err
	}
	leaving, err := encodeIdSet(sets.LeavingMembers)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, queryUpdateGroupMembers, members, pending, leaving, id); err != nil {
		return fmt.Errorf("unable to update group members: %w", err)
	}

	zap.L().Info("Updated group members",
		zap.String("group_id", id),
		zap.Int("members", len(sets.Members)),
		zap.Int("pending", len(sets.PendingMembers)),
		zap.Int("leaving", len(sets.LeavingMembers)))
	return nil
}

func (s *Service) SetGroupAccountSuspended(ctx context.Context, id string, suspended bool) error {
	if _, err := s.db.ExecContext(ctx, querySetGroupSuspended, suspended, id); err != nil {
		return fmt.Errorf("unable to update group suspension: %w", err)
	}
	zap.L().Info("Updated group suspension", zap.String("group_id", id), zap.Bool("suspended", suspended))
	return nil
}
