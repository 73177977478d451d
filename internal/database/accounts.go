package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"family-fund-go/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ListAccounts returns the accounts owned by ownerId. An empty ownerId
// returns every account in the system with its owner profile joined in,
// which is the admin-wide listing.
func (s *Service) ListAccounts(ctx context.Context, ownerId string) ([]models.Account, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if ownerId == "" {
		rows, err = s.db.QueryContext(ctx, queryListAllAccounts)
	} else {
		rows, err = s.db.QueryContext(ctx, queryListAccountsByOwner, ownerId)
	}
	if err != nil {
		zap.L().Error("Failed to query accounts", zap.String("owner_id", ownerId), zap.Error(err))
		return nil, fmt.Errorf("unable to query accounts: %w", err)
	}
	defer closeRows(rows)

	var accounts []models.Account
	for rows.Next() {
		var (
			a          models.Account
			balanceStr string
			owner      nullProfile
		)
		err := rows.Scan(&a.Id, &a.UserId, &a.Name, &balanceStr, &a.IsSuspended, &a.CreatedAt,
			&owner.Id, &owner.Email, &owner.Name, &owner.Avatar, &owner.Role, &owner.Bio, &owner.IsSuspended, &owner.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("unable to scan account row: %w", err)
		}
		if a.Balance, err = decimal.NewFromString(balanceStr); err != nil {
			return nil, fmt.Errorf("unable to parse account balance %q: %w", balanceStr, err)
		}
		a.Owner = owner.profile()
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	zap.L().Debug("Retrieved accounts", zap.String("owner_id", ownerId), zap.Int("count", len(accounts)))
	return accounts, nil
}

func (s *Service) CreateAccount(ctx context.Context, ownerId, name string) (*models.Account, error) {
	id := uuid.New().String()
	if _, err := s.db.ExecContext(ctx, queryInsertAccount, id, ownerId, name); err != nil {
		return nil, fmt.Errorf("unable to create account: %w", err)
	}

	zap.L().Info("Created account", zap.String("account_id", id), zap.String("owner_id", ownerId))
	return &models.Account{
		Id:        id,
		UserId:    ownerId,
		Name:      name,
		Balance:   decimal.Zero,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *Service) RenameAccount(ctx context.Context, id, name string) error {
	if _, err := s.db.ExecContext(ctx, queryRenameAccount, name, id); err != nil {
		return fmt.Errorf("unable to rename account: %w", err)
	}
	return nil
}

func (s *Service) SetAccountSuspended(ctx context.Context, id string, suspended bool) error {
	if _, err := s.db.ExecContext(ctx, querySetAccountSuspended, suspended, id); err != nil {
		return fmt.Errorf("unable to update account suspension: %w", err)
	}
	zap.L().Info("Updated account suspension", zap.String("account_id", id), zap.Bool("suspended", suspended))
	return nil
}

func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, queryDeleteAccount, id); err != nil {
		return fmt.Errorf("unable to delete account: %w", err)
	}
	zap.L().Info("Deleted account", zap.String("account_id", id))
	return nil
}

// nullProfile scans an optional LEFT-JOINed profile.
type nullProfile struct {
	Id          sql.NullString
	Email       sql.NullString
	Name        sql.NullString
	Avatar      sql.NullString
	Role        sql.NullString
	Bio         sql.NullString
	IsSuspended sql.NullBool
	CreatedAt   sql.NullTime
}

func (n *nullProfile) profile() *models.Profile {
	if !n.Id.Valid {
		return nil
	}
	return &models.Profile{
		Id:          n.Id.String,
		Email:       n.Email.String,
		Name:        n.Name.String,
		Avatar:      n.Avatar.String,
		Role:        models.Role(n.Role.String),
		Bio:         n.Bio.String,
		IsSuspended: n.IsSuspended.Bool,
		CreatedAt:   n.CreatedAt.Time,
	}
}
