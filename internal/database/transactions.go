package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"family-fund-go/internal/models"
	"family-fund-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ListTransactions returns the newest transactions of one of the two
// disjoint collections, joined with category and creator profile.
func (s *Service) ListTransactions(ctx context.Context, shared bool, limit int) ([]models.Transaction, error) {
	listQuery, _, _, _ := transactionQueries(shared)

	rows, err := s.db.QueryContext(ctx, listQuery, limit)
	if err != nil {
		zap.L().Error("Failed to query transactions", zap.Bool("shared", shared), zap.Error(err))
		return nil, fmt.Errorf("unable to query transactions: %w", err)
	}
	defer closeRows(rows)

	var transactions []models.Transaction
	for rows.Next() {
		var (
			t          models.Transaction
			amountStr  string
			categoryId sql.NullString
			category   nullCategory
			creator    nullProfile
		)
		err := rows.Scan(&t.Id, &t.AccountId, &amountStr, &t.Type, &categoryId, &t.Date, &t.Note, &t.CreatedBy, &t.Status, &t.CreatedAt,
			&category.Id, &category.Name, &category.Type, &category.Color, &category.Icon, &category.IsDefault,
			&creator.Id, &creator.Email, &creator.Name, &creator.Avatar, &creator.Role, &creator.Bio, &creator.IsSuspended, &creator.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("unable to scan transaction row: %w", err)
		}
		if t.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("unable to parse transaction amount %q: %w", amountStr, err)
		}
		t.Shared = shared
		t.CategoryId = categoryId.String
		t.Category = category.category()
		t.Creator = creator.profile()
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	zap.L().Debug("Retrieved transactions", zap.Bool("shared", shared), zap.Int("count", len(transactions)))
	return transactions, nil
}

// CreateTransaction records a pending transaction. The referenced
// account's balance is untouched until an admin completes it.
func (s *Service) CreateTransaction(ctx context.Context, params store.CreateTransactionParams) (*models.Transaction, error) {
	if params.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("transaction amount must be positive, got %s", params.Amount)
	}
	if params.Type != models.TypeIncome && params.Type != models.TypeExpense {
		return nil, fmt.Errorf("invalid transaction type: %s", params.Type)
	}

	_, insertQuery, _, _ := transactionQueries(params.Shared)

	id := uuid.New().String()
	var categoryId any
	if params.CategoryId != "" {
		categoryId = params.CategoryId
	}
	date := params.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, insertQuery,
		id, params.AccountId, params.Amount.String(), params.Type, categoryId, date, params.Note, params.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("unable to create transaction: %w", err)
	}

	zap.L().Info("Created transaction",
		zap.String("transaction_id", id),
		zap.String("account_id", params.AccountId),
		zap.Bool("shared", params.Shared),
		zap.String("amount", params.Amount.String()),
		zap.String("type", string(params.Type)))

	return &models.Transaction{
		Id:         id,
		AccountId:  params.AccountId,
		Shared:     params.Shared,
		Amount:     params.Amount,
		Type:       params.Type,
		CategoryId: params.CategoryId,
		Date:       date,
		Note:       params.Note,
		CreatedBy:  params.CreatedBy,
		Status:     models.TxPending,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// SetTransactionStatus finalizes a pending transaction. Completing it
// applies the signed amount to the referenced account's balance in the
// same database transaction; rejecting leaves the balance untouched.
// Terminal states cannot transition again.
func (s *Service) SetTransactionStatus(ctx context.Context, id string, shared bool, status models.TransactionStatus) error {
	if status != models.TxCompleted && status != models.TxRejected {
		return fmt.Errorf("invalid target status: %s", status)
	}

	_, _, getStatusQuery, setStatusQuery := transactionQueries(shared)
	balanceGet, balanceSet := queryGetAccountBalance, queryUpdateAccountBalance
	if shared {
		balanceGet, balanceSet = queryGetGroupBalance, queryUpdateGroupBalance
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			zap.L().Warn("Failed to roll back transaction", zap.Error(err))
		}
	}()

	var (
		accountId string
		amountStr string
		txType    models.TransactionType
		current   models.TransactionStatus
	)
	err = tx.QueryRowContext(ctx, getStatusQuery, id).Scan(&accountId, &amountStr, &txType, &current)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("unable to load transaction: %w", err)
	}
	if current != models.TxPending {
		return fmt.Errorf("transaction %s already resolved as %s", id, current)
	}

	if status == models.TxCompleted {
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return fmt.Errorf("unable to parse transaction amount %q: %w", amountStr, err)
		}
		delta := amount
		if txType == models.TypeExpense {
			delta = amount.Neg()
		}

		var balanceStr string
		if err := tx.QueryRowContext(ctx, balanceGet, accountId).Scan(&balanceStr); err != nil {
			return fmt.Errorf("unable to load account balance: %w", err)
		}
		balance, err := decimal.NewFromString(balanceStr)
		if err != nil {
			return fmt.Errorf("unable to parse account balance %q: %w", balanceStr, err)
		}
		if _, err := tx.ExecContext(ctx, balanceSet, balance.Add(delta).String(), accountId); err != nil {
			return fmt.Errorf("unable to update account balance: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, setStatusQuery, status, id); err != nil {
		return fmt.Errorf("unable to update transaction status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("unable to commit transaction: %w", err)
	}

	zap.L().Info("Resolved transaction",
		zap.String("transaction_id", id),
		zap.Bool("shared", shared),
		zap.String("status", string(status)))
	return nil
}

// nullCategory scans an optional LEFT-JOINed category.
type nullCategory struct {
	Id        sql.NullString
	Name      sql.NullString
	Type      sql.NullString
	Color     sql.NullString
	Icon      sql.NullString
	IsDefault sql.NullBool
}

func (n *nullCategory) category() *models.Category {
	if !n.Id.Valid {
		return nil
	}
	return &models.Category{
		Id:        n.Id.String,
		Name:      n.Name.String,
		Type:      models.TransactionType(n.Type.String),
		Color:     n.Color.String,
		Icon:      n.Icon.String,
		IsDefault: n.IsDefault.Bool,
	}
}
