package persistent

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ordersaga/internal/payments/entity"
	"ordersaga/pkg/postgres"
	"ordersaga/pkg/types/errs"
)

const (
	accountsTable = "bank_accounts"

	accIDColumn      = "id"
	accUserIDColumn  = "user_id"
	accBalanceColumn = "balance"
)

type AccountRepo struct {
	*postgres.Postgres
}

func NewAccountRepo(pg *postgres.Postgres) *AccountRepo {
	return &AccountRepo{pg}
}

func (r *AccountRepo) CreateIfAbsent(ctx context.Context, account *entity.Account) (bool, *entity.Account, error) {
	sql, args, err := r.Builder.
		Insert(accountsTable).
		Columns(accIDColumn, accUserIDColumn, accBalanceColumn).
		Values(account.ID, account.UserID, account.Balance).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, nil, fmt.Errorf("AccountRepo - CreateIfAbsent - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return false, nil, fmt.Errorf("AccountRepo - CreateIfAbsent - executor.Exec: %w", err)
	}

	if tag.RowsAffected() > 0 {
		return true, account, nil
	}

	// Conflict on user_id: another call won the race, return its row.
	existing, err := r.GetByUser(ctx, account.UserID)
	if err != nil {
		return false, nil, fmt.Errorf("AccountRepo - CreateIfAbsent - r.GetByUser: %w", err)
	}

	return false, existing, nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	return r.getBy(ctx, squirrel.Eq{accIDColumn: id}, "GetByID")
}

func (r *AccountRepo) GetByUser(ctx context.Context, userID int) (*entity.Account, error) {
	return r.getBy(ctx, squirrel.Eq{accUserIDColumn: userID}, "GetByUser")
}

func (r *AccountRepo) getBy(ctx context.Context, where squirrel.Eq, op string) (*entity.Account, error) {
	sql, args, err := r.Builder.
		Select(accIDColumn, accUserIDColumn, accBalanceColumn).
		From(accountsTable).
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("AccountRepo - %s - r.Builder.ToSql: %w", op, err)
	}

	executor := r.GetExecutor(ctx)

	var account entity.Account
	err = executor.QueryRow(ctx, sql, args...).Scan(&account.ID, &account.UserID, &account.Balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("AccountRepo - %s: %w", op, errs.ErrRecordNotFound)
		}

		return nil, fmt.Errorf("AccountRepo - %s - executor.QueryRow: %w", op, err)
	}

	return &account, nil
}

func (r *AccountRepo) Deposit(ctx context.Context, id uuid.UUID, amount int64) (int64, error) {
	sql, args, err := r.Builder.
		Update(accountsTable).
		Set(accBalanceColumn, squirrel.Expr(accBalanceColumn+" + ?", amount)).
		Where(squirrel.Eq{accIDColumn: id}).
		Suffix("RETURNING " + accBalanceColumn).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("AccountRepo - Deposit - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var balance int64
	err = executor.QueryRow(ctx, sql, args...).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("AccountRepo - Deposit: %w", errs.ErrRecordNotFound)
		}

		return 0, fmt.Errorf("AccountRepo - Deposit - executor.QueryRow: %w", err)
	}

	return balance, nil
}

// DebitLocked holds the row lock until the surrounding transaction ends,
// so concurrent settlements against one account serialize here.
func (r *AccountRepo) DebitLocked(ctx context.Context, id uuid.UUID, amount int64) error {
	sql, args, err := r.Builder.
		Select(accBalanceColumn).
		From(accountsTable).
		Where(squirrel.Eq{accIDColumn: id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("AccountRepo - DebitLocked - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var balance int64
	err = executor.QueryRow(ctx, sql, args...).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("AccountRepo - DebitLocked: %w", errs.ErrRecordNotFound)
		}

		return fmt.Errorf("AccountRepo - DebitLocked - executor.QueryRow: %w", err)
	}

	if balance < amount {
		return fmt.Errorf("AccountRepo - DebitLocked - balance %d, need %d: %w", balance, amount, errs.ErrNotEnoughFunds)
	}

	sql, args, err = r.Builder.
		Update(accountsTable).
		Set(accBalanceColumn, squirrel.Expr(accBalanceColumn+" - ?", amount)).
		Where(squirrel.Eq{accIDColumn: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("AccountRepo - DebitLocked - r.Builder.ToSql: %w", err)
	}

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("AccountRepo - DebitLocked - executor.Exec: %w", err)
	}

	return nil
}
