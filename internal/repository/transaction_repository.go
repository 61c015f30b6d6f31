package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hotel-reservation-service/internal/domain"
)

// TransactionRepository encapsulates reservation persistence.
type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	// OccupiedRoomIDs returns ids of rooms with at least one transaction
	// overlapping the requested stay. The WHERE clause is the SQL twin of
	// domain.Transaction.OccupiesStay and must stay in lockstep with it.
	OccupiedRoomIDs(ctx context.Context, stayFrom, stayUntil time.Time) ([]string, error)
}

type transactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository returns a Postgres-backed implementation.
func NewTransactionRepository(pool *pgxpool.Pool) TransactionRepository {
	return &transactionRepository{pool: pool}
}

func (r *transactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	const query = `
        INSERT INTO transactions (reference_code, user_id, customer_id, room_id, check_in, check_out, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		txn.ReferenceCode,
		txn.UserID,
		txn.CustomerID,
		txn.RoomID,
		txn.CheckIn,
		txn.CheckOut,
		txn.Status,
	).Scan(&txn.ID, &txn.CreatedAt, &txn.UpdatedAt)
}

func (r *transactionRepository) OccupiedRoomIDs(ctx context.Context, stayFrom, stayUntil time.Time) ([]string, error) {
	const query = `
        SELECT DISTINCT room_id FROM transactions
        WHERE (check_in <= $1 AND check_out >= $2)
           OR (check_in >= $1 AND check_in <= $2)
           OR (check_out >= $1 AND check_out <= $2)`

	rows, err := r.pool.Query(ctx, query, stayFrom, stayUntil)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
