package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hotel-reservation-service/internal/domain"
)

// CustomerRepository encapsulates customer persistence.
type CustomerRepository interface {
	// CreateWithUser inserts the user account and its customer profile as a
	// single database transaction. Either both rows exist afterwards or none.
	CreateWithUser(ctx context.Context, user *domain.User, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	// Search filters by case-insensitive name substring OR id substring and
	// orders by id descending. An empty query matches everything.
	Search(ctx context.Context, query string, limit, offset int) ([]domain.Customer, error)
	// CountSearch returns the total match count for the same filter,
	// computed independently of any page.
	CountSearch(ctx context.Context, query string) (int, error)
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a Postgres-backed implementation.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

func (r *customerRepository) CreateWithUser(ctx context.Context, user *domain.User, customer *domain.Customer) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const userQuery = `
        INSERT INTO users (name, email, password_hash, role, avatar)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, userQuery,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Avatar,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return err
	}

	customer.UserID = user.ID
	const customerQuery = `
        INSERT INTO customers (name, address, job, birthdate, gender, user_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, customerQuery,
		customer.Name,
		customer.Address,
		customer.Job,
		customer.Birthdate,
		customer.Gender,
		customer.UserID,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const query = `
        SELECT id, name, address, job, birthdate, gender, user_id, created_at, updated_at
        FROM customers WHERE id=$1`

	var customer domain.Customer
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Address,
		&customer.Job,
		&customer.Birthdate,
		&customer.Gender,
		&customer.UserID,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &customer, nil
}

// searchFilter matches a name substring case-insensitively OR an id
// substring. The OR is deliberate: a row whose name does not match still
// returns when its id contains the query.
const searchFilter = `(name ILIKE $1 OR id::text LIKE $1)`

func (r *customerRepository) Search(ctx context.Context, query string, limit, offset int) ([]domain.Customer, error) {
	base := `SELECT id, name, address, job, birthdate, gender, user_id, created_at, updated_at FROM customers`
	order := ` ORDER BY id DESC LIMIT $2 OFFSET $3`

	var result []domain.Customer
	sql := base + ` WHERE ` + searchFilter + order
	args := []any{"%" + query + "%", limit, offset}
	if query == "" {
		sql = base + ` ORDER BY id DESC LIMIT $1 OFFSET $2`
		args = []any{limit, offset}
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(
			&customer.ID,
			&customer.Name,
			&customer.Address,
			&customer.Job,
			&customer.Birthdate,
			&customer.Gender,
			&customer.UserID,
			&customer.CreatedAt,
			&customer.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, customer)
	}
	return result, rows.Err()
}

func (r *customerRepository) CountSearch(ctx context.Context, query string) (int, error) {
	sql := `SELECT COUNT(*) FROM customers`
	args := []any{}
	if query != "" {
		sql += ` WHERE ` + searchFilter
		args = append(args, "%"+query+"%")
	}

	var count int
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
