package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hotel-reservation-service/internal/domain"
)

// RoomRepository provides read access to the room catalogue.
type RoomRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	// ListAvailable returns rooms with at least minCapacity whose ids are not
	// in excludedIDs, ordered by capacity ascending then price ascending.
	ListAvailable(ctx context.Context, minCapacity int, excludedIDs []string) ([]domain.Room, error)
}

type roomRepository struct {
	pool *pgxpool.Pool
}

// NewRoomRepository returns a Postgres-backed implementation.
func NewRoomRepository(pool *pgxpool.Pool) RoomRepository {
	return &roomRepository{pool: pool}
}

const roomColumns = `
        SELECT r.id, r.number, r.capacity, r.price, rt.name, rs.name
        FROM rooms r
        JOIN room_types rt ON rt.id = r.type_id
        JOIN room_statuses rs ON rs.id = r.status_id`

func (r *roomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	const query = roomColumns + ` WHERE r.id=$1`

	var room domain.Room
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&room.ID,
		&room.Number,
		&room.Capacity,
		&room.Price,
		&room.Type,
		&room.Status,
	); err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) ListAvailable(ctx context.Context, minCapacity int, excludedIDs []string) ([]domain.Room, error) {
	const query = roomColumns + `
        WHERE r.capacity >= $1 AND NOT (r.id = ANY($2))
        ORDER BY r.capacity, r.price`

	if excludedIDs == nil {
		excludedIDs = []string{}
	}
	rows, err := r.pool.Query(ctx, query, minCapacity, excludedIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Room
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(
			&room.ID,
			&room.Number,
			&room.Capacity,
			&room.Price,
			&room.Type,
			&room.Status,
		); err != nil {
			return nil, err
		}
		result = append(result, room)
	}
	return result, rows.Err()
}
