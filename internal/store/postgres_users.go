package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"CAMPUSMARKET_BACK-END/internal/models"
)

// PostgresUserStore implements UserStore on a pgx pool
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new PostgresUserStore
func NewUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

const userColumns = `id, username, email, password_hash, contact_number, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.ContactNumber, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *PostgresUserStore) CreateUser(ctx context.Context, user *models.User) error {
	const q = `
insert into users (id, username, email, password_hash, contact_number, created_at, updated_at)
values ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, q,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.ContactNumber, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateUser
		}
		return err
	}
	return nil
}

func (s *PostgresUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `select ` + userColumns + ` from users where email = $1`
	return scanUser(s.pool.QueryRow(ctx, q, email))
}

func (s *PostgresUserStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `select ` + userColumns + ` from users where id = $1`
	return scanUser(s.pool.QueryRow(ctx, q, id))
}
