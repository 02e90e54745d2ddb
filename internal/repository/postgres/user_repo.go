package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iamasit07/game-records/internal/domain"
	"github.com/iamasit07/game-records/pkg/uid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

type UserRepo struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

const userSelectFields = `id::text, username, nome, picture, password_hash, created_at`

// scanUser is a helper that scans a row into a User struct
func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Nome,
		&user.Picture,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts the user and returns its new id
func (r *UserRepo) CreateUser(ctx context.Context, u domain.User) (string, error) {
	id := uid.New()
	query := `
	INSERT INTO users (id, username, nome, picture, password_hash)
	VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.DB.ExecContext(ctx, query, id, u.Username, u.Nome, u.Picture, u.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", fmt.Errorf("username %q: %w", u.Username, domain.ErrConflict)
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepo) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if !uid.Valid(id) {
		return nil, nil
	}
	query := `SELECT ` + userSelectFields + ` FROM users WHERE id = $1;`
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username
func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userSelectFields + ` FROM users WHERE username = $1;`
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// FindByIDs retrieves every user whose id is in ids; unknown ids are skipped
func (r *UserRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	users := make([]domain.User, 0, len(ids))
	valid := validIDs(ids)
	if len(valid) == 0 {
		return users, nil
	}

	query := `SELECT ` + userSelectFields + ` FROM users WHERE id = ANY($1::uuid[]);`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(valid))
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// validIDs drops ids that are not uuids; they cannot match a row and would fail the cast.
func validIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if uid.Valid(id) {
			valid = append(valid, id)
		}
	}
	return valid
}
