package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iamasit07/game-records/internal/domain"
	"github.com/iamasit07/game-records/pkg/uid"
)

type GameRepo struct {
	DB *sql.DB
}

func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{DB: db}
}

const gameSelectFields = `id::text, nome, description, image, user_id, status, updated_by, created_at, updated_at`

// recent reports only read this subset
const gameRecentFields = `id::text, nome, image, user_id, updated_at, updated_by`

type rowScanner interface{ Scan(dest ...any) error }

// scanGame is a helper that scans a row into a Game struct
func scanGame(row rowScanner) (*domain.Game, error) {
	var g domain.Game
	var status string
	err := row.Scan(
		&g.ID,
		&g.Nome,
		&g.Description,
		&g.Image,
		&g.UserID,
		&status,
		&g.UpdatedBy,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	g.Status = domain.GameStatus(status)
	return &g, nil
}

// whereClause renders the filter starting at placeholder $first.
func whereClause(filter domain.GameFilter, first int) (string, []interface{}) {
	switch filter.Kind {
	case domain.FilterByUser:
		return " WHERE user_id = $" + strconv.Itoa(first), []interface{}{filter.UserID}
	case domain.FilterByUserAndStatus:
		return fmt.Sprintf(" WHERE user_id = $%d AND status = $%d", first, first+1),
			[]interface{}{filter.UserID, string(filter.Status)}
	default:
		return "", nil
	}
}

func (r *GameRepo) Find(ctx context.Context, filter domain.GameFilter) ([]domain.Game, error) {
	where, args := whereClause(filter, 1)
	query := `SELECT ` + gameSelectFields + ` FROM games` + where + ` ORDER BY created_at;`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	games := make([]domain.Game, 0)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate games: %w", err)
	}
	return games, nil
}

// FindByID retrieves a game by id; ids that are not UUIDs match nothing
func (r *GameRepo) FindByID(ctx context.Context, id string) (*domain.Game, error) {
	if !uid.Valid(id) {
		return nil, nil
	}
	query := `SELECT ` + gameSelectFields + ` FROM games WHERE id = $1;`
	g, err := scanGame(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}
	return g, nil
}

func (r *GameRepo) FindRecent(ctx context.Context, filter domain.GameFilter, limit int) ([]domain.Game, error) {
	where, args := whereClause(filter, 1)
	query := `SELECT ` + gameRecentFields + ` FROM games` + where +
		` ORDER BY updated_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent games: %w", err)
	}
	defer rows.Close()

	games := make([]domain.Game, 0, limit)
	for rows.Next() {
		var g domain.Game
		if err := rows.Scan(&g.ID, &g.Nome, &g.Image, &g.UserID, &g.UpdatedAt, &g.UpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan recent game row: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent games: %w", err)
	}
	return games, nil
}

func (r *GameRepo) CountByStatus(ctx context.Context, userID string) (domain.StatusDistribution, error) {
	query := `
	SELECT status, COUNT(*)
	FROM games
	WHERE user_id = $1
	GROUP BY status;
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count games by status: %w", err)
	}
	defer rows.Close()

	counts := domain.StatusDistribution{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[domain.GameStatus(status)] = count
	}
	return counts, rows.Err()
}

// Insert assigns the game a new id and stores it
func (r *GameRepo) Insert(ctx context.Context, game *domain.Game) error {
	id := uid.New()
	query := `
	INSERT INTO games (id, nome, description, image, user_id, status, updated_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.DB.ExecContext(ctx, query, id, game.Nome, game.Description, game.Image, game.UserID,
		string(game.Status), game.UpdatedBy, game.CreatedAt, game.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}
	game.ID = id
	return nil
}

// setClause renders the SET list for the supplied patch fields plus updated_at.
func setClause(patch domain.GamePatch, updatedAt time.Time) (string, []interface{}) {
	sets := []string{"updated_at = $1"}
	args := []interface{}{updatedAt}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if patch.Nome != nil {
		add("nome", *patch.Nome)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Image != nil {
		add("image", *patch.Image)
	}
	if patch.UserID != nil {
		add("user_id", *patch.UserID)
	}
	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.UpdatedBy != nil {
		add("updated_by", *patch.UpdatedBy)
	}
	return strings.Join(sets, ", "), args
}

func (r *GameRepo) UpdateByID(ctx context.Context, id string, patch domain.GamePatch, updatedAt time.Time) (*domain.Game, error) {
	if !uid.Valid(id) {
		return nil, nil
	}
	set, args := setClause(patch, updatedAt)
	args = append(args, id)
	query := `UPDATE games SET ` + set + ` WHERE id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + gameSelectFields + `;`

	g, err := scanGame(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}
	return g, nil
}

func (r *GameRepo) DeleteByID(ctx context.Context, id string) (*domain.Game, error) {
	if !uid.Valid(id) {
		return nil, nil
	}
	query := `DELETE FROM games WHERE id = $1 RETURNING ` + gameSelectFields + `;`
	g, err := scanGame(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to delete game: %w", err)
	}
	return g, nil
}
