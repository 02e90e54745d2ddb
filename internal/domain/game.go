package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// to represent where a player is with a game
type GameStatus string

const (
	StatusPendente  GameStatus = "Pendente"
	StatusProgresso GameStatus = "Progresso"
	StatusPausado   GameStatus = "Pausado"
	StatusCompleto  GameStatus = "Completo"
)

// DefaultStatus is applied on create when no status is supplied.
const DefaultStatus = StatusPendente

// RecentLimit caps the "recently updated" reports.
const RecentLimit = 5

// UnknownUser replaces the owner summary when the owning user does not exist.
const UnknownUser = "Unknown"

var GameStatuses = []GameStatus{StatusPendente, StatusProgresso, StatusPausado, StatusCompleto}

func (s GameStatus) Valid() bool {
	for _, known := range GameStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseGameStatus checks raw against the status whitelist.
func ParseGameStatus(raw string) (GameStatus, error) {
	status := GameStatus(raw)
	if !status.Valid() {
		return "", invalidStatus(raw)
	}
	return status, nil
}

func invalidStatus(raw string) *ValidationError {
	names := make([]string, 0, len(GameStatuses))
	for _, s := range GameStatuses {
		names = append(names, string(s))
	}
	return &ValidationError{
		Field:  "status",
		Reason: fmt.Sprintf("%q must be one of %s", raw, strings.Join(names, ", ")),
	}
}

type Game struct {
	ID          string     `json:"id"`
	Nome        string     `json:"nome"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	UserID      string     `json:"userId"`
	Status      GameStatus `json:"status"`
	UpdatedBy   string     `json:"updatedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// GameInput is the payload accepted by create.
type GameInput struct {
	Nome        string     `json:"nome"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	UserID      string     `json:"userId"`
	Status      GameStatus `json:"status,omitempty"`
	UpdatedBy   string     `json:"updatedBy,omitempty"`
}

func (in GameInput) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"nome", in.Nome},
		{"description", in.Description},
		{"image", in.Image},
		{"userId", in.UserID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return Required(r.field)
		}
	}
	if in.Status != "" && !in.Status.Valid() {
		return invalidStatus(string(in.Status))
	}
	return nil
}

// NewGame builds the record to persist. ID is left for the store.
func (in GameInput) NewGame(now time.Time) Game {
	status := in.Status
	if status == "" {
		status = DefaultStatus
	}
	return Game{
		Nome:        in.Nome,
		Description: in.Description,
		Image:       in.Image,
		UserID:      in.UserID,
		Status:      status,
		UpdatedBy:   in.UpdatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// GamePatch is a partial update; nil fields are left untouched.
type GamePatch struct {
	Nome        *string     `json:"nome,omitempty"`
	Description *string     `json:"description,omitempty"`
	Image       *string     `json:"image,omitempty"`
	UserID      *string     `json:"userId,omitempty"`
	Status      *GameStatus `json:"status,omitempty"`
	UpdatedBy   *string     `json:"updatedBy,omitempty"`
}

func (p GamePatch) Validate() error {
	blankable := []struct {
		field string
		value *string
	}{
		{"nome", p.Nome},
		{"description", p.Description},
		{"image", p.Image},
		{"userId", p.UserID},
	}
	for _, b := range blankable {
		if b.value != nil && strings.TrimSpace(*b.value) == "" {
			return Required(b.field)
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalidStatus(string(*p.Status))
	}
	return nil
}

// Apply merges the supplied fields into g and re-stamps UpdatedAt.
func (p GamePatch) Apply(g *Game, now time.Time) {
	if p.Nome != nil {
		g.Nome = *p.Nome
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.Image != nil {
		g.Image = *p.Image
	}
	if p.UserID != nil {
		g.UserID = *p.UserID
	}
	if p.Status != nil {
		g.Status = *p.Status
	}
	if p.UpdatedBy != nil {
		g.UpdatedBy = *p.UpdatedBy
	}
	g.UpdatedAt = now
}

// UserSummary is the owner view attached to enriched games.
type UserSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GameOwner serializes as a UserSummary object, or as "Unknown" when Summary is nil.
type GameOwner struct {
	Summary *UserSummary
}

func (o GameOwner) Known() bool {
	return o.Summary != nil
}

func (o GameOwner) MarshalJSON() ([]byte, error) {
	if o.Summary == nil {
		return json.Marshal(UnknownUser)
	}
	return json.Marshal(o.Summary)
}

func (o *GameOwner) UnmarshalJSON(data []byte) error {
	var marker string
	if err := json.Unmarshal(data, &marker); err == nil {
		if marker != UnknownUser {
			return fmt.Errorf("unexpected owner marker %q", marker)
		}
		o.Summary = nil
		return nil
	}
	var summary UserSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return err
	}
	o.Summary = &summary
	return nil
}

// RecentGame is the projected, enriched row of the "recently updated" reports.
type RecentGame struct {
	ID        string    `json:"id"`
	Nome      string    `json:"nome"`
	Image     string    `json:"image"`
	UserID    string    `json:"userId,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
	User      GameOwner `json:"user"`
}

// StatusDistribution counts one user's games per status. Statuses with no games are absent.
type StatusDistribution map[GameStatus]int
