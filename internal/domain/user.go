package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Nome         string    `json:"nome"`
	Picture      string    `json:"picture"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Nome, Picture: u.Picture}
}

type RegisterInput struct {
	Username string `json:"username"`
	Nome     string `json:"nome"`
	Picture  string `json:"picture"`
	Password string `json:"password"`
}

func (in *RegisterInput) Normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Nome = strings.TrimSpace(in.Nome)
	in.Picture = strings.TrimSpace(in.Picture)
}

func (in RegisterInput) Validate() error {
	if in.Username == "" {
		return Required("username")
	}
	if len(in.Username) < 3 || len(in.Username) > 50 {
		return &ValidationError{Field: "username", Reason: "must be between 3 and 50 characters"}
	}
	if in.Nome == "" {
		return Required("nome")
	}
	if len(in.Password) < 6 {
		return &ValidationError{Field: "password", Reason: "must be at least 6 characters"}
	}
	return nil
}
