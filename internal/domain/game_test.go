package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() GameInput {
	return GameInput{
		Nome:        "Hollow Knight",
		Description: "metroidvania",
		Image:       "https://img.example/hk.png",
		UserID:      "user-1",
	}
}

func TestGameInputValidateRequiredFields(t *testing.T) {
	cases := []struct {
		field  string
		mutate func(*GameInput)
	}{
		{"nome", func(in *GameInput) { in.Nome = "" }},
		{"description", func(in *GameInput) { in.Description = "  " }},
		{"image", func(in *GameInput) { in.Image = "" }},
		{"userId", func(in *GameInput) { in.UserID = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			err := in.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestGameInputValidateStatus(t *testing.T) {
	in := validInput()
	in.Status = "Bogus"
	err := in.Validate()
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "status")

	for _, s := range GameStatuses {
		in.Status = s
		assert.NoError(t, in.Validate())
	}
}

func TestNewGameDefaultsStatus(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	g := validInput().NewGame(now)
	assert.Equal(t, DefaultStatus, g.Status)
	assert.Equal(t, now, g.CreatedAt)
	assert.Equal(t, now, g.UpdatedAt)
	assert.Empty(t, g.ID)

	in := validInput()
	in.Status = StatusCompleto
	assert.Equal(t, StatusCompleto, in.NewGame(now).Status)
}

func TestGamePatchValidate(t *testing.T) {
	bogus := GameStatus("Bogus")
	assert.ErrorIs(t, GamePatch{Status: &bogus}.Validate(), ErrInvalidInput)

	blank := ""
	assert.ErrorIs(t, GamePatch{Nome: &blank}.Validate(), ErrInvalidInput)

	assert.NoError(t, GamePatch{}.Validate())
}

func TestGamePatchApply(t *testing.T) {
	before := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	after := before.Add(time.Hour)
	g := validInput().NewGame(before)

	status := StatusPausado
	name := "Silksong"
	GamePatch{Nome: &name, Status: &status}.Apply(&g, after)

	assert.Equal(t, "Silksong", g.Nome)
	assert.Equal(t, StatusPausado, g.Status)
	assert.Equal(t, "metroidvania", g.Description)
	assert.Equal(t, after, g.UpdatedAt)
	assert.Equal(t, before, g.CreatedAt)
}

func TestParseGameStatus(t *testing.T) {
	s, err := ParseGameStatus("Progresso")
	require.NoError(t, err)
	assert.Equal(t, StatusProgresso, s)

	_, err = ParseGameStatus("progresso")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGameOwnerJSON(t *testing.T) {
	unknown, err := json.Marshal(RecentGame{ID: "g1"})
	require.NoError(t, err)
	assert.Contains(t, string(unknown), `"user":"Unknown"`)

	known, err := json.Marshal(GameOwner{Summary: &UserSummary{ID: "u1", Name: "Ana", Picture: "p.png"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u1","name":"Ana","picture":"p.png"}`, string(known))

	var decoded GameOwner
	require.NoError(t, json.Unmarshal(known, &decoded))
	require.True(t, decoded.Known())
	assert.Equal(t, "Ana", decoded.Summary.Name)

	require.NoError(t, json.Unmarshal([]byte(`"Unknown"`), &decoded))
	assert.False(t, decoded.Known())

	assert.Error(t, json.Unmarshal([]byte(`"Someone"`), &decoded))
}

func TestGameFilterMatches(t *testing.T) {
	g := Game{UserID: "u1", Status: StatusProgresso}

	assert.True(t, AllGames().Matches(g))
	assert.True(t, ByUser("u1").Matches(g))
	assert.False(t, ByUser("u2").Matches(g))
	assert.True(t, ByUserAndStatus("u1", StatusProgresso).Matches(g))
	assert.False(t, ByUserAndStatus("u1", StatusCompleto).Matches(g))
}

func TestRegisterInputValidate(t *testing.T) {
	in := RegisterInput{Username: " ana ", Nome: "Ana", Password: "secret1"}
	in.Normalize()
	assert.Equal(t, "ana", in.Username)
	assert.NoError(t, in.Validate())

	short := in
	short.Password = "123"
	assert.ErrorIs(t, short.Validate(), ErrInvalidInput)

	tiny := in
	tiny.Username = "ab"
	assert.ErrorIs(t, tiny.Validate(), ErrInvalidInput)
}
