package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countCalls(calls []string, prefix string) int {
	n := 0
	for _, c := range calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func TestTransferFreeAgentMovesWithoutConfirmation(t *testing.T) {
	env := newTestEnv(t)
	target := env.seedClub("Club Regatas")
	athlete := env.seedPerson("111", "Ana", "Paz", "", "", "")
	env.seedAthlete(athlete, nil)

	result, err := env.transfers.Transfer(bg, TransferInput{AthleteID: athlete, ClubID: target})
	require.NoError(t, err)

	assert.Equal(t, TransferCompleted, result.Outcome)
	assert.Equal(t, "Agente Libre", result.FromClubName)
	assert.Nil(t, result.FromClubID)
	assert.Equal(t, "Club Regatas", result.ToClubName)
	rec, _ := env.backend.Record("Atleta", athlete)
	assert.EqualValues(t, target, rec["idClub"])
}

func TestTransferBetweenClubsNeedsConfirmation(t *testing.T) {
	env := newTestEnv(t)
	from := env.seedClub("Club Hacoaj")
	to := env.seedClub("Club Regatas")
	athlete := env.seedPerson("111", "Ana", "Paz", "", "", "")
	env.seedAthlete(athlete, ptr(from))

	result, err := env.transfers.Transfer(bg, TransferInput{AthleteID: athlete, ClubID: to})
	require.NoError(t, err)

	assert.Equal(t, TransferNeedsConfirmation, result.Outcome)
	assert.Equal(t, "Club Hacoaj", result.FromClubName)
	assert.Empty(t, result.RunID)
	assert.Zero(t, countCalls(env.backend.Calls(), "PUT "))
	rec, _ := env.backend.Record("Atleta", athlete)
	assert.EqualValues(t, from, rec["idClub"])
}

func TestTransferConfirmedPreservesOtherFields(t *testing.T) {
	env := newTestEnv(t)
	from := env.seedClub("Club Hacoaj")
	to := env.seedClub("Club Regatas")
	athlete := env.seedPerson("111", "Ana", "Paz", "", "", "")
	env.seedAthlete(athlete, ptr(from))

	result, err := env.transfers.Transfer(bg, TransferInput{AthleteID: athlete, ClubID: to, Confirmed: true})
	require.NoError(t, err)

	assert.Equal(t, TransferCompleted, result.Outcome)
	assert.NotEmpty(t, result.RunID)
	rec, _ := env.backend.Record("Atleta", athlete)
	assert.EqualValues(t, to, rec["idClub"])
	assert.Equal(t, "zurdo", rec["observaciones"])
	assert.EqualValues(t, 2, rec["categoria"])
	assert.Equal(t, 1, countCalls(env.backend.Calls(), "PUT /Atleta/"))
}

func TestTransferToSameClubIsUnchanged(t *testing.T) {
	env := newTestEnv(t)
	club := env.seedClub("Club Regatas")
	athlete := env.seedPerson("111", "Ana", "Paz", "", "", "")
	env.seedAthlete(athlete, ptr(club))

	result, err := env.transfers.Transfer(bg, TransferInput{AthleteID: athlete, ClubID: club, Confirmed: true})
	require.NoError(t, err)

	assert.Equal(t, TransferUnchanged, result.Outcome)
	assert.Zero(t, countCalls(env.backend.Calls(), "PUT "))
}

func TestTransferUnknownParties(t *testing.T) {
	env := newTestEnv(t)
	club := env.seedClub("Club Regatas")
	athlete := env.seedPerson("111", "Ana", "Paz", "", "", "")
	env.seedAthlete(athlete, nil)

	_, err := env.transfers.Transfer(bg, TransferInput{AthleteID: 4040, ClubID: club})
	assert.ErrorIs(t, err, ErrAthleteNotFound)

	_, err = env.transfers.Transfer(bg, TransferInput{AthleteID: athlete, ClubID: 4040})
	assert.ErrorIs(t, err, ErrClubNotFound)

	_, err = env.transfers.Transfer(bg, TransferInput{})
	assert.ErrorIs(t, err, ErrValidationFailed)
}
