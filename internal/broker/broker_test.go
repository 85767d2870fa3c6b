// internal/broker/broker_test.go
package broker

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketrealm/arena-service/internal/models"
)

func TestConsumeChallengeCreatesMatch(t *testing.T) {
	var got *models.Challenge
	b := &Broker{CreateMatchFn: func(ch models.Challenge) { got = &ch }}

	ch := models.Challenge{
		GameType:    models.GameConnectFour,
		Challenger:  models.Participant{ID: uuid.New(), Name: "ava"},
		Target:      models.Participant{ID: uuid.New(), Name: "finn"},
		WagerAmount: 75,
		Room:        "plaza",
	}
	data, err := json.Marshal(ch)
	require.NoError(t, err)

	b.consumeChallenge(data)

	require.NotNil(t, got)
	assert.Equal(t, ch.GameType, got.GameType)
	assert.Equal(t, ch.Challenger.ID, got.Challenger.ID)
	assert.Equal(t, ch.Target.ID, got.Target.ID)
	assert.Equal(t, ch.WagerAmount, got.WagerAmount)
	assert.Equal(t, ch.Room, got.Room)
}

func TestConsumeChallengeRejectsMalformedPayload(t *testing.T) {
	called := false
	b := &Broker{CreateMatchFn: func(models.Challenge) { called = true }}

	b.consumeChallenge([]byte("{not json"))
	assert.False(t, called)
}

func TestConsumeChallengeWithoutSinkDoesNotPanic(t *testing.T) {
	b := &Broker{}
	data, err := json.Marshal(models.Challenge{GameType: models.GameTicTacToe})
	require.NoError(t, err)

	assert.NotPanics(t, func() { b.consumeChallenge(data) })
}
