package bot

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStoreRoundTrip(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	got, err := store.Get(ctx, "chat-1")
	require.NoError(t, err)
	assert.Nil(t, got, "missing session should be (nil, nil)")

	cal := 320.0
	session := &Session{
		ChatKey: "chat-1",
		UserID:  uuid.New(),
		State:   StateFoodLogConfirm,
		Draft:   &ProfileDraft{Age: 30, Gender: "male", HeightCm: 180},
		PendingFood: &PendingFood{
			Description: "oatmeal with banana",
			Name:        "Oatmeal with banana",
			Calories:    &cal,
		},
		QuickWeightUpdate: true,
	}
	session.AppendHistory("user", "hello")
	session.AppendHistory("assistant", "hi there")

	require.NoError(t, store.Save(ctx, session))

	got, err = store.Get(ctx, "chat-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.UserID, got.UserID)
	assert.Equal(t, StateFoodLogConfirm, got.State)
	require.NotNil(t, got.Draft)
	assert.Equal(t, 30, got.Draft.Age)
	require.NotNil(t, got.PendingFood)
	require.NotNil(t, got.PendingFood.Calories)
	assert.Equal(t, 320.0, *got.PendingFood.Calories)
	assert.True(t, got.QuickWeightUpdate)
	assert.Len(t, got.History, 2)

	// Mutating the returned copy must not leak into the store.
	got.State = StateIdle
	again, err := store.Get(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, StateFoodLogConfirm, again.State)

	require.NoError(t, store.Delete(ctx, "chat-1"))
	got, err = store.Get(ctx, "chat-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionHistoryWindow(t *testing.T) {
	session := &Session{ChatKey: "chat-1"}

	for i := 0; i < 30; i++ {
		session.AppendHistory("user", fmt.Sprintf("message %d", i))
	}

	assert.Len(t, session.History, historyKeep)
	assert.Equal(t, "message 10", session.History[0].Content, "oldest messages are dropped")

	recent := session.RecentHistory()
	assert.Len(t, recent, historySend)
	assert.Equal(t, "message 29", recent[len(recent)-1].Content)
}

func TestSessionResetFlowKeepsHistory(t *testing.T) {
	session := &Session{
		ChatKey:           "chat-1",
		State:             StateProfileHeight,
		Draft:             &ProfileDraft{Age: 25},
		PendingFood:       &PendingFood{Description: "soup"},
		QuickWeightUpdate: true,
	}
	session.AppendHistory("user", "question")

	session.ResetFlow()

	assert.Equal(t, StateIdle, session.State)
	assert.Nil(t, session.Draft)
	assert.Nil(t, session.PendingFood)
	assert.False(t, session.QuickWeightUpdate)
	assert.Len(t, session.History, 1, "chat history survives a flow reset")
}
