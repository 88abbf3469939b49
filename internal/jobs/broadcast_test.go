package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapedido/zapedido-backend/internal/models"
	"github.com/zapedido/zapedido-backend/internal/storage"
)

func newBroadcastStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	store := storage.NewMemoryStore()
	for _, phone := range []string{"+5511999990001", "+5511999990002"} {
		_, err := store.UpsertClient(&models.Client{Phone: phone, Name: "Ana"})
		require.NoError(t, err)
	}
	return store
}

func TestStartWhileRunningIsRejected(t *testing.T) {
	job := NewBroadcastJob(newBroadcastStore(t), nil)

	require.True(t, job.Start("oferta do dia"))
	assert.False(t, job.Start("oferta do dia"))

	job.Stop()
	assert.Eventually(t, func() bool { return !job.Running() },
		time.Second, 10*time.Millisecond)
}

func TestRestartAfterStopKeepsNewRunAlive(t *testing.T) {
	job := NewBroadcastJob(newBroadcastStore(t), nil)

	require.True(t, job.Start("primeira rodada"))
	job.Stop()
	require.True(t, job.Start("segunda rodada"))

	// let the first run wind down; its cleanup must not clear the flag of
	// the run that replaced it
	time.Sleep(100 * time.Millisecond)
	assert.True(t, job.Running())
	assert.False(t, job.Start("terceira rodada"))

	job.Stop()
	assert.Eventually(t, func() bool { return !job.Running() },
		time.Second, 10*time.Millisecond)
}
