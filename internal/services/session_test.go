package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapedido/zapedido-backend/internal/models"
	"github.com/zapedido/zapedido-backend/internal/storage"
)

const testPhone = "+5511999990000"

func seedCatalog(t *testing.T, store storage.Store) {
	t.Helper()
	products := []models.Product{
		{Name: "manga", Aliases: "mangas", Enabled: true},
		{Name: "queijo", Aliases: "queijos", Enabled: true},
		{Name: "uva", Aliases: "uvas", Enabled: false},
	}
	for i := range products {
		_, err := store.CreateProduct(&products[i])
		require.NoError(t, err)
	}
}

func newTestManager(t *testing.T) (*SessionManager, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	seedCatalog(t, store)
	sm := NewSessionManager(store, nil)
	sm.confirmDelay = 40 * time.Millisecond
	sm.reminderDelay = 40 * time.Millisecond
	return sm, store
}

func send(t *testing.T, sm *SessionManager, text string) *ProcessResult {
	t.Helper()
	result, err := sm.ProcessMessage(testPhone, text, MessageText, Metadata{Name: "Ana"})
	require.NoError(t, err)
	return result
}

func snapshot(t *testing.T, sm *SessionManager) *SessionSnapshot {
	t.Helper()
	snap, ok := sm.GetSessionSnapshot(testPhone)
	require.True(t, ok)
	return snap
}

func startCollecting(t *testing.T, sm *SessionManager) {
	t.Helper()
	send(t, sm, "oi")
	result := send(t, sm, "1")
	require.Equal(t, StateCollecting, result.State)
}

func TestFullOrderFlow(t *testing.T) {
	sm, store := newTestManager(t)
	sm.confirmDelay = time.Minute // keep timers out of this test
	sm.reminderDelay = time.Minute

	result := send(t, sm, "oi")
	assert.Equal(t, StateOption, result.State)
	require.NotEmpty(t, result.Outbound)
	assert.Contains(t, result.Outbound[0], "1️⃣")

	startCollectingResult := send(t, sm, "1")
	assert.Equal(t, StateCollecting, startCollectingResult.State)

	send(t, sm, "2 mangas e 3 queijos")
	snap := snapshot(t, sm)
	assert.Equal(t, map[string]int{"manga": 2, "queijo": 3}, snap.Ledger)

	result = send(t, sm, "pronto")
	assert.Equal(t, StateConfirming, result.State)
	require.Len(t, result.Outbound, 1)
	assert.Contains(t, result.Outbound[0], "2x manga")
	assert.Contains(t, result.Outbound[0], "3x queijo")

	result = send(t, sm, "confirmar")
	assert.Equal(t, StateWaitingNext, result.State)

	orders, err := store.GetOrders(models.OrderStatusConfirmed)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, testPhone, orders[0].Phone)
	assert.Len(t, orders[0].Items, 2)
	assert.Contains(t, orders[0].OriginalText, "2 mangas")

	snap = snapshot(t, sm)
	assert.Empty(t, snap.Ledger)
	assert.Equal(t, 0, snap.ReminderCount)

	totals, err := store.GetProductTotals()
	require.NoError(t, err)
	assert.Len(t, totals, 2)
}

func TestInactivityTimeoutShowsSummaryOnce(t *testing.T) {
	sm, _ := newTestManager(t)
	sm.reminderDelay = time.Minute // only the inactivity timer in play

	startCollecting(t, sm)
	send(t, sm, "2 mangas")

	require.Eventually(t, func() bool {
		snap, ok := sm.GetSessionSnapshot(testPhone)
		return ok && snap.State == StateConfirming
	}, time.Second, 10*time.Millisecond)

	pending := sm.DrainPending(testPhone)
	require.Len(t, pending, 1)
	assert.Contains(t, pending[0], "Resumo")
}

func TestInactivityWithEmptyLedgerStaysCollecting(t *testing.T) {
	sm, _ := newTestManager(t)
	sm.reminderDelay = time.Minute

	startCollecting(t, sm)
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, StateCollecting, snapshot(t, sm).State)
}

func TestReminderExhaustionPersistsPending(t *testing.T) {
	sm, store := newTestManager(t)
	sm.confirmDelay = time.Minute
	sm.reminderDelay = 25 * time.Millisecond

	startCollecting(t, sm)
	send(t, sm, "2 mangas")
	result := send(t, sm, "pronto")
	require.Equal(t, StateConfirming, result.State)

	require.Eventually(t, func() bool {
		snap, ok := sm.GetSessionSnapshot(testPhone)
		return ok && snap.State == StateWaitingNext
	}, 2*time.Second, 10*time.Millisecond)

	orders, err := store.GetOrders(models.OrderStatusPending)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderStatusPending, orders[0].Status)

	assert.Empty(t, snapshot(t, sm).Ledger)
}

func TestCancelResetsFromAnyState(t *testing.T) {
	sm, _ := newTestManager(t)
	sm.confirmDelay = time.Minute
	sm.reminderDelay = time.Minute

	// from collecting with items
	startCollecting(t, sm)
	send(t, sm, "2 mangas")
	result := send(t, sm, "cancelar")
	assert.Equal(t, StateWaitingNext, result.State)
	assert.Empty(t, snapshot(t, sm).Ledger)

	// from waiting_for_next
	result = send(t, sm, "nao")
	assert.Equal(t, StateWaitingNext, result.State)
	assert.Empty(t, snapshot(t, sm).Ledger)

	// from option
	send(t, sm, "oi")
	result = send(t, sm, "cancelar")
	assert.Equal(t, StateWaitingNext, result.State)
}

func TestDenyInConfirmingReturnsToCollecting(t *testing.T) {
	sm, _ := newTestManager(t)
	sm.confirmDelay = time.Minute
	sm.reminderDelay = time.Minute

	startCollecting(t, sm)
	send(t, sm, "2 mangas")
	send(t, sm, "pronto")

	result := send(t, sm, "não")
	assert.Equal(t, StateCollecting, result.State)
	assert.Empty(t, snapshot(t, sm).Ledger)
}

func TestAddingItemsWhileConfirming(t *testing.T) {
	sm, _ := newTestManager(t)
	sm.confirmDelay = time.Minute
	sm.reminderDelay = time.Minute

	startCollecting(t, sm)
	send(t, sm, "2 mangas")
	send(t, sm, "pronto")

	result := send(t, sm, "3 queijos")
	assert.Equal(t, StateCollecting, result.State)
	snap := snapshot(t, sm)
	assert.Equal(t, 3, snap.Ledger["queijo"])
	assert.Equal(t, 2, snap.Ledger["manga"])
	assert.Equal(t, 0, snap.ReminderCount)
}

func TestUnrecognizedWhileConfirmingStays(t *testing.T) {
	sm, _ := newTestManager(t)
	sm.confirmDelay = time.Minute
	sm.reminderDelay = time.Minute

	startCollecting(t, sm)
	send(t, sm, "2 mangas")
	send(t, sm, "pronto")

	result := send(t, sm, "hmmm deixa eu pensar")
	assert.Equal(t, StateConfirming, result.State)
	require.NotEmpty(t, result.Outbound)
}

func TestProntoWithEmptyLedger(t *testing.T) {
	sm, _ := newTestManager(t)
	sm.reminderDelay = time.Minute

	startCollecting(t, sm)
	result := send(t, sm, "pronto")
	assert.Equal(t, StateCollecting, result.State)
	require.NotEmpty(t, result.Outbound)
	assert.Contains(t, result.Outbound[0], "vazio")
}

func TestNonTextMessageShowsMenu(t *testing.T) {
	sm, _ := newTestManager(t)

	result, err := sm.ProcessMessage(testPhone, "", MessageOther, Metadata{})
	require.NoError(t, err)
	assert.Equal(t, StateOption, result.State)
	require.NotEmpty(t, result.Outbound)
}

func TestHandoffAndReactivation(t *testing.T) {
	sm, store := newTestManager(t)
	_, err := store.UpsertClient(&models.Client{Phone: testPhone, Name: "Ana"})
	require.NoError(t, err)

	send(t, sm, "oi")
	result := send(t, sm, "2")
	assert.False(t, result.BotActive)
	assert.Equal(t, StateWaitingNext, result.State)

	// while handed off, the bot stays quiet
	result = send(t, sm, "oi de novo")
	assert.False(t, result.BotActive)
	assert.Empty(t, result.Outbound)

	result = send(t, sm, "voltar")
	assert.True(t, result.BotActive)
	assert.Equal(t, StateOption, result.State)
	require.NotEmpty(t, result.Outbound)

	client, err := store.GetClientByPhone(testPhone)
	require.NoError(t, err)
	assert.True(t, client.BotActive)
}

func TestDisabledProductReported(t *testing.T) {
	sm, _ := newTestManager(t)
	sm.confirmDelay = time.Minute
	sm.reminderDelay = time.Minute

	startCollecting(t, sm)
	result := send(t, sm, "2 uvas")
	require.NotEmpty(t, result.Outbound)
	assert.Contains(t, result.Outbound[0], "uva")
	assert.Empty(t, snapshot(t, sm).Ledger)
	assert.Equal(t, StateCollecting, result.State)
}

func TestInvalidMenuOptionRepeatsMenu(t *testing.T) {
	sm, _ := newTestManager(t)

	send(t, sm, "oi")
	result := send(t, sm, "9")
	assert.Equal(t, StateOption, result.State)
	require.NotEmpty(t, result.Outbound)
	assert.Contains(t, result.Outbound[0], "1️⃣")
}

func TestCatalogAndHelpOptions(t *testing.T) {
	sm, _ := newTestManager(t)

	send(t, sm, "oi")
	result := send(t, sm, "3")
	assert.Equal(t, StateOption, result.State)
	require.NotEmpty(t, result.Outbound)
	assert.Contains(t, result.Outbound[0], "manga")
	assert.NotContains(t, result.Outbound[0], "uva") // disabled stays hidden

	result = send(t, sm, "4")
	assert.Equal(t, StateOption, result.State)
	require.NotEmpty(t, result.Outbound)
	assert.Contains(t, result.Outbound[0], "pronto")
}

type failingStore struct {
	*storage.MemoryStore
	failConfirm bool
}

func (f *failingStore) AddConfirmedOrder(order *models.Order) (*models.Order, error) {
	if f.failConfirm {
		return nil, fmt.Errorf("store unavailable")
	}
	return f.MemoryStore.AddConfirmedOrder(order)
}

func TestConfirmSurvivesPersistenceFailure(t *testing.T) {
	store := &failingStore{MemoryStore: storage.NewMemoryStore(), failConfirm: true}
	seedCatalog(t, store)
	sm := NewSessionManager(store, nil)
	sm.confirmDelay = time.Minute
	sm.reminderDelay = time.Minute

	startCollecting(t, sm)
	send(t, sm, "2 mangas")
	send(t, sm, "pronto")

	result := send(t, sm, "confirmar")
	assert.Equal(t, StateConfirming, result.State, "failed persist must not complete the transition")
	assert.NotEmpty(t, snapshot(t, sm).Ledger)

	store.failConfirm = false
	result = send(t, sm, "confirmar")
	assert.Equal(t, StateWaitingNext, result.State)

	orders, err := store.GetOrders(models.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

type failingPendingStore struct {
	*storage.MemoryStore
}

func (f *failingPendingStore) AddPendingOrder(order *models.Order) (*models.Order, error) {
	return nil, fmt.Errorf("store unavailable")
}

func TestPendingPersistFailureStopsReminderCycle(t *testing.T) {
	store := &failingPendingStore{MemoryStore: storage.NewMemoryStore()}
	seedCatalog(t, store)
	sm := NewSessionManager(store, nil)
	sm.confirmDelay = time.Minute
	sm.reminderDelay = 25 * time.Millisecond

	startCollecting(t, sm)
	send(t, sm, "2 mangas")
	send(t, sm, "pronto")

	// let the reminder cycle run out against the broken store
	time.Sleep(400 * time.Millisecond)
	require.Equal(t, StateConfirming, snapshot(t, sm).State)

	queued := sm.DrainPending(testPhone)
	require.NotEmpty(t, queued)
	assert.Contains(t, queued[len(queued)-1], "problema")

	// no further reminders may fire while the store stays down
	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, sm.DrainPending(testPhone))

	// an inbound confirmation still completes the order
	result := send(t, sm, "confirmar")
	assert.Equal(t, StateWaitingNext, result.State)
	orders, err := store.GetOrders(models.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestSessionsAreIndependent(t *testing.T) {
	sm, _ := newTestManager(t)
	sm.confirmDelay = time.Minute
	sm.reminderDelay = time.Minute

	startCollecting(t, sm)
	send(t, sm, "2 mangas")

	other, err := sm.ProcessMessage("+5511888880000", "oi", MessageText, Metadata{})
	require.NoError(t, err)
	assert.Equal(t, StateOption, other.State)

	// the first conversation kept its state and ledger
	snap := snapshot(t, sm)
	assert.Equal(t, StateCollecting, snap.State)
	assert.Equal(t, 2, snap.Ledger["manga"])
	assert.Equal(t, 2, sm.SessionCount())
}
