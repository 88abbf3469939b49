package jobs

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/zapedido/zapedido-backend/internal/services"
	"github.com/zapedido/zapedido-backend/internal/storage"
)

// Per-recipient delay bounds, in seconds. WhatsApp throttles accounts that
// blast messages, so every send waits a randomized 18-30s.
const (
	broadcastDelayMin  = 18
	broadcastDelaySpan = 13
)

// BroadcastJob sends one message to every client that has not answered
// yet, one recipient at a time
type BroadcastJob struct {
	store         storage.Store
	twilioService *services.TwilioService

	mu      sync.Mutex
	running bool
	stop    chan struct{}
}

// NewBroadcastJob creates a new broadcast job
func NewBroadcastJob(store storage.Store, twilioService *services.TwilioService) *BroadcastJob {
	return &BroadcastJob{
		store:         store,
		twilioService: twilioService,
	}
}

// Start launches a broadcast in the background. Returns false if one is
// already running.
func (b *BroadcastJob) Start(message string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return false
	}
	b.running = true
	b.stop = make(chan struct{})
	go b.run(message, b.stop)
	return true
}

// Stop aborts a running broadcast; the current iteration finishes, the
// next one checks the flag and bails
func (b *BroadcastJob) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		close(b.stop)
		b.running = false
	}
}

// Running reports whether a broadcast is in flight
func (b *BroadcastJob) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

func (b *BroadcastJob) run(message string, stop chan struct{}) {
	defer func() {
		b.mu.Lock()
		// a Stop/Start pair may already have replaced this run; only the
		// current run owns the flag
		if b.stop == stop {
			b.running = false
		}
		b.mu.Unlock()
	}()

	clients, err := b.store.GetAllClients()
	if err != nil {
		log.Printf("Error loading clients for broadcast: %v", err)
		return
	}

	log.Printf("📣 Broadcast starting for %d clients", len(clients))
	sentCount := 0
	for _, client := range clients {
		select {
		case <-stop:
			log.Printf("📣 Broadcast aborted after %d messages", sentCount)
			return
		default:
		}

		if client.Answered || !client.BotActive {
			continue
		}

		if b.twilioService == nil {
			log.Printf("📤 Broadcast (not sent - Twilio not configured) to %s", client.Phone)
		} else if err := b.twilioService.SendWhatsAppMessage(client.Phone, message); err != nil {
			log.Printf("Error broadcasting to %s: %v", client.Phone, err)
			continue
		}
		sentCount++

		delay := time.Duration(broadcastDelayMin+rand.Intn(broadcastDelaySpan)) * time.Second
		select {
		case <-stop:
			log.Printf("📣 Broadcast aborted after %d messages", sentCount)
			return
		case <-time.After(delay):
		}
	}
	log.Printf("✅ Broadcast finished, %d messages sent", sentCount)
}
