package services

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zapedido/zapedido-backend/internal/models"
	"github.com/zapedido/zapedido-backend/internal/parser"
	"github.com/zapedido/zapedido-backend/internal/storage"
)

// State is where a conversation currently stands
type State int

const (
	// StateWaitingNext is the idle state between order cycles
	StateWaitingNext State = iota
	// StateOption means the menu was shown and a 1-4 reply is expected
	StateOption
	// StateCollecting means the parser is taking items
	StateCollecting
	// StateConfirming means the summary was shown and reminders are running
	StateConfirming
)

func (s State) String() string {
	switch s {
	case StateOption:
		return "option"
	case StateCollecting:
		return "collecting"
	case StateConfirming:
		return "confirming"
	default:
		return "waiting_for_next"
	}
}

// MessageType discriminates text from anything else the channel delivers
type MessageType int

const (
	MessageText MessageType = iota
	MessageOther
)

const (
	maxReminders        = 5
	disableResetKeyword = "voltar"
)

var confirmWords = map[string]bool{"confirmar": true, "confima": true, "sim": true, "s": true}
var denyWords = map[string]bool{"nao": true, "n": true, "cancelar": true}

// Metadata is what the channel knows about the conversation
type Metadata struct {
	Name      string
	OrderType string
}

// ProcessResult is the outcome of one inbound message
type ProcessResult struct {
	State     State
	Outbound  []string
	BotActive bool
}

// SessionSnapshot exposes session internals for introspection and tests
type SessionSnapshot struct {
	State         State
	Ledger        map[string]int
	ReminderCount int
}

// Session is one conversation's state machine. All mutation happens under
// its own mutex: inbound messages and timer firings for the same phone
// never interleave.
type Session struct {
	mu sync.Mutex

	phone     string
	name      string
	orderType string

	state         State
	ledger        *parser.Ledger
	scores        map[string]int // best match score seen per product this cycle
	collected     []string       // raw messages that contributed items
	reminderCount int
	botActive     bool
	lastActivity  time.Time
	outbound      []string

	inactivityTimer *time.Timer
	reminderTimer   *time.Timer
	inactivityGen   int
	reminderGen     int

	manager *SessionManager
}

// SessionManager owns the phone -> session mapping and is the entry point
// the transport calls. There is no lock across sessions; each session
// serializes only against itself.
type SessionManager struct {
	store         storage.Store
	twilioService *TwilioService
	parser        *parser.Parser

	mu       sync.RWMutex
	sessions map[string]*Session

	confirmDelay  time.Duration
	reminderDelay time.Duration
}

// NewSessionManager creates a new session manager. Delays come from
// BOT_CONFIRM_DELAY_SECONDS and BOT_REMINDER_DELAY_SECONDS, default 5s.
func NewSessionManager(store storage.Store, twilioService *TwilioService) *SessionManager {
	return &SessionManager{
		store:         store,
		twilioService: twilioService,
		parser:        parser.New(),
		sessions:      make(map[string]*Session),
		confirmDelay:  envSeconds("BOT_CONFIRM_DELAY_SECONDS", 5),
		reminderDelay: envSeconds("BOT_REMINDER_DELAY_SECONDS", 5),
	}
}

func envSeconds(name string, def int) time.Duration {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(def) * time.Second
}

// catalog fetches the current product list; the parser treats it as
// read-only for the duration of one call
func (sm *SessionManager) catalog() []models.Product {
	products, err := sm.store.GetProducts()
	if err != nil {
		log.Printf("Error loading catalog: %v", err)
		return nil
	}
	return products
}

// getOrCreate returns the session for a phone, creating it lazily on the
// first inbound message
func (sm *SessionManager) getOrCreate(phone string, meta Metadata) *Session {
	sm.mu.RLock()
	session, exists := sm.sessions[phone]
	sm.mu.RUnlock()
	if exists {
		return session
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	if session, exists = sm.sessions[phone]; exists {
		return session
	}

	session = &Session{
		phone:     phone,
		name:      meta.Name,
		orderType: meta.OrderType,
		state:     StateWaitingNext,
		ledger:    parser.NewLedger(sm.catalog()),
		scores:    make(map[string]int),
		botActive: true,
		manager:   sm,
	}
	sm.sessions[phone] = session
	log.Printf("Session created for %s", phone)
	return session
}

// SessionCount returns how many conversations are alive (for monitoring)
func (sm *SessionManager) SessionCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// ProcessMessage runs one inbound message through the conversation state
// machine and returns the replies to deliver plus whether the bot should
// keep handling this phone
func (sm *SessionManager) ProcessMessage(phone, text string, msgType MessageType, meta Metadata) (*ProcessResult, error) {
	s := sm.getOrCreate(phone, meta)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActivity = time.Now()
	if meta.Name != "" {
		s.name = meta.Name
	}
	if meta.OrderType != "" {
		s.orderType = meta.OrderType
	}

	if !s.botActive {
		if msgType == MessageText && normalizeCommand(text) == disableResetKeyword {
			s.botActive = true
			if err := sm.store.SetClientBotActive(phone, true); err != nil {
				log.Printf("Error reactivating bot for %s: %v", phone, err)
			}
			s.state = StateOption
			s.queue(menuText(s.name))
		}
		return s.resultLocked(), nil
	}

	if msgType != MessageText {
		// channels deliver audio, images, stickers... nothing the parser
		// can read, so fall back to the menu unless a summary is pending
		if s.state != StateConfirming {
			s.cancelInactivity()
			s.state = StateOption
			s.queue(menuText(s.name))
		}
		return s.resultLocked(), nil
	}

	switch s.state {
	case StateWaitingNext:
		if isCancelCommand(text) {
			s.finishCycle()
			s.queue(canceledText())
			break
		}
		s.state = StateOption
		s.queue(menuText(s.name))
	case StateOption:
		s.handleOption(text)
	case StateCollecting:
		s.handleCollecting(text)
	case StateConfirming:
		s.handleConfirming(text)
	}
	return s.resultLocked(), nil
}

// DrainPending returns and clears the queued outbound messages, for
// transports that poll instead of being pushed to
func (sm *SessionManager) DrainPending(phone string) []string {
	sm.mu.RLock()
	s, exists := sm.sessions[phone]
	sm.mu.RUnlock()
	if !exists {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.outbound
	s.outbound = nil
	return msgs
}

// GetSessionSnapshot exposes the current state of one conversation
func (sm *SessionManager) GetSessionSnapshot(phone string) (*SessionSnapshot, bool) {
	sm.mu.RLock()
	s, exists := sm.sessions[phone]
	sm.mu.RUnlock()
	if !exists {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := make(map[string]int)
	for _, item := range s.ledger.Items() {
		ledger[item.Product.Name] = item.Quantity
	}
	return &SessionSnapshot{
		State:         s.state,
		Ledger:        ledger,
		ReminderCount: s.reminderCount,
	}, true
}

// ResetSession drops a conversation back to idle with a zeroed ledger,
// used when the channel reconnects an identity
func (sm *SessionManager) ResetSession(phone string) {
	sm.mu.RLock()
	s, exists := sm.sessions[phone]
	sm.mu.RUnlock()
	if !exists {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelInactivity()
	s.cancelReminder()
	s.finishCycle()
	s.botActive = true
}

// normalizeCommand folds a whole message into a comparable command string
func normalizeCommand(text string) string {
	return strings.Join(strings.Fields(parser.Normalize(text)), " ")
}

// state handlers -- every one of these runs with s.mu held

func isCancelCommand(text string) bool {
	cmd := normalizeCommand(text)
	return cmd == "cancelar" || cmd == "nao"
}

func (s *Session) handleOption(text string) {
	if isCancelCommand(text) {
		s.finishCycle()
		s.queue(canceledText())
		return
	}
	switch normalizeCommand(text) {
	case "1":
		s.state = StateCollecting
		s.queue(collectingPromptText())
		s.armInactivity()
	case "2":
		s.state = StateWaitingNext
		s.botActive = false
		if err := s.manager.store.SetClientBotActive(s.phone, false); err != nil {
			log.Printf("Error deactivating bot for %s: %v", s.phone, err)
		}
		s.queue(handoffText())
	case "3":
		s.queue(catalogText(s.manager.catalog()))
	case "4":
		s.queue(helpText(s.manager.catalog()))
	default:
		s.queue(menuText(s.name))
	}
}

func (s *Session) handleCollecting(text string) {
	switch cmd := normalizeCommand(text); {
	case isCancelCommand(text):
		s.cancelInactivity()
		s.finishCycle()
		s.queue(canceledText())
	case cmd == "pronto" || cmd == "confirmar":
		if s.ledger.Empty() {
			s.queue(emptyOrderText())
			s.armInactivity()
		} else {
			s.enterConfirming()
		}
	default:
		s.applyParse(text)
		s.armInactivity()
	}
}

func (s *Session) handleConfirming(text string) {
	tokens := strings.Fields(normalizeCommand(text))
	switch {
	case containsAny(tokens, confirmWords):
		s.confirmOrder()
	case containsAny(tokens, denyWords):
		s.cancelReminder()
		s.finishCycle()
		s.state = StateCollecting
		s.queue(deniedText())
		s.armInactivity()
	default:
		// the client may still be adding items instead of answering
		if s.applyParse(text) {
			s.cancelReminder()
			s.reminderCount = 0
			s.state = StateCollecting
			s.armInactivity()
		}
	}
}

// applyParse feeds one message to the order parser against the session
// ledger and reports whether any item was recognized
func (s *Session) applyParse(text string) bool {
	result := s.manager.parser.ParseMessage(text, s.ledger, s.manager.catalog())
	if len(result.Disabled) > 0 {
		s.queue(disabledItemsText(result.Disabled))
	}
	if len(result.Lines) == 0 {
		if len(result.Disabled) == 0 {
			s.queue(unrecognizedText())
		}
		return false
	}
	for _, line := range result.Lines {
		if line.Score > s.scores[line.Product.Name] {
			s.scores[line.Product.Name] = line.Score
		}
	}
	s.collected = append(s.collected, strings.TrimSpace(text))
	s.queue(itemsAddedText(result.Lines))
	return true
}

func (s *Session) enterConfirming() {
	s.cancelInactivity()
	s.state = StateConfirming
	s.reminderCount = 1
	s.queue(summaryText(s.ledger.Items()))
	s.armReminder()
}

// confirmOrder persists the ledger as a confirmed order. On a store
// failure the session stays in confirming so the client can retry without
// losing the order.
func (s *Session) confirmOrder() {
	items := s.ledger.Items()
	order := s.buildOrder(items)
	if _, err := s.manager.store.AddConfirmedOrder(order); err != nil {
		log.Printf("Error saving confirmed order for %s: %v", s.phone, err)
		s.queue(persistErrorText())
		return
	}
	s.bumpTotals(items)
	s.cancelReminder()
	s.queue(confirmedText(items))
	s.finishCycle()
}

func (s *Session) buildOrder(items []parser.LedgerItem) *models.Order {
	order := &models.Order{
		Phone:        s.phone,
		ClientName:   s.name,
		OrderType:    s.orderType,
		OriginalText: strings.Join(s.collected, "\n"),
	}
	for _, item := range items {
		order.Items = append(order.Items, models.OrderItem{
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			Score:       s.scores[item.Product.Name],
		})
	}
	return order
}

// bumpTotals updates per-product counters; each increment is independent
// and retriable, so failures are only logged
func (s *Session) bumpTotals(items []parser.LedgerItem) {
	for _, item := range items {
		if err := s.manager.store.IncrementProductTotal(item.Product.Name, item.Quantity); err != nil {
			log.Printf("Error incrementing total for %s: %v", item.Product.Name, err)
		}
	}
}

// finishCycle zeroes the ledger and returns to idle, ready for the next
// order on the same session
func (s *Session) finishCycle() {
	s.ledger.Reset()
	s.scores = make(map[string]int)
	s.collected = nil
	s.reminderCount = 0
	s.state = StateWaitingNext
}

// timers -- at most one pending timer of each kind; re-arming replaces,
// never stacks. The generation counters keep a stale firing that was
// already waiting on the mutex from acting after a cancel.

func (s *Session) armInactivity() {
	s.inactivityGen++
	gen := s.inactivityGen
	if s.inactivityTimer != nil {
		s.inactivityTimer.Stop()
	}
	s.inactivityTimer = time.AfterFunc(s.manager.confirmDelay, func() {
		s.onInactivity(gen)
	})
}

func (s *Session) cancelInactivity() {
	s.inactivityGen++
	if s.inactivityTimer != nil {
		s.inactivityTimer.Stop()
		s.inactivityTimer = nil
	}
}

func (s *Session) armReminder() {
	s.reminderGen++
	gen := s.reminderGen
	if s.reminderTimer != nil {
		s.reminderTimer.Stop()
	}
	s.reminderTimer = time.AfterFunc(s.manager.reminderDelay, func() {
		s.onReminder(gen)
	})
}

func (s *Session) cancelReminder() {
	s.reminderGen++
	if s.reminderTimer != nil {
		s.reminderTimer.Stop()
		s.reminderTimer = nil
	}
}

// onInactivity fires after a quiet spell in collecting: a non-empty
// ledger moves to the summary, an empty one just keeps waiting
func (s *Session) onInactivity(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.inactivityGen || s.state != StateCollecting {
		return
	}
	if s.ledger.Empty() {
		s.armInactivity()
		return
	}
	s.enterConfirming()
	s.flushLocked()
}

// onReminder re-emits the summary; the fifth firing gives up and persists
// the ledger as a pending order instead of re-arming
func (s *Session) onReminder(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.reminderGen || s.state != StateConfirming {
		return
	}

	s.queue(reminderText(s.reminderCount, s.ledger.Items()))

	if s.reminderCount >= maxReminders {
		items := s.ledger.Items()
		order := s.buildOrder(items)
		if _, err := s.manager.store.AddPendingOrder(order); err != nil {
			log.Printf("Error saving pending order for %s: %v", s.phone, err)
			s.queue(persistErrorText())
			// report once and leave the timer stopped; the session stays in
			// confirming with the ledger intact, the next inbound message
			// drives recovery
		} else {
			s.bumpTotals(items)
			s.queue(pendingSavedText())
			s.finishCycle()
		}
	} else {
		s.reminderCount++
		s.armReminder()
	}
	s.flushLocked()
}

// outbound queue

func (s *Session) queue(msg string) {
	s.outbound = append(s.outbound, msg)
}

func (s *Session) resultLocked() *ProcessResult {
	msgs := s.outbound
	s.outbound = nil
	return &ProcessResult{
		State:     s.state,
		Outbound:  msgs,
		BotActive: s.botActive,
	}
}

// flushLocked pushes timer-generated messages through Twilio when it is
// configured; otherwise they stay queued for DrainPending
func (s *Session) flushLocked() {
	if s.manager.twilioService == nil {
		return
	}
	msgs := s.outbound
	s.outbound = nil
	phone := s.phone
	twilioService := s.manager.twilioService
	go func() {
		for _, msg := range msgs {
			if err := twilioService.SendWhatsAppMessage(phone, msg); err != nil {
				log.Printf("Error delivering reminder to %s: %v", phone, err)
			}
		}
	}()
}

func containsAny(tokens []string, words map[string]bool) bool {
	for _, tok := range tokens {
		if words[tok] {
			return true
		}
	}
	return false
}
