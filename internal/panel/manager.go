package panel

import (
	"sync"
	"time"

	"github.com/tooni-app/salesdesk/internal/model"
	"github.com/tooni-app/salesdesk/internal/store"
	"github.com/tooni-app/salesdesk/pkg/logger"
)

// Manager owns one Controller per conversation view and feeds them store
// change events.
type Manager struct {
	fetcher  SuggestionFetcher
	debounce time.Duration
	timeout  time.Duration
	logger   *logger.Logger

	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewManager creates a panel manager.
func NewManager(fetcher SuggestionFetcher, debounce, timeout time.Duration, log *logger.Logger) *Manager {
	return &Manager{
		fetcher:     fetcher,
		debounce:    debounce,
		timeout:     timeout,
		logger:      log,
		controllers: make(map[string]*Controller),
	}
}

// For returns the controller for a conversation, creating it on first use.
func (m *Manager) For(conversationID string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.controllers[conversationID]; ok {
		return c
	}
	c := NewController(m.fetcher, m.debounce, m.timeout, m.logger.WithConversation(conversationID))
	m.controllers[conversationID] = c
	return c
}

// Bind subscribes the manager to store changes so message appends drive the
// per-conversation controllers.
func (m *Manager) Bind(st *store.Store) {
	st.Subscribe(func(ev model.ChangeEvent) {
		if ev.Type != model.EventMessageAppended {
			return
		}
		messages, err := st.Messages(ev.ConversationID)
		if err != nil {
			return
		}
		m.For(ev.ConversationID).OnMessagesChanged(messages)
	})
}

// Close stops all controllers.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.controllers {
		c.Close()
	}
}
