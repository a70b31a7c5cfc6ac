// ABOUTME: Open conversation view fed by realtime insert events.
// ABOUTME: The view owns its subscription; events after Close are discarded.
package social

import (
	"context"
	"fmt"
	"sync"

	"github.com/harperreed/levelup/internal/models"
)

// HistoryLimit is how many messages a conversation loads when opened.
const HistoryLimit = 50

// Conversation is the in-memory message list of one open chat.
// A nil peer is the global channel.
type Conversation struct {
	self      string
	peer      *string
	mu        sync.Mutex
	messages  []*models.ChatMessage
	onMessage func(*models.ChatMessage)
	closed    bool
	unsub     func()
	done      chan struct{}
}

// Open loads recent history and subscribes to new messages for the
// conversation with peer. onMessage, if set, is called for each realtime
// message accepted into the list. The conversation closes when ctx is done.
func (s *Service) Open(ctx context.Context, peer *string, onMessage func(*models.ChatMessage)) (*Conversation, error) {
	sess, err := s.current()
	if err != nil {
		return nil, err
	}

	var history []*models.ChatMessage
	if peer == nil {
		history, err = s.repo.ListGlobalMessages(ctx, HistoryLimit)
	} else {
		history, err = s.repo.ListDirectMessages(ctx, sess.UserID, *peer, HistoryLimit)
	}
	if err != nil {
		return nil, fmt.Errorf("open conversation: %w", err)
	}

	c := &Conversation{
		self:      sess.UserID,
		peer:      peer,
		messages:  history,
		onMessage: onMessage,
		done:      make(chan struct{}),
	}

	if s.rt != nil {
		unsub, err := s.rt.Subscribe(ctx, c.receive)
		if err != nil {
			return nil, fmt.Errorf("open conversation: %w", err)
		}
		c.unsub = unsub
	}

	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-c.done:
		}
	}()

	return c, nil
}

func (c *Conversation) receive(m *models.ChatMessage) {
	if !m.BelongsTo(c.self, c.peer) {
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.messages = append(c.messages, m)
	fn := c.onMessage
	c.mu.Unlock()

	if fn != nil {
		fn(m)
	}
}

// Messages returns a copy of the current message list.
func (c *Conversation) Messages() []*models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*models.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Done is closed once the conversation has been torn down.
func (c *Conversation) Done() <-chan struct{} {
	return c.done
}

// Close unsubscribes. It is safe to call more than once.
func (c *Conversation) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unsub := c.unsub
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	close(c.done)
}
