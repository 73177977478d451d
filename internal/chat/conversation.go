// Package chat maintains the state of a one-to-one conversation between
// the signed-in user and an accepted friend. History is pulled once on
// open; new messages arrive over the realtime broker and are folded into
// the in-memory transcript. Sends are optimistic: a placeholder message
// appears immediately and is replaced by the stored row.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"family-fund-go/internal/models"
	"family-fund-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const historyLimit = 50

const tempIdPrefix = "temp-"

// Conversation is safe for concurrent use; broker callbacks and Send may
// race and both mutate the transcript under the mutex.
type Conversation struct {
	platform store.Platform
	self     *models.Profile
	friendId string

	mu       sync.Mutex
	messages []models.Message
	closed   bool
	unsub    func()

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func([]models.Message)
}

// Open loads recent history with the friend and subscribes to incoming
// messages addressed to the current user.
func Open(ctx context.Context, platform store.Platform, self *models.Profile, friendId string) (*Conversation, error) {
	c := &Conversation{
		platform: platform,
		self:     self,
		friendId: friendId,
		subs:     make(map[int]func([]models.Message)),
	}

	history, err := platform.ListMessages(ctx, self.Id, friendId, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load conversation history: %w", err)
	}
	c.messages = history

	unsub, err := platform.SubscribeMessages(self.Id, c.handleIncoming)
	if err != nil {
		return nil, fmt.Errorf("subscribe to messages: %w", err)
	}
	c.unsub = unsub
	return c, nil
}

// Send appends an optimistic placeholder, persists the message, then
// swaps the placeholder for the stored row. On failure the placeholder is
// rolled back and the error returned.
func (c *Conversation) Send(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("message content is empty")
	}

	temp := models.Message{
		Id:         tempIdPrefix + uuid.New().String(),
		SenderId:   c.self.Id,
		ReceiverId: c.friendId,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("conversation is closed")
	}
	c.messages = append(c.messages, temp)
	snapshot := c.transcriptLocked()
	c.mu.Unlock()
	c.notify(snapshot)

	stored, err := c.platform.InsertMessage(ctx, c.self.Id, c.friendId, content)
	if err != nil {
		c.mu.Lock()
		c.messages = removeMessage(c.messages, temp.Id)
		snapshot = c.transcriptLocked()
		c.mu.Unlock()
		c.notify(snapshot)
		return fmt.Errorf("send message: %w", err)
	}

	c.mu.Lock()
	c.messages = replaceMessage(c.messages, temp.Id, *stored)
	snapshot = c.transcriptLocked()
	c.mu.Unlock()
	c.notify(snapshot)
	return nil
}

// Transcript returns the messages in chronological order.
func (c *Conversation) Transcript() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcriptLocked()
}

// Subscribe registers fn to be called with the full transcript after
// every change. The returned function removes the subscription.
func (c *Conversation) Subscribe(fn func([]models.Message)) func() {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()
	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// Close tears down the realtime subscription. Messages arriving after
// Close are dropped.
func (c *Conversation) Close() {
	c.mu.Lock()
	c.closed = true
	unsub := c.unsub
	c.unsub = nil
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// handleIncoming folds a pushed message into the transcript. Messages
// from users other than the active friend are ignored, as are duplicates
// of rows already present. An echo of our own pending send replaces its
// placeholder instead of appending a second copy.
func (c *Conversation) handleIncoming(msg models.Message) {
	if msg.SenderId != c.friendId && msg.SenderId != c.self.Id {
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	for i := range c.messages {
		if c.messages[i].Id == msg.Id {
			c.mu.Unlock()
			return
		}
	}
	if msg.SenderId == c.self.Id {
		if tempId := c.pendingEchoLocked(msg); tempId != "" {
			c.messages = replaceMessage(c.messages, tempId, msg)
			snapshot := c.transcriptLocked()
			c.mu.Unlock()
			c.notify(snapshot)
			return
		}
	}
	c.messages = append(c.messages, msg)
	snapshot := c.transcriptLocked()
	c.mu.Unlock()
	c.notify(snapshot)

	zap.L().Debug("Message received", zap.String("message_id", msg.Id), zap.String("sender_id", msg.SenderId))
}

// pendingEchoLocked finds an optimistic placeholder matching a pushed
// copy of our own message.
func (c *Conversation) pendingEchoLocked(msg models.Message) string {
	for i := range c.messages {
		m := &c.messages[i]
		if strings.HasPrefix(m.Id, tempIdPrefix) && m.SenderId == msg.SenderId && m.Content == msg.Content {
			return m.Id
		}
	}
	return ""
}

func (c *Conversation) transcriptLocked() []models.Message {
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) notify(transcript []models.Message) {
	c.subMu.Lock()
	fns := make([]func([]models.Message), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn(transcript)
	}
}

func removeMessage(msgs []models.Message, id string) []models.Message {
	out := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Id != id {
			out = append(out, m)
		}
	}
	return out
}

func replaceMessage(msgs []models.Message, id string, with models.Message) []models.Message {
	for i := range msgs {
		if msgs[i].Id == id {
			msgs[i] = with
			return msgs
		}
	}
	return append(msgs, with)
}
