package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
)

type ChatRepository struct {
	db *DB
}

func copyChat(c *models.Chat) *models.Chat {
	out := *c
	return &out
}

func (r *ChatRepository) Ensure(_ context.Context, chat *models.Chat) (*models.Chat, bool, error) {
	tbl := r.db.chats
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	if stored, ok := tbl.t[chat.ID]; ok {
		return copyChat(stored), false, nil
	}
	stored := copyChat(chat)
	stored.CreatedAt = r.db.clock()
	tbl.t[chat.ID] = stored
	return copyChat(stored), true, nil
}

func (r *ChatRepository) GetByID(_ context.Context, id string) (*models.Chat, error) {
	tbl := r.db.chats
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	if c, ok := tbl.t[id]; ok {
		return copyChat(c), nil
	}
	return nil, notFound("chat", id)
}

func (r *ChatRepository) ListByParticipant(_ context.Context, userID string) ([]*models.Chat, error) {
	tbl := r.db.chats
	tbl.mutex.RLock()
	out := make([]*models.Chat, 0)
	for _, c := range tbl.t {
		if c.HasParticipant(userID) {
			out = append(out, copyChat(c))
		}
	}
	tbl.mutex.RUnlock()

	activity := make(map[string]time.Time, len(out))
	msgs := r.db.messages
	msgs.mutex.RLock()
	for _, c := range out {
		activity[c.ID] = c.CreatedAt
		if log := msgs.t[c.ID]; len(log) > 0 {
			activity[c.ID] = log[len(log)-1].CreatedAt
		}
	}
	msgs.mutex.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		ai, aj := activity[out[i].ID], activity[out[j].ID]
		if ai.Equal(aj) {
			return out[i].ID < out[j].ID
		}
		return ai.After(aj)
	})
	return out, nil
}

type MessageRepository struct {
	db *DB
}

func copyMessage(m *models.ChatMessage) *models.ChatMessage {
	c := *m
	c.ReadBy = copyStrings(m.ReadBy)
	return &c
}

func (r *MessageRepository) Append(_ context.Context, msg *models.ChatMessage) error {
	chats := r.db.chats
	chats.mutex.RLock()
	_, ok := chats.t[msg.ChatID]
	chats.mutex.RUnlock()
	if !ok {
		return notFound("chat", msg.ChatID)
	}

	tbl := r.db.messages
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	for _, m := range tbl.t[msg.ChatID] {
		if m.ID == msg.ID {
			return apperrors.ErrResourceAlreadyExists
		}
	}

	tbl.seq++
	msg.Normalize()
	msg.Seq = tbl.seq
	msg.CreatedAt = r.db.clock()
	// The log stays in (CreatedAt, Seq) order even if the clock steps back
	if log := tbl.t[msg.ChatID]; len(log) > 0 && msg.CreatedAt.Before(log[len(log)-1].CreatedAt) {
		msg.CreatedAt = log[len(log)-1].CreatedAt
	}
	tbl.t[msg.ChatID] = append(tbl.t[msg.ChatID], copyMessage(msg))
	return nil
}

func (r *MessageRepository) find(chatID, id string) *models.ChatMessage {
	for _, m := range r.db.messages.t[chatID] {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (r *MessageRepository) GetByID(_ context.Context, chatID, id string) (*models.ChatMessage, error) {
	tbl := r.db.messages
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	if m := r.find(chatID, id); m != nil {
		return copyMessage(m), nil
	}
	return nil, notFound("message", id)
}

func (r *MessageRepository) ListByChat(_ context.Context, chatID string, limit int) ([]*models.ChatMessage, error) {
	tbl := r.db.messages
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	log := tbl.t[chatID]
	if limit > 0 && len(log) > limit {
		log = log[len(log)-limit:]
	}
	out := make([]*models.ChatMessage, 0, len(log))
	for _, m := range log {
		out = append(out, copyMessage(m))
	}
	return out, nil
}

func (r *MessageRepository) MarkRead(_ context.Context, chatID, messageID, readerID string) (bool, error) {
	tbl := r.db.messages
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	m := r.find(chatID, messageID)
	if m == nil {
		return false, notFound("message", messageID)
	}
	if m.ReadByUser(readerID) {
		return false, nil
	}
	m.ReadBy = append(m.ReadBy, readerID)
	return true, nil
}

func (r *MessageRepository) MarkAllRead(_ context.Context, chatID, readerID string) ([]string, error) {
	tbl := r.db.messages
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	changed := make([]string, 0)
	for _, m := range tbl.t[chatID] {
		if m.SenderID == readerID || m.ReadByUser(readerID) {
			continue
		}
		m.ReadBy = append(m.ReadBy, readerID)
		changed = append(changed, m.ID)
	}
	return changed, nil
}

func (r *MessageRepository) Last(_ context.Context, chatID string) (*models.ChatMessage, error) {
	tbl := r.db.messages
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	log := tbl.t[chatID]
	if len(log) == 0 {
		return nil, nil
	}
	return copyMessage(log[len(log)-1]), nil
}

func (r *MessageRepository) CountUnread(_ context.Context, chatID, readerID string) (int, error) {
	tbl := r.db.messages
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	n := 0
	for _, m := range tbl.t[chatID] {
		if m.SenderID != readerID && !m.ReadByUser(readerID) {
			n++
		}
	}
	return n, nil
}
