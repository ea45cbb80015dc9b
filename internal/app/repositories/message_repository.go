package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/dreamline/mentorlink/internal/pkg/dberrors"
	"github.com/dreamline/mentorlink/internal/pkg/helpers"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var messageColumns = []string{"seq", "id", "chat_id", "sender_id", "text", "image_url", "read_by", "created_at"}

// MessageRepository handles database operations for chat messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

func scanMessage(row pgx.Row) (*models.ChatMessage, error) {
	var m models.ChatMessage
	var text, imageURL *string
	if err := row.Scan(&m.Seq, &m.ID, &m.ChatID, &m.SenderID, &text, &imageURL, &m.ReadBy, &m.CreatedAt); err != nil {
		return nil, err
	}
	if text != nil {
		m.Text = *text
	}
	if imageURL != nil {
		m.ImageURL = *imageURL
	}
	return m.Normalize(), nil
}

// Append inserts a message. The creation time comes from the database clock
// and seq breaks ties between messages stamped in the same instant.
func (r *MessageRepository) Append(ctx context.Context, msg *models.ChatMessage) error {
	msg.Normalize()
	err := r.db.QueryRow(ctx, `
		INSERT INTO chat_messages (id, chat_id, sender_id, text, image_url, read_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq, created_at`,
		msg.ID, msg.ChatID, msg.SenderID,
		helpers.NullText(msg.Text), helpers.NullText(msg.ImageURL),
		msg.ReadBy,
	).Scan(&msg.Seq, &msg.CreatedAt)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return fmt.Errorf("chat %s: %w", msg.ChatID, apperrors.ErrResourceNotFound)
		}
		return fmt.Errorf("error creating chat message: %w", err)
	}
	return nil
}

// GetByID retrieves one message of a channel
func (r *MessageRepository) GetByID(ctx context.Context, chatID, id string) (*models.ChatMessage, error) {
	sql, args, err := squirrel.Select(messageColumns...).
		From("chat_messages").
		Where(squirrel.Eq{"chat_id": chatID, "id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	msg, err := scanMessage(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("message %s: %w", id, apperrors.ErrResourceNotFound)
		}
		return nil, fmt.Errorf("error retrieving chat message: %w", err)
	}
	return msg, nil
}

// ListByChat returns the newest limit messages in ascending order
func (r *MessageRepository) ListByChat(ctx context.Context, chatID string, limit int) ([]*models.ChatMessage, error) {
	inner := squirrel.Select(messageColumns...).
		From("chat_messages").
		Where(squirrel.Eq{"chat_id": chatID}).
		OrderBy("created_at DESC", "seq DESC")
	if limit > 0 {
		inner = inner.Limit(uint64(limit))
	}

	sql, args, err := squirrel.Select(messageColumns...).
		FromSelect(inner, "recent").
		OrderBy("created_at ASC", "seq ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	msgs := make([]*models.ChatMessage, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning chat message row: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MarkRead appends the reader to read_by unless already present
func (r *MessageRepository) MarkRead(ctx context.Context, chatID, messageID, readerID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE chat_messages
		SET read_by = array_append(read_by, $3)
		WHERE chat_id = $1 AND id = $2 AND NOT ($3 = ANY(read_by))`,
		chatID, messageID, readerID,
	)
	if err != nil {
		return false, fmt.Errorf("error marking message read: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	// Either already read or unknown; only the latter is an error
	if _, err := r.GetByID(ctx, chatID, messageID); err != nil {
		return false, err
	}
	return false, nil
}

// MarkAllRead marks every message not sent by the reader
func (r *MessageRepository) MarkAllRead(ctx context.Context, chatID, readerID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE chat_messages
		SET read_by = array_append(read_by, $2)
		WHERE chat_id = $1 AND sender_id <> $2 AND NOT ($2 = ANY(read_by))
		RETURNING id`,
		chatID, readerID,
	)
	if err != nil {
		return nil, fmt.Errorf("error marking messages read: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning message id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Last returns the newest message of a channel
func (r *MessageRepository) Last(ctx context.Context, chatID string) (*models.ChatMessage, error) {
	msgs, err := r.ListByChat(ctx, chatID, 1)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	return msgs[0], nil
}

// CountUnread counts messages from the other participant not yet read by readerID
func (r *MessageRepository) CountUnread(ctx context.Context, chatID, readerID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM chat_messages
		WHERE chat_id = $1 AND sender_id <> $2 AND NOT ($2 = ANY(read_by))`,
		chatID, readerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting unread messages: %w", err)
	}
	return n, nil
}
