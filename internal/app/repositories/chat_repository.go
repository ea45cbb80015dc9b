package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatRepository handles database operations for chat channels
type ChatRepository struct {
	db *pgxpool.Pool
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

func scanChat(row pgx.Row) (*models.Chat, error) {
	var c models.Chat
	if err := row.Scan(&c.ID, &c.Participants[0], &c.Participants[1], &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Ensure inserts the channel unless it already exists and returns the stored
// row. Concurrent callers for the same pair converge on one row.
func (r *ChatRepository) Ensure(ctx context.Context, chat *models.Chat) (*models.Chat, bool, error) {
	var created bool
	err := r.db.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO chats (id, participant_a, participant_b)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO NOTHING
			RETURNING id
		)
		SELECT EXISTS(SELECT 1 FROM ins)`,
		chat.ID, chat.Participants[0], chat.Participants[1],
	).Scan(&created)
	if err != nil {
		return nil, false, fmt.Errorf("error ensuring chat: %w", err)
	}

	stored, err := r.GetByID(ctx, chat.ID)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

// GetByID retrieves a channel by its ID
func (r *ChatRepository) GetByID(ctx context.Context, id string) (*models.Chat, error) {
	chat, err := scanChat(r.db.QueryRow(ctx,
		`SELECT id, participant_a, participant_b, created_at FROM chats WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("chat %s: %w", id, apperrors.ErrResourceNotFound)
		}
		return nil, fmt.Errorf("error retrieving chat: %w", err)
	}
	return chat, nil
}

// ListByParticipant lists the channels a user belongs to, most recently active first
func (r *ChatRepository) ListByParticipant(ctx context.Context, userID string) ([]*models.Chat, error) {
	sql, args, err := squirrel.Select("c.id", "c.participant_a", "c.participant_b", "c.created_at").
		From("chats c").
		LeftJoin("(SELECT chat_id, MAX(created_at) AS last_at FROM chat_messages GROUP BY chat_id) m ON m.chat_id = c.id").
		Where(squirrel.Or{
			squirrel.Eq{"c.participant_a": userID},
			squirrel.Eq{"c.participant_b": userID},
		}).
		OrderBy("COALESCE(m.last_at, c.created_at) DESC").
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

	chats := make([]*models.Chat, 0)
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning chat row: %w", err)
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}
