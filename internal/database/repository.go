package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mohammedqas189/ASCVD-Calculator/internal/chat"
)

// Repository handles database operations
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// InsertMessage stores one chat message
func (r *Repository) InsertMessage(ctx context.Context, msg chat.Message) error {
	stmt, err := r.db.GetPreparedStatement("insert_chat_message")
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx, msg.ID.String(), msg.SessionID, string(msg.Sender), msg.Text, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

// ListMessages returns the newest limit messages of a session, oldest first
func (r *Repository) ListMessages(ctx context.Context, sessionID string, limit int) ([]chat.Message, error) {
	stmt, err := r.db.GetPreparedStatement("list_chat_messages")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var (
			msg    chat.Message
			id     string
			sender string
		)
		if err := rows.Scan(&id, &msg.SessionID, &sender, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		if msg.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid chat message id %q: %w", id, err)
		}
		msg.Sender = chat.Sender(sender)
		msgs = append(msgs, msg)
	}

	return msgs, rows.Err()
}

// LogCalculation records the outcome of one calculation
func (r *Repository) LogCalculation(ctx context.Context, entry *CalculationLog) error {
	stmt, err := r.db.GetPreparedStatement("insert_calculation_log")
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx, entry.ID, entry.Profile, entry.Outcome, entry.DurationUS, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to log calculation: %w", err)
	}
	return nil
}

// CalculationStats aggregates calculations logged since the given time
func (r *Repository) CalculationStats(ctx context.Context, since time.Time) ([]CalculationStat, error) {
	stmt, err := r.db.GetPreparedStatement("calculation_stats")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query calculation stats: %w", err)
	}
	defer rows.Close()

	stats := make([]CalculationStat, 0)
	for rows.Next() {
		var s CalculationStat
		if err := rows.Scan(&s.Profile, &s.Outcome, &s.Count, &s.AvgDurationUS); err != nil {
			return nil, fmt.Errorf("failed to scan calculation stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}
