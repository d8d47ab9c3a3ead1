// Package chat implements the append-only group chat/alert journal
// (spec.md §4.K): text/image/location/spot/event messages and structured
// group alerts, with per-member read markers and unread counts.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// unreadScanLimit bounds how many of a group's most recent messages
// mark_read/unread_count inspect; older history is assumed already read.
const unreadScanLimit = 500

// Repository is the append-only chat/group-alert store. Satisfied by
// group.ChatRepository.
type Repository interface {
	CreateMessage(ctx context.Context, msg models.ChatMessage) (*models.ChatMessage, error)
	GetMessagesByGroup(ctx context.Context, groupID string, limit int) ([]models.ChatMessage, error)
	MarkMessageRead(ctx context.Context, messageID, userID string) error
}

// Journal implements message posting, history retrieval, and read tracking.
type Journal struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

// New builds a Journal.
func New(repo Repository) *Journal {
	return &Journal{repo: repo, now: time.Now, newID: func() string { return uuid.NewString() }}
}

// Post appends a new message to groupID. For a structured alert
// (MessageType == models.MessageAlert), AlertType must be one of the known
// wire-stable alert kinds; its content is prefixed with the alert's
// mandatory emoji per spec.md §6.
func (j *Journal) Post(ctx context.Context, groupID, senderID string, messageType models.MessageType, content string, location *models.ChatLocation, alertType *models.GroupAlertType) (*models.ChatMessage, error) {
	if messageType == models.MessageAlert {
		if alertType == nil {
			return nil, dberrors.InvalidRequest("alert message missing alert_type")
		}
		emoji, known := models.AlertEmoji[*alertType]
		if !known {
			return nil, dberrors.InvalidRequest("unknown alert_type %q", *alertType)
		}
		content = emoji + " " + content
	}

	msg := models.ChatMessage{
		ID:          j.newID(),
		GroupID:     groupID,
		SenderID:    senderID,
		MessageType: messageType,
		Content:     content,
		Location:    location,
		AlertType:   alertType,
		CreatedAt:   j.now(),
		ReadBy:      map[string]bool{senderID: true},
	}

	created, err := j.repo.CreateMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("post message to group %s: %w", groupID, err)
	}
	return created, nil
}

// History returns groupID's messages oldest-first, capped at limit.
func (j *Journal) History(ctx context.Context, groupID string, limit int) ([]models.ChatMessage, error) {
	messages, err := j.repo.GetMessagesByGroup(ctx, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("load messages for group %s: %w", groupID, err)
	}
	return messages, nil
}

// MarkRead adds userID to read_by on every matching message: all of
// groupID's messages when uptoTs is nil, or only those created at or
// before uptoTs otherwise.
func (j *Journal) MarkRead(ctx context.Context, groupID, userID string, uptoTs *time.Time) error {
	messages, err := j.repo.GetMessagesByGroup(ctx, groupID, unreadScanLimit)
	if err != nil {
		return fmt.Errorf("load messages for group %s: %w", groupID, err)
	}

	for _, msg := range messages {
		if uptoTs != nil && msg.CreatedAt.After(*uptoTs) {
			continue
		}
		if msg.ReadBy[userID] {
			continue
		}
		if err := j.repo.MarkMessageRead(ctx, msg.ID, userID); err != nil {
			return fmt.Errorf("mark message %s read by %s: %w", msg.ID, userID, err)
		}
	}
	return nil
}

// UnreadCount returns how many of groupID's most recent messages userID
// has not yet read.
func (j *Journal) UnreadCount(ctx context.Context, groupID, userID string) (int, error) {
	messages, err := j.repo.GetMessagesByGroup(ctx, groupID, unreadScanLimit)
	if err != nil {
		return 0, fmt.Errorf("load messages for group %s: %w", groupID, err)
	}

	count := 0
	for _, msg := range messages {
		if !msg.ReadBy[userID] {
			count++
		}
	}
	return count, nil
}
