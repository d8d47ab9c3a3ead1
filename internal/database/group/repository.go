// Package group provides repository operations for group position sharing
// and the append-only group chat/alert journal. Redis (internal/cache)
// fronts the 30-minute position snapshot; this package is the
// last-writer-wins durable mirror plus the chat journal of record.
package group

import (
	"context"

	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// Repository groups the position-share and chat sub-repositories.
type Repository interface {
	Positions() PositionRepository
	Chat() ChatRepository
}

// PositionRepository handles the durable last-writer-wins mirror of group
// position shares.
type PositionRepository interface {
	// PutPosition overwrites the member's last-known share.
	PutPosition(ctx context.Context, share models.GroupPositionShare) error

	// GetPositionsByGroup retrieves every member's last-known share for groupID.
	GetPositionsByGroup(ctx context.Context, groupID string) ([]models.GroupPositionShare, error)
}

// ChatRepository handles the append-only chat/group-alert journal.
type ChatRepository interface {
	// CreateMessage inserts a new chat message (or structured group alert,
	// which is a ChatMessage with MessageType = models.MessageAlert).
	CreateMessage(ctx context.Context, msg models.ChatMessage) (*models.ChatMessage, error)

	// GetMessagesByGroup retrieves groupID's most recent limit messages, oldest first.
	GetMessagesByGroup(ctx context.Context, groupID string, limit int) ([]models.ChatMessage, error)

	// MarkMessageRead records that userID has read messageID.
	// Returns dberrors.ErrNotFound if the message does not exist.
	MarkMessageRead(ctx context.Context, messageID, userID string) error
}
