package group

import (
	"context"
	"encoding/json"

	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db DBConn
}

// NewPostgresRepository creates a new PostgreSQL group repository.
func NewPostgresRepository(db DBConn) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Positions() PositionRepository { return r }
func (r *PostgresRepository) Chat() ChatRepository          { return r }

// ====================
// Position shares
// ====================

func (r *PostgresRepository) PutPosition(ctx context.Context, share models.GroupPositionShare) error {
	_, err := r.db.ExecContext(ctx, queryPositionPut,
		share.GroupID, share.UserID, share.Lat, share.Lng, share.Heading, share.Status, share.IsSharing, share.UpdatedAt,
	)
	return err
}

func (r *PostgresRepository) GetPositionsByGroup(ctx context.Context, groupID string) ([]models.GroupPositionShare, error) {
	rows, err := r.db.QueryContext(ctx, queryPositionGetByGroup, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.GroupPositionShare
	for rows.Next() {
		var s models.GroupPositionShare
		if err := rows.Scan(&s.GroupID, &s.UserID, &s.Lat, &s.Lng, &s.Heading, &s.Status, &s.IsSharing, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ====================
// Chat / group alerts
// ====================

func scanMessage(scan func(...interface{}) error) (models.ChatMessage, error) {
	var msg models.ChatMessage
	var location, readBy []byte
	err := scan(
		&msg.ID, &msg.GroupID, &msg.SenderID, &msg.MessageType, &msg.Content,
		&location, &msg.AlertType, &msg.CreatedAt, &readBy, &msg.IsDeleted,
	)
	if err != nil {
		return msg, err
	}
	if len(location) > 0 {
		if err := json.Unmarshal(location, &msg.Location); err != nil {
			return msg, err
		}
	}
	if len(readBy) > 0 {
		if err := json.Unmarshal(readBy, &msg.ReadBy); err != nil {
			return msg, err
		}
	}
	if msg.ReadBy == nil {
		msg.ReadBy = map[string]bool{}
	}
	return msg, nil
}

func (r *PostgresRepository) CreateMessage(ctx context.Context, msg models.ChatMessage) (*models.ChatMessage, error) {
	location, err := json.Marshal(msg.Location)
	if err != nil {
		return nil, err
	}
	readBy, err := json.Marshal(msg.ReadBy)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, queryMessageCreate,
		msg.ID, msg.GroupID, msg.SenderID, msg.MessageType, msg.Content,
		location, msg.AlertType, msg.CreatedAt, readBy,
	)
	created, err := scanMessage(row.Scan)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *PostgresRepository) GetMessagesByGroup(ctx context.Context, groupID string, limit int) ([]models.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, queryMessageGetByGroup, groupID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		msg, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) MarkMessageRead(ctx context.Context, messageID, userID string) error {
	result, err := r.db.ExecContext(ctx, queryMessageMarkRead, messageID, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return dberrors.NotFound("chat message %s", messageID)
	}
	return nil
}
