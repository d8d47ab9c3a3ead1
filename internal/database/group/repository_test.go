package group_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/steeveross-eng/huntiq-telemetry/internal/database/group"
	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

func TestPostgresRepository_GetPositionsByGroup_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"group_id", "user_id", "lat", "lng", "heading", "status", "is_sharing", "updated_at"})

	mock.ExpectQuery("SELECT (.+) FROM huntiq.group_position_shares").
		WithArgs("group-1").
		WillReturnRows(rows)

	repo := group.NewPostgresRepository(db)
	result, err := repo.GetPositionsByGroup(context.Background(), "group-1")
	if err != nil {
		t.Errorf("GetPositionsByGroup() error = %v, want nil", err)
	}
	if len(result) != 0 {
		t.Errorf("GetPositionsByGroup() returned %d shares, want 0", len(result))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresRepository_CreateMessage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "group_id", "sender_id", "message_type", "content", "location", "alert_type", "created_at", "read_by", "is_deleted",
	}).AddRow("msg-1", "group-1", "user-1", models.MessageAlert, "🦌 Animal spotted", nil, string(models.AlertAnimalSpotted), now, "{}", false)

	mock.ExpectQuery("INSERT INTO huntiq.chat_messages").
		WillReturnRows(rows)

	repo := group.NewPostgresRepository(db)
	result, err := repo.CreateMessage(context.Background(), models.ChatMessage{
		ID:          "msg-1",
		GroupID:     "group-1",
		SenderID:    "user-1",
		MessageType: models.MessageAlert,
		Content:     "🦌 Animal spotted",
		CreatedAt:   now,
		ReadBy:      map[string]bool{},
	})
	if err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}
	if result.MessageType != models.MessageAlert {
		t.Errorf("CreateMessage() message type = %v, want alert", result.MessageType)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresRepository_MarkMessageRead_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE huntiq.chat_messages").
		WithArgs("missing", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := group.NewPostgresRepository(db)
	err = repo.MarkMessageRead(context.Background(), "missing", "user-1")
	if !dberrors.IsNotFound(err) {
		t.Errorf("MarkMessageRead() expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
