package chat

import (
	"context"
	"testing"
	"time"

	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

type fakeRepository struct {
	messages []models.ChatMessage
	nextID   int
}

func (f *fakeRepository) CreateMessage(ctx context.Context, msg models.ChatMessage) (*models.ChatMessage, error) {
	f.nextID++
	f.messages = append(f.messages, msg)
	return &msg, nil
}

func (f *fakeRepository) GetMessagesByGroup(ctx context.Context, groupID string, limit int) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for _, m := range f.messages {
		if m.GroupID == groupID {
			out = append(out, m)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepository) MarkMessageRead(ctx context.Context, messageID, userID string) error {
	for i, m := range f.messages {
		if m.ID == messageID {
			if f.messages[i].ReadBy == nil {
				f.messages[i].ReadBy = map[string]bool{}
			}
			f.messages[i].ReadBy[userID] = true
			return nil
		}
	}
	return dberrors.NotFound("chat message %s", messageID)
}

func TestPostTextMessage(t *testing.T) {
	j := New(&fakeRepository{})
	msg, err := j.Post(context.Background(), "g1", "u1", models.MessageText, "heading in", nil, nil)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if msg.Content != "heading in" {
		t.Errorf("Content = %q, want unmodified text", msg.Content)
	}
	if !msg.ReadBy["u1"] {
		t.Error("expected sender to be marked as having read their own message")
	}
}

func TestPostAlertPrefixesEmoji(t *testing.T) {
	j := New(&fakeRepository{})
	alertType := models.AlertAnimalSpotted
	msg, err := j.Post(context.Background(), "g1", "u1", models.MessageAlert, "buck 200m north", nil, &alertType)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	want := "🦌 buck 200m north"
	if msg.Content != want {
		t.Errorf("Content = %q, want %q", msg.Content, want)
	}
}

func TestPostAlertMissingTypeFails(t *testing.T) {
	j := New(&fakeRepository{})
	if _, err := j.Post(context.Background(), "g1", "u1", models.MessageAlert, "x", nil, nil); !dberrors.IsInvalidRequest(err) {
		t.Errorf("err = %v, want InvalidRequest", err)
	}
}

func TestPostAlertUnknownTypeFails(t *testing.T) {
	j := New(&fakeRepository{})
	bogus := models.GroupAlertType("not_a_real_alert")
	if _, err := j.Post(context.Background(), "g1", "u1", models.MessageAlert, "x", nil, &bogus); !dberrors.IsInvalidRequest(err) {
		t.Errorf("err = %v, want InvalidRequest", err)
	}
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	repo := &fakeRepository{}
	j := New(repo)
	ctx := context.Background()

	if _, err := j.Post(ctx, "g1", "u1", models.MessageText, "one", nil, nil); err != nil {
		t.Fatalf("Post(one) error = %v", err)
	}
	if _, err := j.Post(ctx, "g1", "u1", models.MessageText, "two", nil, nil); err != nil {
		t.Fatalf("Post(two) error = %v", err)
	}

	count, err := j.UnreadCount(ctx, "g1", "u2")
	if err != nil {
		t.Fatalf("UnreadCount() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("UnreadCount() = %d, want 2", count)
	}

	if err := j.MarkRead(ctx, "g1", "u2", nil); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}

	count, err = j.UnreadCount(ctx, "g1", "u2")
	if err != nil {
		t.Fatalf("UnreadCount() error = %v", err)
	}
	if count != 0 {
		t.Errorf("UnreadCount() after MarkRead = %d, want 0", count)
	}
}

func TestMarkReadRespectsUptoTimestamp(t *testing.T) {
	repo := &fakeRepository{}
	j := New(repo)
	ctx := context.Background()

	cutoff := time.Now()
	repo.messages = append(repo.messages, models.ChatMessage{
		ID: "m1", GroupID: "g1", CreatedAt: cutoff.Add(-time.Minute), ReadBy: map[string]bool{},
	}, models.ChatMessage{
		ID: "m2", GroupID: "g1", CreatedAt: cutoff.Add(time.Minute), ReadBy: map[string]bool{},
	})

	if err := j.MarkRead(ctx, "g1", "u2", &cutoff); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}

	count, err := j.UnreadCount(ctx, "g1", "u2")
	if err != nil {
		t.Fatalf("UnreadCount() error = %v", err)
	}
	if count != 1 {
		t.Errorf("UnreadCount() = %d, want 1 (message after cutoff stays unread)", count)
	}
}
