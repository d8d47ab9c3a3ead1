package models

import "time"

// GroupPositionShare is the last-known shared position of one group member.
type GroupPositionShare struct {
	GroupID   string    `json:"group_id"`
	UserID    string    `json:"user_id"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Heading   *float64  `json:"heading,omitempty"`
	Status    string    `json:"status,omitempty"`
	IsSharing bool      `json:"is_sharing"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageType enumerates the kinds of group chat content.
type MessageType string

const (
	MessageText     MessageType = "text"
	MessageImage    MessageType = "image"
	MessageLocation MessageType = "location"
	MessageSpot     MessageType = "spot"
	MessageEvent    MessageType = "event"
	MessageAlert    MessageType = "alert"
)

// GroupAlertType enumerates the wire-stable structured group alert kinds.
type GroupAlertType string

const (
	AlertAnimalSpotted  GroupAlertType = "animal_spotted"
	AlertPositionMarked GroupAlertType = "position_marked"
	AlertNeedHelp       GroupAlertType = "need_help"
	AlertShotFired      GroupAlertType = "shot_fired"
	AlertReturning      GroupAlertType = "returning"
	AlertBreakTime      GroupAlertType = "break_time"
	AlertSilence        GroupAlertType = "silence"
	AlertMeetingPoint   GroupAlertType = "meeting_point"
)

// AlertEmoji maps the wire-stable group alert vocabulary to its mandatory
// client-compatibility emoji prefix.
var AlertEmoji = map[GroupAlertType]string{
	AlertAnimalSpotted:  "🦌",
	AlertPositionMarked: "📍",
	AlertNeedHelp:       "🆘",
	AlertShotFired:      "🎯",
	AlertReturning:      "🏠",
	AlertBreakTime:      "☕",
	AlertSilence:        "🤫",
	AlertMeetingPoint:   "📌",
}

// ChatLocation is the optional embedded location on a chat message.
type ChatLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ChatMessage is a single append-only group chat entry.
type ChatMessage struct {
	ID          string            `json:"id"`
	GroupID     string            `json:"group_id"`
	SenderID    string            `json:"sender_id"`
	MessageType MessageType       `json:"message_type"`
	Content     string            `json:"content"`
	Location    *ChatLocation     `json:"location,omitempty"`
	AlertType   *GroupAlertType   `json:"alert_type,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	ReadBy      map[string]bool   `json:"read_by"`
	IsDeleted   bool              `json:"is_deleted"`
}
