package model

import "encoding/json"

// Kind classifies what content or screen a notification refers to.
type Kind string

const (
	KindPost    Kind = "post"
	KindProject Kind = "project"
	KindCircle  Kind = "circle"
	KindProfile Kind = "profile"
	KindChat    Kind = "chat"
	KindUnknown Kind = "unknown"
)

// TargetIDs holds the entity identifiers a notification points at.
// Which fields are populated depends on the record's Kind.
type TargetIDs struct {
	PostID       string `json:"post_id,omitempty"`
	ProjectID    string `json:"project_id,omitempty"`
	CircleID     string `json:"circle_id,omitempty"`
	GiverID      string `json:"giver_id,omitempty"`
	FollowerID   string `json:"follower_id,omitempty"`
	TargetUserID string `json:"target_user_id,omitempty"`
}

// ChatRoom is the room descriptor carried by chat notifications. The
// backend serializes it into the payload's user_info field; fields beyond
// the ones modeled here are preserved in RawJSON for the chat screen.
type ChatRoom struct {
	RoomID  string `json:"room_id"`
	UserID  string `json:"user_id"`
	RawJSON string `json:"raw_json,omitempty"`
}

// ParseChatRoom decodes a serialized room descriptor. The original JSON is
// retained so the chat screen receives every field the backend sent.
func ParseChatRoom(raw string) (*ChatRoom, error) {
	var room ChatRoom
	if err := json.Unmarshal([]byte(raw), &room); err != nil {
		return nil, err
	}
	room.RawJSON = raw
	return &room, nil
}

// NotificationRecord is the normalized internal representation of one
// inbound push message. Records are created on ingress, read by the click
// router, and deleted after routing or by cache eviction.
type NotificationRecord struct {
	// ID is unique per delivered message. When the transport does not
	// assign one, a synthetic id is generated at ingress.
	ID string `json:"id"`

	// Kind discriminates the payload shape. A chat record always carries
	// a non-nil ChatRoom; no other kind ever does.
	Kind Kind `json:"kind"`

	// Title and Body are the human-readable alert strings.
	Title string `json:"title"`
	Body  string `json:"body"`

	// Targets holds entity ids relevant to Kind.
	Targets TargetIDs `json:"targets"`

	// ChatRoom is set only for KindChat.
	ChatRoom *ChatRoom `json:"chat_room,omitempty"`

	// AccountType is the sender's account type, used for profile routing.
	AccountType string `json:"account_type,omitempty"`

	// ReceivedAt is epoch milliseconds, used for recency ordering and
	// eviction only. It is not a cross-device wall-clock guarantee.
	ReceivedAt int64 `json:"received_at"`

	// Raw preserves the original data payload for fields not otherwise
	// modeled.
	Raw map[string]string `json:"raw,omitempty"`
}

// IsChat reports whether the record refers to a chat thread.
func (r NotificationRecord) IsChat() bool {
	return r.Kind == KindChat
}
