// Package ingress converts raw transport payloads into notification
// records, persists them, and triggers local presentation. One pure
// normalization path serves all three delivery states.
package ingress

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/nhle/push-center/internal/model"
	"github.com/nhle/push-center/internal/transport"
)

// Screen field values sent by the backend.
const (
	screenPosts    = "POSTS"
	screenProjects = "PROJECTS"
	screenCircles  = "CIRCLES"
	screenProfile  = "PROFILE"
)

// chatTitlePrefix identifies chat alerts by their displayed title. Used
// only as a click-time fallback for platforms that drop the correlation
// data from local-notification clicks; ingress never relies on it.
const chatTitlePrefix = "Message from "

// IsChatTitle reports whether a displayed alert title matches the chat
// notification pattern.
func IsChatTitle(title string) bool {
	return strings.HasPrefix(title, chatTitlePrefix)
}

// SyntheticID builds a message id for payloads the transport delivered
// without one: epoch milliseconds joined with a random fraction.
func SyntheticID(now time.Time) string {
	return fmt.Sprintf("%d_%v", now.UnixMilli(), rand.Float64())
}

// Normalize converts a raw transport message into a NotificationRecord.
// It is pure apart from the synthetic-id fallback: classification follows
// the precedence chat payload > screen field > unknown, and a chat payload
// that fails to parse falls through to screen classification.
func Normalize(msg transport.Message, now time.Time) model.NotificationRecord {
	id := msg.MessageID
	if id == "" {
		id = SyntheticID(now)
	}

	receivedAt := msg.SentTime
	if receivedAt == 0 {
		receivedAt = now.UnixMilli()
	}

	kind, room := classify(msg.Data)

	rec := model.NotificationRecord{
		ID:          id,
		Kind:        kind,
		Title:       msg.Title,
		Body:        msg.Body,
		ChatRoom:    room,
		AccountType: msg.Data["accountType"],
		ReceivedAt:  receivedAt,
		Raw:         copyData(msg.Data),
		Targets: model.TargetIDs{
			PostID:       firstOf(msg.Data, "postId", "post_id"),
			ProjectID:    firstOf(msg.Data, "projectId", "project_id"),
			CircleID:     msg.Data["circleId"],
			GiverID:      msg.Data["giverId"],
			FollowerID:   msg.Data["followerId"],
			TargetUserID: msg.Data["targetUserId"],
		},
	}

	return rec
}

// classify derives the record kind. Presence of a parseable chat payload
// wins; otherwise the screen field is mapped; ambiguous payloads are
// flagged as unknown rather than defaulted.
func classify(data map[string]string) (model.Kind, *model.ChatRoom) {
	if raw := data["user_info"]; raw != "" {
		room, err := model.ParseChatRoom(raw)
		if err == nil {
			return model.KindChat, room
		}
		// Malformed chat payload: fall through to screen classification.
	}

	switch data["screen"] {
	case screenPosts:
		return model.KindPost, nil
	case screenProjects:
		return model.KindProject, nil
	case screenCircles:
		return model.KindCircle, nil
	case screenProfile:
		return model.KindProfile, nil
	}

	return model.KindUnknown, nil
}

// firstOf returns the first non-empty value among the given keys.
func firstOf(data map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := data[key]; v != "" {
			return v
		}
	}
	return ""
}

// copyData clones the payload map so stored records do not alias
// transport-owned memory.
func copyData(data map[string]string) map[string]string {
	if len(data) == 0 {
		return nil
	}
	out := make(map[string]string, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
