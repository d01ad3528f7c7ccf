package ingress

import (
	"strings"
	"testing"
	"time"

	"github.com/nhle/push-center/internal/model"
	"github.com/nhle/push-center/internal/transport"
)

func TestNormalizeClassification(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	tests := []struct {
		name     string
		data     map[string]string
		wantKind model.Kind
	}{
		{
			name:     "post screen",
			data:     map[string]string{"screen": "POSTS", "postId": "p1"},
			wantKind: model.KindPost,
		},
		{
			name:     "project screen",
			data:     map[string]string{"screen": "PROJECTS", "projectId": "pr1"},
			wantKind: model.KindProject,
		},
		{
			name:     "circle screen",
			data:     map[string]string{"screen": "CIRCLES", "circleId": "c1"},
			wantKind: model.KindCircle,
		},
		{
			name:     "profile screen",
			data:     map[string]string{"screen": "PROFILE", "followerId": "u2"},
			wantKind: model.KindProfile,
		},
		{
			name:     "chat payload",
			data:     map[string]string{"user_info": `{"room_id":"r1","user_id":"u1"}`},
			wantKind: model.KindChat,
		},
		{
			name:     "chat payload wins over screen",
			data:     map[string]string{"user_info": `{"room_id":"r1"}`, "screen": "POSTS"},
			wantKind: model.KindChat,
		},
		{
			name:     "malformed chat payload falls back to screen",
			data:     map[string]string{"user_info": "{broken", "screen": "POSTS"},
			wantKind: model.KindPost,
		},
		{
			name:     "unrecognized screen",
			data:     map[string]string{"screen": "SETTINGS"},
			wantKind: model.KindUnknown,
		},
		{
			name:     "empty payload",
			data:     nil,
			wantKind: model.KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(transport.Message{MessageID: "m1", Data: tt.data}, now)
			if rec.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", rec.Kind, tt.wantKind)
			}
			if rec.Kind == model.KindChat && rec.ChatRoom == nil {
				t.Error("chat record is missing its room descriptor")
			}
			if rec.Kind != model.KindChat && rec.ChatRoom != nil {
				t.Errorf("%s record carries a room descriptor", rec.Kind)
			}
		})
	}
}

func TestNormalizeFields(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	msg := transport.Message{
		MessageID: "m1",
		Title:     "New post",
		Body:      "Alice shared a post",
		SentTime:  1699999990000,
		Data: map[string]string{
			"screen":      "POSTS",
			"post_id":     "p1",
			"accountType": "professional",
		},
	}

	rec := Normalize(msg, now)

	if rec.ID != "m1" {
		t.Errorf("ID = %q, want the transport message id", rec.ID)
	}
	if rec.Title != "New post" || rec.Body != "Alice shared a post" {
		t.Errorf("alert strings not carried over: %+v", rec)
	}
	if rec.ReceivedAt != 1699999990000 {
		t.Errorf("ReceivedAt = %d, want the transport sent time", rec.ReceivedAt)
	}
	if rec.Targets.PostID != "p1" {
		t.Errorf("PostID = %q, want p1 via the snake_case key", rec.Targets.PostID)
	}
	if rec.AccountType != "professional" {
		t.Errorf("AccountType = %q, want professional", rec.AccountType)
	}
	if rec.Raw["screen"] != "POSTS" {
		t.Errorf("Raw payload not preserved: %v", rec.Raw)
	}
}

func TestNormalizeDoesNotAliasPayload(t *testing.T) {
	data := map[string]string{"screen": "POSTS"}
	rec := Normalize(transport.Message{MessageID: "m1", Data: data}, time.Now())

	data["screen"] = "mutated"
	if rec.Raw["screen"] != "POSTS" {
		t.Error("stored record aliases the transport payload map")
	}
}

func TestNormalizeSyntheticID(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	rec := Normalize(transport.Message{}, now)
	if rec.ID == "" {
		t.Fatal("record without a transport id got no synthetic id")
	}
	if !strings.HasPrefix(rec.ID, "1700000000000_") {
		t.Errorf("synthetic id = %q, want epoch-millis prefix", rec.ID)
	}
	if rec.ReceivedAt != now.UnixMilli() {
		t.Errorf("ReceivedAt = %d, want current time when SentTime is unset", rec.ReceivedAt)
	}
}

func TestSyntheticIDsDiffer(t *testing.T) {
	now := time.Now()
	if SyntheticID(now) == SyntheticID(now) {
		t.Error("two synthetic ids from the same instant collided")
	}
}

func TestIsChatTitle(t *testing.T) {
	if !IsChatTitle("Message from Alice") {
		t.Error("chat title not recognized")
	}
	if IsChatTitle("New post") {
		t.Error("non-chat title recognized as chat")
	}
	if IsChatTitle("A Message from Alice") {
		t.Error("prefix match must anchor at the start")
	}
}
