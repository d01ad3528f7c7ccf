package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// staticTokens is a TokenSource returning a fixed token.
type staticTokens string

func (s staticTokens) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

func TestGetPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ugc/get-specific-ugc/p1" {
			t.Errorf("path = %s, want /ugc/get-specific-ugc/p1", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q, want Bearer tok-1", got)
		}
		fmt.Fprint(w, `{"ugcs":[{"_id":"p1","contentType":"video","likes":3,"extra":"kept"}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, staticTokens("tok-1"))

	posts, err := client.GetPost(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}
	if posts[0].ID != "p1" || posts[0].ContentType != "video" || posts[0].Likes != 3 {
		t.Errorf("post = %+v, want modeled fields decoded", posts[0])
	}
	if len(posts[0].Raw) == 0 {
		t.Error("full post document not retained")
	}
}

func TestGetPostEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ugcs":[]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, staticTokens("tok-1"))

	_, err := client.GetPost(context.Background(), "gone")
	if !errors.Is(err, ErrEmptyResult) {
		t.Errorf("GetPost error = %v, want ErrEmptyResult", err)
	}
}

func TestGetPostStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, staticTokens("tok-1"))

	_, err := client.GetPost(context.Background(), "p1")
	if !IsStatusError(err) {
		t.Fatalf("GetPost error = %v, want StatusError", err)
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", statusErr.StatusCode)
	}
}

func TestGetRetriesOnTooManyRequests(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"project":{"_id":"pr1"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, staticTokens("tok-1"))

	project, err := client.GetProject(context.Background(), "pr1")
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if project.ID != "pr1" {
		t.Errorf("project id = %q, want pr1", project.ID)
	}
	if calls != 2 {
		t.Errorf("backend called %d times, want 2", calls)
	}
}

func TestGetProjectMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, staticTokens("tok-1"))

	_, err := client.GetProject(context.Background(), "pr1")
	if !errors.Is(err, ErrEmptyResult) {
		t.Errorf("GetProject error = %v, want ErrEmptyResult", err)
	}
}

func TestMarkRoomRead(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/message/read-all" {
			t.Errorf("request = %s %s, want POST /message/read-all", r.Method, r.URL.Path)
		}
		// The chat backend takes the raw token, no Bearer prefix.
		if got := r.Header.Get("Authorization"); got != "tok-1" {
			t.Errorf("Authorization = %q, want raw token", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing multipart form: %v", err)
		}
		if got := r.FormValue("room_id"); got != "room-7" {
			t.Errorf("room_id = %q, want room-7", got)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, staticTokens("tok-1"))

	if err := client.MarkRoomRead(context.Background(), "room-7"); err != nil {
		t.Fatalf("MarkRoomRead: %v", err)
	}
}

func TestMarkRoomReadStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, staticTokens("tok-1"))

	err := client.MarkRoomRead(context.Background(), "room-7")
	if !IsStatusError(err) {
		t.Errorf("MarkRoomRead error = %v, want StatusError", err)
	}
}
