package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/nhle/push-center/internal/alert"
	"github.com/nhle/push-center/internal/api"
	"github.com/nhle/push-center/internal/model"
	"github.com/nhle/push-center/internal/navigator"
	"github.com/nhle/push-center/internal/session"
	"github.com/nhle/push-center/internal/store"
	"github.com/nhle/push-center/tests/testutil"
)

// recordingNavigator captures navigation requests.
type recordingNavigator struct {
	routes []string
	params []navigator.Params
}

func (n *recordingNavigator) Navigate(route string, params navigator.Params) {
	n.routes = append(n.routes, route)
	n.params = append(n.params, params)
}

// recordingAlerter captures user-visible error dialogs.
type recordingAlerter struct {
	errors []string
}

func (a *recordingAlerter) ShowError(title, message string) {
	a.errors = append(a.errors, message)
}

type fixture struct {
	router *Router
	inbox  *store.Inbox
	nav    *recordingNavigator
	alerts *recordingAlerter
	sess   *session.Session
	kv     store.KeyValue
}

// newFixture builds a router over an in-memory store and the given backend.
// A nil handler gets a backend that fails every request.
func newFixture(t *testing.T, handler http.Handler) *fixture {
	t.Helper()

	if handler == nil {
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unexpected call", http.StatusInternalServerError)
		})
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	kv := testutil.NewTestKV(t)
	inbox := store.NewInbox(kv, store.DefaultCapacity)
	sess := session.New(kv, nil)
	if err := sess.SetToken(context.Background(), "tok-1"); err != nil {
		t.Fatalf("seeding session token: %v", err)
	}

	nav := &recordingNavigator{}
	alerts := &recordingAlerter{}
	backend := api.NewClient(server.URL, server.URL, sess)

	return &fixture{
		router: New(inbox, backend, nav, sess, alerts, zap.NewNop()),
		inbox:  inbox,
		nav:    nav,
		alerts: alerts,
		sess:   sess,
		kv:     kv,
	}
}

func mustPut(t *testing.T, inbox *store.Inbox, rec model.NotificationRecord) {
	t.Helper()
	if err := inbox.Put(context.Background(), rec); err != nil {
		t.Fatalf("Put %s: %v", rec.ID, err)
	}
}

func assertEvicted(t *testing.T, inbox *store.Inbox, id string) {
	t.Helper()
	if _, err := inbox.Get(context.Background(), id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("record %s not evicted, Get err = %v", id, err)
	}
}

func TestRouteChatFromClickPayload(t *testing.T) {
	var readRooms []string
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/message/read-all" {
			r.ParseMultipartForm(1 << 20)
			readRooms = append(readRooms, r.FormValue("room_id"))
			return
		}
		t.Errorf("unexpected request %s", r.URL.Path)
	}))

	f.router.Route(context.Background(), alert.Click{
		Data: map[string]string{"user_info": `{"room_id":"room-1","user_id":"u-2"}`},
	})

	if len(f.nav.routes) != 1 || f.nav.routes[0] != navigator.RoutePrivateChat {
		t.Fatalf("routes = %v, want one privateChat navigation", f.nav.routes)
	}
	room, ok := f.nav.params[0]["roomData"].(*model.ChatRoom)
	if !ok || room.RoomID != "room-1" {
		t.Errorf("roomData = %+v, want the parsed room descriptor", f.nav.params[0]["roomData"])
	}
	if len(readRooms) != 1 || readRooms[0] != "room-1" {
		t.Errorf("read-all rooms = %v, want [room-1]", readRooms)
	}
}

func TestRouteChatEvictsAllChatRecords(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ctx := context.Background()

	chat := model.NotificationRecord{
		ID:         "c1",
		Kind:       model.KindChat,
		ChatRoom:   &model.ChatRoom{RoomID: "room-1"},
		ReceivedAt: 100,
	}
	otherChat := model.NotificationRecord{
		ID:         "c2",
		Kind:       model.KindChat,
		ChatRoom:   &model.ChatRoom{RoomID: "room-2"},
		ReceivedAt: 50,
	}
	post := model.NotificationRecord{
		ID:         "p1",
		Kind:       model.KindPost,
		Targets:    model.TargetIDs{PostID: "post-1"},
		ReceivedAt: 200,
	}
	mustPut(t, f.inbox, chat)
	mustPut(t, f.inbox, otherChat)
	mustPut(t, f.inbox, post)

	f.router.Route(ctx, alert.Click{Data: map[string]string{"message_id": "c1"}})

	if len(f.nav.routes) != 1 || f.nav.routes[0] != navigator.RoutePrivateChat {
		t.Fatalf("routes = %v, want one privateChat navigation", f.nav.routes)
	}
	assertEvicted(t, f.inbox, "c1")
	assertEvicted(t, f.inbox, "c2")
	if _, err := f.inbox.Get(ctx, "p1"); err != nil {
		t.Errorf("non-chat record evicted by chat routing: %v", err)
	}
}

func TestRouteChatProceedsWhenMarkReadFails(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))

	f.router.Route(context.Background(), alert.Click{
		Data: map[string]string{"user_info": `{"room_id":"room-1"}`},
	})

	if len(f.nav.routes) != 1 || f.nav.routes[0] != navigator.RoutePrivateChat {
		t.Errorf("routes = %v, want navigation despite mark-read failure", f.nav.routes)
	}
	if len(f.alerts.errors) != 0 {
		t.Errorf("mark-read failure surfaced a user error: %v", f.alerts.errors)
	}
}

func TestRoutePost(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ugc/get-specific-ugc/post-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"ugcs":[{"_id":"post-1","contentType":"video"}]}`)
	}))
	ctx := context.Background()

	mustPut(t, f.inbox, model.NotificationRecord{
		ID:      "n1",
		Kind:    model.KindPost,
		Targets: model.TargetIDs{PostID: "post-1"},
	})

	f.router.Route(ctx, alert.Click{Data: map[string]string{"message_id": "n1"}})

	if len(f.nav.routes) != 1 || f.nav.routes[0] != navigator.RouteFeedDetail {
		t.Fatalf("routes = %v, want one FeedDetailExp navigation", f.nav.routes)
	}
	if got := f.nav.params[0]["type"]; got != "video" {
		t.Errorf("type param = %v, want video", got)
	}
	assertEvicted(t, f.inbox, "n1")
}

func TestRoutePostFetchFailureEvictsAndAlertsOnce(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	ctx := context.Background()

	mustPut(t, f.inbox, model.NotificationRecord{
		ID:      "n1",
		Kind:    model.KindPost,
		Targets: model.TargetIDs{PostID: "post-1"},
	})

	f.router.Route(ctx, alert.Click{Data: map[string]string{"message_id": "n1"}})

	if len(f.nav.routes) != 0 {
		t.Errorf("navigated despite fetch failure: %v", f.nav.routes)
	}
	if len(f.alerts.errors) != 1 || f.alerts.errors[0] != "Unable to fetch post data" {
		t.Errorf("user errors = %v, want exactly one fetch-failure dialog", f.alerts.errors)
	}
	assertEvicted(t, f.inbox, "n1")
}

func TestRouteProjectFetchFailureEvictsAndAlerts(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	ctx := context.Background()

	mustPut(t, f.inbox, model.NotificationRecord{
		ID:      "n1",
		Kind:    model.KindProject,
		Targets: model.TargetIDs{ProjectID: "pr-1"},
	})

	f.router.Route(ctx, alert.Click{Data: map[string]string{"message_id": "n1"}})

	if len(f.alerts.errors) != 1 || f.alerts.errors[0] != "Unable to fetch project data" {
		t.Errorf("user errors = %v, want one project fetch-failure dialog", f.alerts.errors)
	}
	assertEvicted(t, f.inbox, "n1")
}

func TestRouteIsAtMostOnce(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ugcs":[{"_id":"post-1"}]}`)
	}))
	ctx := context.Background()

	mustPut(t, f.inbox, model.NotificationRecord{
		ID:      "n1",
		Kind:    model.KindPost,
		Targets: model.TargetIDs{PostID: "post-1"},
	})

	click := alert.Click{Data: map[string]string{"message_id": "n1"}}
	f.router.Route(ctx, click)
	f.router.Route(ctx, click)

	if len(f.nav.routes) != 1 {
		t.Errorf("navigated %d times for duplicate clicks, want 1", len(f.nav.routes))
	}
	if len(f.alerts.errors) != 0 {
		t.Errorf("duplicate click surfaced a user error: %v", f.alerts.errors)
	}
}

func TestRouteChatTitleFallsBackToMostRecentChat(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ctx := context.Background()

	mustPut(t, f.inbox, model.NotificationRecord{
		ID:         "c1",
		Kind:       model.KindChat,
		ChatRoom:   &model.ChatRoom{RoomID: "room-old"},
		ReceivedAt: 100,
	})
	mustPut(t, f.inbox, model.NotificationRecord{
		ID:         "c2",
		Kind:       model.KindChat,
		ChatRoom:   &model.ChatRoom{RoomID: "room-new"},
		ReceivedAt: 200,
	})

	f.router.Route(ctx, alert.Click{Title: "Message from Alice"})

	if len(f.nav.routes) != 1 || f.nav.routes[0] != navigator.RoutePrivateChat {
		t.Fatalf("routes = %v, want one privateChat navigation", f.nav.routes)
	}
	room, _ := f.nav.params[0]["roomData"].(*model.ChatRoom)
	if room == nil || room.RoomID != "room-new" {
		t.Errorf("routed room = %+v, want the most recent chat", room)
	}
}

func TestRouteChatTitleWithNoStoredChat(t *testing.T) {
	f := newFixture(t, nil)

	f.router.Route(context.Background(), alert.Click{Title: "Message from Alice"})

	if len(f.nav.routes) != 0 {
		t.Errorf("navigated with no stored chat record: %v", f.nav.routes)
	}
}

func TestRouteUnknownClickDropped(t *testing.T) {
	f := newFixture(t, nil)

	f.router.Route(context.Background(), alert.Click{Title: "Something else"})

	if len(f.nav.routes) != 0 {
		t.Errorf("navigated on an unroutable click: %v", f.nav.routes)
	}
	if len(f.alerts.errors) != 0 {
		t.Errorf("unroutable click surfaced a user error: %v", f.alerts.errors)
	}
}

func TestRouteUnknownKindEvictsWithoutNavigating(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	mustPut(t, f.inbox, model.NotificationRecord{ID: "n1", Kind: model.KindUnknown})

	f.router.Route(ctx, alert.Click{Data: map[string]string{"message_id": "n1"}})

	if len(f.nav.routes) != 0 {
		t.Errorf("navigated for unknown kind: %v", f.nav.routes)
	}
	assertEvicted(t, f.inbox, "n1")
}

func TestRouteCircle(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if err := f.kv.Set(ctx, "user", `{"_id":"me","name":"Me"}`); err != nil {
		t.Fatalf("seeding user document: %v", err)
	}
	mustPut(t, f.inbox, model.NotificationRecord{ID: "n1", Kind: model.KindCircle})

	f.router.Route(ctx, alert.Click{Data: map[string]string{"message_id": "n1"}})

	if len(f.nav.routes) != 1 || f.nav.routes[0] != navigator.RouteRatingsAndReviews {
		t.Fatalf("routes = %v, want one RatingsAndReviews navigation", f.nav.routes)
	}
	if got := f.nav.params[0]["profile"]; got != `{"_id":"me","name":"Me"}` {
		t.Errorf("profile param = %v, want the stored user document", got)
	}
	assertEvicted(t, f.inbox, "n1")
}

func TestRouteProfileSelf(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if err := f.kv.Set(ctx, "user", `{"_id":"me"}`); err != nil {
		t.Fatalf("seeding user document: %v", err)
	}
	mustPut(t, f.inbox, model.NotificationRecord{
		ID:      "n1",
		Kind:    model.KindProfile,
		Targets: model.TargetIDs{FollowerID: "me"},
	})

	f.router.Route(ctx, alert.Click{Data: map[string]string{"message_id": "n1"}})

	if len(f.nav.routes) != 1 || f.nav.routes[0] != navigator.RouteBottomBar {
		t.Fatalf("routes = %v, want the profile tab via BottomBar", f.nav.routes)
	}
	assertEvicted(t, f.inbox, "n1")
}

func TestRouteProfileOther(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if err := f.kv.Set(ctx, "user", `{"_id":"me"}`); err != nil {
		t.Fatalf("seeding user document: %v", err)
	}
	mustPut(t, f.inbox, model.NotificationRecord{
		ID:          "n1",
		Kind:        model.KindProfile,
		Targets:     model.TargetIDs{FollowerID: "someone-else"},
		AccountType: "professional",
	})

	f.router.Route(ctx, alert.Click{Data: map[string]string{"message_id": "n1"}})

	if len(f.nav.routes) != 1 || f.nav.routes[0] != navigator.RouteOtherBusiness {
		t.Fatalf("routes = %v, want otherBusinessScreen for a professional account", f.nav.routes)
	}
	assertEvicted(t, f.inbox, "n1")
}
