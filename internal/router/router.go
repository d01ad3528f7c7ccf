// Package router resolves a click on a delivered alert back to its
// notification record and performs exactly one navigation, consuming the
// record so a stale duplicate click cannot re-navigate.
package router

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/nhle/push-center/internal/alert"
	"github.com/nhle/push-center/internal/api"
	"github.com/nhle/push-center/internal/ingress"
	"github.com/nhle/push-center/internal/model"
	"github.com/nhle/push-center/internal/navigator"
	"github.com/nhle/push-center/internal/session"
	"github.com/nhle/push-center/internal/store"
)

// UserAlerter surfaces a user-visible error dialog. Only dispatch fetch
// failures are surfaced; every other failure mode stays silent.
type UserAlerter interface {
	ShowError(title, message string)
}

// Router is the click router. Route is the single entry point; it is safe
// to call from concurrent click callbacks because the store serializes its
// own access and each call touches independent state.
type Router struct {
	inbox   *store.Inbox
	backend *api.Client
	nav     navigator.Navigator
	session *session.Session
	alerts  UserAlerter
	logger  *zap.Logger
}

// New creates a Router.
func New(
	inbox *store.Inbox,
	backend *api.Client,
	nav navigator.Navigator,
	sess *session.Session,
	alerts UserAlerter,
	logger *zap.Logger,
) *Router {
	return &Router{
		inbox:   inbox,
		backend: backend,
		nav:     nav,
		session: sess,
		alerts:  alerts,
		logger:  logger,
	}
}

// Route handles one click event. Guarantees: at most one backend read, at
// most one navigation, and eviction of the resolved record regardless of
// fetch outcome. Failures are logged, never propagated; the alert itself
// already conveyed the message to the user.
func (r *Router) Route(ctx context.Context, click alert.Click) {
	// A chat room descriptor on the click payload itself routes directly,
	// without a store lookup.
	if raw := click.Data["user_info"]; raw != "" {
		room, err := model.ParseChatRoom(raw)
		if err == nil {
			r.routeChat(ctx, room, "")
			return
		}
		r.logger.Warn("click carried malformed chat payload", zap.Error(err))
	}

	if id := click.Data["message_id"]; id != "" {
		r.lookup(ctx, id)
		return
	}

	// No id at all. Recognizably-chat titles fall back to the most recent
	// stored chat record; this covers platforms that drop correlation
	// data from local-notification clicks.
	if ingress.IsChatTitle(click.Title) {
		r.resolveMostRecentChat(ctx)
		return
	}

	r.logger.Warn("click without id or recognizable title dropped")
}

// lookup resolves a record by id and dispatches on its kind.
func (r *Router) lookup(ctx context.Context, id string) {
	rec, err := r.inbox.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		r.logger.Info("no record for clicked notification", zap.String("id", id))
		return
	}
	if err != nil {
		r.logger.Error("resolving clicked notification", zap.String("id", id), zap.Error(err))
		return
	}

	r.dispatch(ctx, rec)
}

// resolveMostRecentChat routes the highest-recency stored chat record.
func (r *Router) resolveMostRecentChat(ctx context.Context) {
	rec, err := r.inbox.MostRecentChat(ctx)
	if errors.Is(err, store.ErrNotFound) {
		r.logger.Info("chat-title click with no stored chat record")
		return
	}
	if err != nil {
		r.logger.Error("resolving most recent chat record", zap.Error(err))
		return
	}

	r.routeChat(ctx, rec.ChatRoom, rec.ID)
}

// dispatch performs the kind-specific navigation for a resolved record.
// The record is evicted on every exit path except unresolved session
// errors, so a fetch failure cannot cause a retry loop on a stale id.
func (r *Router) dispatch(ctx context.Context, rec *model.NotificationRecord) {
	switch rec.Kind {
	case model.KindChat:
		r.routeChat(ctx, rec.ChatRoom, rec.ID)

	case model.KindPost:
		r.routePost(ctx, rec)

	case model.KindProject:
		r.routeProject(ctx, rec)

	case model.KindCircle:
		r.routeCircle(ctx, rec)

	case model.KindProfile:
		r.routeProfile(ctx, rec)

	default:
		r.logger.Warn("record with unknown kind dropped", zap.String("id", rec.ID))
		r.evict(ctx, rec.ID)
	}
}

// routeChat marks the room read best-effort, navigates to the chat
// screen, and evicts every stored chat record so none can be replayed.
func (r *Router) routeChat(ctx context.Context, room *model.ChatRoom, recordID string) {
	if room == nil {
		r.logger.Error("chat record without room descriptor", zap.String("id", recordID))
		if recordID != "" {
			r.evict(ctx, recordID)
		}
		return
	}

	// Navigation proceeds whether or not this succeeds.
	if err := r.backend.MarkRoomRead(ctx, room.RoomID); err != nil {
		r.logger.Warn("marking chat room read",
			zap.String("room_id", room.RoomID),
			zap.Error(err),
		)
	}

	r.nav.Navigate(navigator.RoutePrivateChat, navigator.ChatParams(room))

	if recordID != "" {
		r.evict(ctx, recordID)
	}
	if err := r.inbox.EvictChats(ctx); err != nil {
		r.logger.Warn("evicting stored chat records", zap.Error(err))
	}
}

// routePost fetches the referenced post and navigates to the feed detail
// screen. On fetch failure the user sees an error and the record is still
// evicted.
func (r *Router) routePost(ctx context.Context, rec *model.NotificationRecord) {
	defer r.evict(ctx, rec.ID)

	if rec.Targets.PostID == "" {
		r.logger.Warn("post record without post id", zap.String("id", rec.ID))
		return
	}

	posts, err := r.backend.GetPost(ctx, rec.Targets.PostID)
	if err != nil {
		r.logger.Error("fetching post",
			zap.String("post_id", rec.Targets.PostID),
			zap.Error(err),
		)
		r.alerts.ShowError("Error", "Unable to fetch post data")
		return
	}

	token, _ := r.session.Token(ctx)
	r.nav.Navigate(navigator.RouteFeedDetail, navigator.PostParams(posts, 0, token))
}

// routeProject fetches the referenced project and navigates to the
// project detail screen, with the same failure contract as routePost.
func (r *Router) routeProject(ctx context.Context, rec *model.NotificationRecord) {
	defer r.evict(ctx, rec.ID)

	if rec.Targets.ProjectID == "" {
		r.logger.Warn("project record without project id", zap.String("id", rec.ID))
		return
	}

	project, err := r.backend.GetProject(ctx, rec.Targets.ProjectID)
	if err != nil {
		r.logger.Error("fetching project",
			zap.String("project_id", rec.Targets.ProjectID),
			zap.Error(err),
		)
		r.alerts.ShowError("Error", "Unable to fetch project data")
		return
	}

	token, _ := r.session.Token(ctx)
	accountType := r.session.AccountType(ctx)
	r.nav.Navigate(
		navigator.RouteProjectDetail,
		navigator.ProjectParams(project, accountType, token),
	)
}

// routeCircle navigates to the ratings-and-reviews screen with the stored
// session profile. No backend read is involved.
func (r *Router) routeCircle(ctx context.Context, rec *model.NotificationRecord) {
	defer r.evict(ctx, rec.ID)

	profile, err := r.session.UserDocument(ctx)
	if err != nil {
		r.logger.Error("reading session profile for circle routing", zap.Error(err))
		return
	}

	r.nav.Navigate(navigator.RouteRatingsAndReviews, navigator.RatingsParams(profile))
}

// routeProfile navigates to the follower's profile: the user's own
// profile tab when the follower is the signed-in user, otherwise the
// personal or business profile screen by account type.
func (r *Router) routeProfile(ctx context.Context, rec *model.NotificationRecord) {
	defer r.evict(ctx, rec.ID)

	if rec.Targets.FollowerID == "" {
		r.logger.Warn("profile record without follower id", zap.String("id", rec.ID))
		return
	}

	currentID, err := r.session.CurrentUserID(ctx)
	if err != nil {
		r.logger.Error("reading current user for profile routing", zap.Error(err))
		return
	}

	if currentID != "" && currentID == rec.Targets.FollowerID {
		route, params := navigator.SelfProfile()
		r.nav.Navigate(route, params)
		return
	}

	route, params := navigator.OtherProfile(rec.Targets.FollowerID, rec.AccountType)
	r.nav.Navigate(route, params)
}

// evict removes a consumed record from both tiers. Evicting an absent id
// is a no-op, which is what makes duplicate clicks harmless.
func (r *Router) evict(ctx context.Context, id string) {
	if err := r.inbox.Evict(ctx, id); err != nil {
		r.logger.Warn("evicting record", zap.String("id", id), zap.Error(err))
	}
}
