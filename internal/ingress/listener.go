package ingress

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/push-center/internal/alert"
	"github.com/nhle/push-center/internal/model"
	"github.com/nhle/push-center/internal/session"
	"github.com/nhle/push-center/internal/store"
	"github.com/nhle/push-center/internal/transport"
)

// tokenAttempts is how many times the device token fetch is retried
// during initialization.
const tokenAttempts = 3

// tokenRetryDelay separates token fetch attempts.
const tokenRetryDelay = 2 * time.Second

// ErrNoDeviceToken is returned when every token fetch attempt came back
// empty without a transport error.
var ErrNoDeviceToken = errors.New("ingress: device token unavailable")

// InitResult reports the outcome of the initialization sequence.
type InitResult struct {
	Granted bool
	Token   string
}

// Listener ingests push messages: normalize, store, present. Errors never
// escape a handler; they are logged and the remaining steps still run
// best-effort, so a storage failure does not suppress the user-visible
// alert.
type Listener struct {
	inbox     *store.Inbox
	presenter alert.Presenter
	transport transport.Transport
	session   *session.Session
	channel   alert.Channel
	logger    *zap.Logger
}

// NewListener creates a Listener.
func NewListener(
	inbox *store.Inbox,
	presenter alert.Presenter,
	tr transport.Transport,
	sess *session.Session,
	channel alert.Channel,
	logger *zap.Logger,
) *Listener {
	return &Listener{
		inbox:     inbox,
		presenter: presenter,
		transport: tr,
		session:   sess,
		channel:   channel,
		logger:    logger,
	}
}

// Initialize runs the startup sequence: register the alert channel,
// request permission, and fetch the device token with retries. Permission
// denial is reported to the caller and not retried.
func (l *Listener) Initialize(ctx context.Context) (InitResult, error) {
	if err := l.presenter.CreateChannel(l.channel); err != nil {
		l.logger.Warn("creating notification channel", zap.Error(err))
	}

	granted, err := l.transport.RequestPermission(ctx)
	if err != nil {
		return InitResult{}, err
	}
	if !granted {
		l.logger.Warn("notification permission denied")
		return InitResult{Granted: false}, nil
	}

	var token string
	var lastErr error
	for attempt := 1; attempt <= tokenAttempts; attempt++ {
		token, lastErr = l.transport.Token(ctx)
		if lastErr == nil && token != "" {
			break
		}
		l.logger.Warn("device token fetch failed",
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
		if attempt < tokenAttempts {
			select {
			case <-ctx.Done():
				return InitResult{}, ctx.Err()
			case <-time.After(tokenRetryDelay):
			}
		}
	}
	if token == "" {
		if lastErr != nil {
			return InitResult{Granted: true}, lastErr
		}
		return InitResult{Granted: true}, ErrNoDeviceToken
	}

	if err := l.session.SetDeviceToken(ctx, token); err != nil {
		l.logger.Warn("persisting device token", zap.Error(err))
	}

	return InitResult{Granted: true, Token: token}, nil
}

// HandleForeground ingests a message received while the app is active and
// presents a local alert for it. Returns the stored record.
func (l *Listener) HandleForeground(ctx context.Context, msg transport.Message) model.NotificationRecord {
	rec := l.ingest(ctx, msg, "foreground")
	l.present(rec)
	return rec
}

// HandleBackground ingests a message received while the app is
// backgrounded. The OS already rendered the alert, so none is presented.
func (l *Listener) HandleBackground(ctx context.Context, msg transport.Message) model.NotificationRecord {
	return l.ingest(ctx, msg, "background")
}

// HandleInitial ingests the message that launched the app from a
// terminated state. Like the background path, no alert is presented.
func (l *Listener) HandleInitial(ctx context.Context, msg transport.Message) model.NotificationRecord {
	return l.ingest(ctx, msg, "initial")
}

// ingest normalizes, stores, and prunes. All three entry points share it.
func (l *Listener) ingest(ctx context.Context, msg transport.Message, state string) model.NotificationRecord {
	rec := Normalize(msg, time.Now())

	if err := l.inbox.Put(ctx, rec); err != nil {
		l.logger.Error("storing notification record",
			zap.String("id", rec.ID),
			zap.String("state", state),
			zap.Error(err),
		)
	}
	l.inbox.PruneToCapacity()

	l.logger.Info("notification ingested",
		zap.String("id", rec.ID),
		zap.String("kind", string(rec.Kind)),
		zap.String("state", state),
	)

	return rec
}

// present shows a local alert carrying the record id as correlation data.
func (l *Listener) present(rec model.NotificationRecord) {
	l.presenter.Show(alert.Alert{
		ChannelID:  l.channel.ID,
		Title:      rec.Title,
		Message:    rec.Body,
		Importance: alert.ImportanceHigh,
		Data: map[string]string{
			"message_id":        rec.ID,
			"user_info":         rec.Raw["user_info"],
			"notification_type": string(rec.Kind),
			"timestamp":         formatMillis(rec.ReceivedAt),
		},
	})
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
