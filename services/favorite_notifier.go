package services

import (
	"context"
	"sync/atomic"

	"github.com/NomadCrew/neoevents/internal/notification"
	"github.com/NomadCrew/neoevents/logger"
	"github.com/NomadCrew/neoevents/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FavoriteSender delivers a "favorite saved" notification.
type FavoriteSender interface {
	SendFavoriteSaved(ctx context.Context, userID, notificationID string, data notification.FavoriteSavedData) (*notification.Response, error)
}

// JobSubmitter accepts fire-and-forget work.
type JobSubmitter interface {
	Submit(job Job) bool
}

// FavoriteNotifier turns newly saved favorites into notifications. The channel
// is available when a sender is configured; it is used only once permission
// has been granted.
type FavoriteNotifier struct {
	sender    FavoriteSender
	jobs      JobSubmitter
	userID    string
	permitted atomic.Bool
	log       *zap.SugaredLogger
}

// NewFavoriteNotifier returns a notifier. A nil sender leaves the channel
// unavailable and every notification is skipped.
func NewFavoriteNotifier(sender FavoriteSender, jobs JobSubmitter, userID string, granted bool) *FavoriteNotifier {
	n := &FavoriteNotifier{
		sender: sender,
		jobs:   jobs,
		userID: userID,
		log:    logger.GetLogger().Named("favorite-notifier"),
	}
	n.permitted.Store(granted)
	return n
}

// Available reports whether a notification channel is configured.
func (n *FavoriteNotifier) Available() bool {
	return n.sender != nil && n.jobs != nil
}

// Permitted reports whether notifications have been granted.
func (n *FavoriteNotifier) Permitted() bool {
	return n.permitted.Load()
}

// SetPermission records the user's answer to the permission request.
func (n *FavoriteNotifier) SetPermission(granted bool) {
	n.permitted.Store(granted)
	n.log.Infow("Notification permission updated", "granted", granted)
}

// FavoriteSaved queues the notification for event. It never blocks and never
// fails the caller.
func (n *FavoriteNotifier) FavoriteSaved(_ context.Context, event types.Event) {
	if !n.Available() {
		n.log.Debugw("Notification channel unavailable, skipping", "eventID", event.ID)
		return
	}
	if !n.Permitted() {
		n.log.Debugw("Notification permission not granted, skipping", "eventID", event.ID)
		return
	}

	data := notification.NewFavoriteSavedData(event.ID, event.Title, event.Date)
	notificationID := uuid.NewString()

	accepted := n.jobs.Submit(Job{
		Name: "favorite-saved:" + event.ID,
		Execute: func(ctx context.Context) error {
			_, err := n.sender.SendFavoriteSaved(ctx, n.userID, notificationID, data)
			return err
		},
	})
	if !accepted {
		n.log.Warnw("Favorite notification dropped", "eventID", event.ID, "notificationID", notificationID)
	}
}
