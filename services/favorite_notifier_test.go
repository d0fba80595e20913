package services

import (
	"context"
	"sync"
	"testing"

	"github.com/NomadCrew/neoevents/internal/notification"
	"github.com/NomadCrew/neoevents/logger"
	"github.com/NomadCrew/neoevents/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

type sentNotification struct {
	userID         string
	notificationID string
	data           notification.FavoriteSavedData
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (f *fakeSender) SendFavoriteSaved(_ context.Context, userID, notificationID string, data notification.FavoriteSavedData) (*notification.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{userID: userID, notificationID: notificationID, data: data})
	return &notification.Response{NotificationID: notificationID, Status: "sent"}, f.err
}

func (f *fakeSender) all() []sentNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentNotification(nil), f.sent...)
}

// inlineJobs runs submitted jobs synchronously.
type inlineJobs struct {
	accept bool
	names  []string
}

func (j *inlineJobs) Submit(job Job) bool {
	j.names = append(j.names, job.Name)
	if !j.accept {
		return false
	}
	_ = job.Execute(context.Background())
	return true
}

func TestFavoriteNotifier_SendsWhenPermitted(t *testing.T) {
	sender := &fakeSender{}
	jobs := &inlineJobs{accept: true}
	n := NewFavoriteNotifier(sender, jobs, "user-1", true)

	n.FavoriteSaved(context.Background(), types.Event{ID: "e1", Title: "Rock Night", Date: "2024-06-15"})

	sent := sender.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "user-1", sent[0].userID)
	_, err := uuid.Parse(sent[0].notificationID)
	assert.NoError(t, err)
	assert.Equal(t, notification.FavoriteSavedTitle, sent[0].data.Title)
	assert.Equal(t, "Don't miss: Rock Night", sent[0].data.Body)
	assert.Equal(t, notification.FavoriteSavedIcon, sent[0].data.Icon)
	assert.Equal(t, notification.FavoriteSavedBadge, sent[0].data.Badge)
	assert.Equal(t, []string{"favorite-saved:e1"}, jobs.names)
}

func TestFavoriteNotifier_SkipsWithoutPermission(t *testing.T) {
	sender := &fakeSender{}
	jobs := &inlineJobs{accept: true}
	n := NewFavoriteNotifier(sender, jobs, "user-1", false)

	n.FavoriteSaved(context.Background(), types.Event{ID: "e1", Title: "Rock Night"})
	assert.Empty(t, sender.all())
	assert.Empty(t, jobs.names)

	n.SetPermission(true)
	assert.True(t, n.Permitted())
	n.FavoriteSaved(context.Background(), types.Event{ID: "e1", Title: "Rock Night"})
	assert.Len(t, sender.all(), 1)
}

func TestFavoriteNotifier_SkipsWhenUnavailable(t *testing.T) {
	n := NewFavoriteNotifier(nil, &inlineJobs{accept: true}, "user-1", true)
	assert.False(t, n.Available())
	n.FavoriteSaved(context.Background(), types.Event{ID: "e1"})
}

func TestFavoriteNotifier_DroppedOrFailedJobIsSilent(t *testing.T) {
	sender := &fakeSender{err: assert.AnError}
	n := NewFavoriteNotifier(sender, &inlineJobs{accept: true}, "user-1", true)
	n.FavoriteSaved(context.Background(), types.Event{ID: "e1", Title: "x"})
	assert.Len(t, sender.all(), 1)

	dropped := &fakeSender{}
	n = NewFavoriteNotifier(dropped, &inlineJobs{accept: false}, "user-1", true)
	n.FavoriteSaved(context.Background(), types.Event{ID: "e1", Title: "x"})
	assert.Empty(t, dropped.all())
}
