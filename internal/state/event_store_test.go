package state

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/NomadCrew/neoevents/errors"
	"github.com/NomadCrew/neoevents/store"
	"github.com/NomadCrew/neoevents/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	rock = types.Event{ID: "e1", Title: "Rock Night", Date: "2024-06-15", Category: "Rock"}
	jazz = types.Event{ID: "e2", Title: "Jazz Trio", Date: "2024-06-16", Category: "Jazz"}
	pop  = types.Event{ID: "e3", Title: "Pop Fest", Date: "2024-06-17", Category: "Pop"}
)

func newTestEventStore(t *testing.T, src *fakeSource, favs *memFavs, n FavoriteNotifier) *EventStore {
	t.Helper()
	resetMetricsForTesting()
	if src == nil {
		src = &fakeSource{}
	}
	if favs == nil {
		favs = &memFavs{}
	}
	return NewEventStore(src, favs, n)
}

func TestEventStore_FetchReplacesList(t *testing.T) {
	src := &fakeSource{}
	src.script(
		&fetchCall{events: []types.Event{rock, jazz}},
		&fetchCall{events: []types.Event{pop}},
	)
	s := newTestEventStore(t, src, nil, nil)

	require.NoError(t, s.FetchEvents(context.Background(), 43.26, -2.93))
	assert.Equal(t, []types.Event{rock, jazz}, s.State().Events)
	assert.Equal(t, 43.26, src.calls[0].lat)
	assert.Equal(t, -2.93, src.calls[0].lng)

	require.NoError(t, s.FetchEvents(context.Background(), 40.41, -3.70))
	assert.Equal(t, []types.Event{pop}, s.State().Events, "no merge with the previous list")
}

func TestEventStore_FetchFailureKeepsList(t *testing.T) {
	src := &fakeSource{}
	src.script(
		&fetchCall{events: []types.Event{rock, jazz}},
		&fetchCall{err: errors.New("503 from upstream")},
	)
	s := newTestEventStore(t, src, nil, nil)

	require.NoError(t, s.FetchEvents(context.Background(), 1, 1))
	before := s.State()

	err := s.FetchEvents(context.Background(), 2, 2)
	assert.Error(t, err)
	assert.Equal(t, before.Events, s.State().Events)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.fetches.WithLabelValues(fetchResultError)))
}

func TestEventStore_NilResultBecomesEmptyList(t *testing.T) {
	src := &fakeSource{}
	src.script(&fetchCall{events: nil})
	s := newTestEventStore(t, src, nil, nil)

	require.NoError(t, s.FetchEvents(context.Background(), 1, 1))
	assert.NotNil(t, s.State().Events)
	assert.Empty(t, s.State().Events)
}

func TestEventStore_StaleResponseDiscarded(t *testing.T) {
	slow := &fetchCall{events: []types.Event{rock}, release: make(chan struct{})}
	fast := &fetchCall{events: []types.Event{pop}}
	src := &fakeSource{started: make(chan struct{}, 2)}
	src.script(slow, fast)
	s := newTestEventStore(t, src, nil, nil)
	ctx := context.Background()

	s.FetchEventsAsync(ctx, 1, 1)
	<-src.started
	s.FetchEventsAsync(ctx, 2, 2)
	<-src.started

	// Let the newer fetch land first, then release the older one.
	require.Eventually(t, func() bool {
		return len(s.State().Events) == 1 && s.State().Events[0].ID == pop.ID
	}, time.Second, 5*time.Millisecond)
	close(slow.release)
	require.NoError(t, s.WaitForFetches(ctx))

	assert.Equal(t, []types.Event{pop}, s.State().Events)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.stale))
}

func TestEventStore_SelectEvent(t *testing.T) {
	src := &fakeSource{}
	src.script(&fetchCall{events: []types.Event{rock, jazz}})
	s := newTestEventStore(t, src, nil, nil)
	require.NoError(t, s.FetchEvents(context.Background(), 1, 1))

	e, err := s.SelectEvent("e2")
	require.NoError(t, err)
	assert.Equal(t, jazz, e)
	require.NotNil(t, s.State().Selected)
	assert.Equal(t, "e2", s.State().Selected.ID)

	_, err = s.SelectEvent("missing")
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.NotFoundError, appErr.Type)
	assert.Equal(t, "e2", s.State().Selected.ID, "rejected selection has no effect")

	s.ClearSelection()
	assert.Nil(t, s.State().Selected)
}

func TestEventStore_SelectOnEmptyListRejected(t *testing.T) {
	s := newTestEventStore(t, nil, nil, nil)
	_, err := s.SelectEvent("e1")
	assert.Error(t, err)
	assert.Nil(t, s.State().Selected)
}

func TestEventStore_RefetchClearsDanglingSelection(t *testing.T) {
	src := &fakeSource{}
	src.script(
		&fetchCall{events: []types.Event{rock, jazz}},
		&fetchCall{events: []types.Event{jazz, pop}},
		&fetchCall{events: []types.Event{pop}},
	)
	s := newTestEventStore(t, src, nil, nil)
	ctx := context.Background()

	require.NoError(t, s.FetchEvents(ctx, 1, 1))
	_, err := s.SelectEvent("e2")
	require.NoError(t, err)

	require.NoError(t, s.FetchEvents(ctx, 1, 1))
	require.NotNil(t, s.State().Selected, "still present after refetch")
	assert.Equal(t, "e2", s.State().Selected.ID)

	require.NoError(t, s.FetchEvents(ctx, 1, 1))
	assert.Nil(t, s.State().Selected)
}

func TestEventStore_ToggleFavoriteRoundTrip(t *testing.T) {
	favs := &memFavs{ids: []string{"x"}}
	s := newTestEventStore(t, nil, favs, nil)
	ctx := context.Background()
	s.LoadFavorites(ctx)
	original := s.State().Favorites

	added, err := s.ToggleFavorite(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{"x", "e1"}, s.State().Favorites)
	assert.Equal(t, []string{"x", "e1"}, favs.ids)

	added, err = s.ToggleFavorite(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, original, s.State().Favorites)
	assert.Equal(t, original, favs.ids, "final state persisted")
	assert.Len(t, favs.saves, 2, "every toggle persists")
}

func TestEventStore_ToggleFavoriteNotFilteredByList(t *testing.T) {
	favs := &memFavs{}
	s := newTestEventStore(t, nil, favs, nil)

	_, err := s.ToggleFavorite(context.Background(), "not-fetched")
	require.NoError(t, err)
	assert.True(t, s.IsFavorite("not-fetched"))
	assert.Equal(t, []string{"not-fetched"}, favs.ids)
}

func TestEventStore_ToggleFavoritePersistsBeforeNotifying(t *testing.T) {
	src := &fakeSource{}
	src.script(&fetchCall{events: []types.Event{rock}})
	favs := &memFavs{}
	n := &recordingNotifier{favs: favs}
	s := newTestEventStore(t, src, favs, n)
	ctx := context.Background()
	require.NoError(t, s.FetchEvents(ctx, 1, 1))

	_, err := s.ToggleFavorite(ctx, "e1")
	require.NoError(t, err)

	require.Len(t, n.events, 1)
	assert.Equal(t, "Rock Night", n.events[0].Title)
	assert.Equal(t, [][]string{{"e1"}}, n.persistedAtNotify)

	_, err = s.ToggleFavorite(ctx, "e1")
	require.NoError(t, err)
	assert.Len(t, n.events, 1, "removal does not notify")
}

func TestEventStore_ToggleFavoriteUnknownTitleFallsBackToID(t *testing.T) {
	n := &recordingNotifier{}
	s := newTestEventStore(t, nil, nil, n)

	_, err := s.ToggleFavorite(context.Background(), "G5v")
	require.NoError(t, err)
	require.Len(t, n.events, 1)
	assert.Equal(t, "G5v", n.events[0].Title)
}

func TestEventStore_ToggleFavoriteStorageFailure(t *testing.T) {
	favs := &memFavs{ids: []string{"a"}}
	n := &recordingNotifier{}
	s := newTestEventStore(t, nil, favs, n)
	ctx := context.Background()
	s.LoadFavorites(ctx)

	favs.saveErr = errors.New("disk full")
	_, err := s.ToggleFavorite(ctx, "b")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.StorageError, appErr.Type)
	assert.Equal(t, []string{"a"}, s.State().Favorites)
	assert.Empty(t, n.events)
}

func TestEventStore_ToggleFavoriteEmptyID(t *testing.T) {
	s := newTestEventStore(t, nil, nil, nil)
	_, err := s.ToggleFavorite(context.Background(), "  ")
	assert.Error(t, err)
}

func TestEventStore_LoadFavoritesFailsSoft(t *testing.T) {
	favs := &memFavs{loadErr: fmt.Errorf("%w: unexpected end of JSON input", store.ErrCorruptedValue)}
	s := newTestEventStore(t, nil, favs, nil)

	s.LoadFavorites(context.Background())
	assert.NotNil(t, s.State().Favorites)
	assert.Empty(t, s.State().Favorites)

	_, err := s.ToggleFavorite(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, favs.ids, "corrupted slot is replaced")
}

func TestEventStore_ReadErrorDoesNotWipeStoredFavorites(t *testing.T) {
	favs := &memFavs{ids: []string{"a", "b"}, loadErr: errors.New("redis: connection refused")}
	s := newTestEventStore(t, nil, favs, nil)
	ctx := context.Background()

	s.LoadFavorites(ctx)
	assert.Empty(t, s.State().Favorites)

	favs.loadErr = nil
	added, err := s.ToggleFavorite(ctx, "x")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{"a", "b", "x"}, favs.ids)
	assert.Equal(t, []string{"a", "b", "x"}, s.State().Favorites)
}

func TestEventStore_ToggleWhileBackendUnreadable(t *testing.T) {
	favs := &memFavs{ids: []string{"a"}, loadErr: errors.New("redis: connection refused")}
	n := &recordingNotifier{}
	s := newTestEventStore(t, nil, favs, n)
	ctx := context.Background()
	s.LoadFavorites(ctx)

	_, err := s.ToggleFavorite(ctx, "x")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.StorageError, appErr.Type)
	assert.Empty(t, favs.saves, "nothing written")
	assert.Equal(t, []string{"a"}, favs.ids)
	assert.Empty(t, n.events)
}

func TestEventStore_LoadFavoritesDedupes(t *testing.T) {
	favs := &memFavs{ids: []string{"a", "b", "a", ""}}
	s := newTestEventStore(t, nil, favs, nil)

	s.LoadFavorites(context.Background())
	assert.Equal(t, []string{"a", "b"}, s.State().Favorites)
	assert.Equal(t, map[string]bool{"a": true, "b": true}, s.State().FavoriteSet())
}

func TestEventStore_SubscribersSeeEveryChange(t *testing.T) {
	src := &fakeSource{}
	src.script(&fetchCall{events: []types.Event{rock}})
	s := newTestEventStore(t, src, nil, nil)
	ctx := context.Background()

	var seen []EventState
	s.Subscribe(func(st EventState) { seen = append(seen, st) })

	require.NoError(t, s.FetchEvents(ctx, 1, 1))
	_, err := s.SelectEvent("e1")
	require.NoError(t, err)
	_, err = s.ToggleFavorite(ctx, "e1")
	require.NoError(t, err)

	require.Len(t, seen, 3)
	assert.Equal(t, []types.Event{rock}, seen[0].Events)
	assert.Equal(t, "e1", seen[1].Selected.ID)
	assert.Equal(t, []string{"e1"}, seen[2].Favorites)
}
