package handlers

import (
	"context"

	"github.com/NomadCrew/neoevents/types"
	"github.com/stretchr/testify/mock"
)

type MockDiscoveryService struct {
	mock.Mock
}

func (m *MockDiscoveryService) Snapshot() types.Snapshot {
	return m.Called().Get(0).(types.Snapshot)
}

func (m *MockDiscoveryService) Filter() types.FilterMode {
	return m.Called().Get(0).(types.FilterMode)
}

func (m *MockDiscoveryService) VisibleEventsFor(mode types.FilterMode) []types.EventView {
	return m.Called(mode).Get(0).([]types.EventView)
}

func (m *MockDiscoveryService) SetLocation(coords types.Coordinates) error {
	return m.Called(coords).Error(0)
}

func (m *MockDiscoveryService) ResetToDeviceLocation(ctx context.Context) (types.Coordinates, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.Coordinates), args.Error(1)
}

func (m *MockDiscoveryService) Search(ctx context.Context, place string) (types.Coordinates, bool) {
	args := m.Called(ctx, place)
	return args.Get(0).(types.Coordinates), args.Bool(1)
}

func (m *MockDiscoveryService) SetFilter(mode types.FilterMode) {
	m.Called(mode)
}

func (m *MockDiscoveryService) Refresh(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDiscoveryService) SelectEvent(id string) (types.Event, error) {
	args := m.Called(id)
	return args.Get(0).(types.Event), args.Error(1)
}

func (m *MockDiscoveryService) NavigateTo(id string) (string, bool, error) {
	args := m.Called(id)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockDiscoveryService) AwaitFetches(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var _ DiscoveryServiceInterface = (*MockDiscoveryService)(nil)

type MockFavoritesService struct {
	mock.Mock
}

func (m *MockFavoritesService) Favorites() []string {
	return m.Called().Get(0).([]string)
}

func (m *MockFavoritesService) FavoriteEvents() []types.Event {
	return m.Called().Get(0).([]types.Event)
}

func (m *MockFavoritesService) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

var _ FavoritesServiceInterface = (*MockFavoritesService)(nil)

type MockNotificationPermissions struct {
	mock.Mock
}

func (m *MockNotificationPermissions) Available() bool {
	return m.Called().Bool(0)
}

func (m *MockNotificationPermissions) Permitted() bool {
	return m.Called().Bool(0)
}

func (m *MockNotificationPermissions) SetPermission(granted bool) {
	m.Called(granted)
}

var _ NotificationPermissionInterface = (*MockNotificationPermissions)(nil)

type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	return m.Called(ctx).Get(0).(types.HealthCheck)
}

var _ HealthServiceInterface = (*MockHealthService)(nil)
