package events

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"neontix/internal/shared/constants"
	"neontix/pkg/cache"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, event *Event) error {
	args := m.Called(ctx, event)
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	args := m.Called(ctx, id)
	if e, ok := args.Get(0).(*Event); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Event, error) {
	args := m.Called(ctx, id, updates)
	if e, ok := args.Get(0).(*Event); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepository) GetAll(ctx context.Context, query EventListQuery) ([]Event, int64, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]Event), args.Get(1).(int64), args.Error(2)
}

func sampleEvent() *Event {
	return &Event{
		ID:             uuid.New(),
		Title:          "Dune: Part Three",
		Category:       CategoryMovie,
		Date:           "2026-03-15",
		Time:           "7:30 PM",
		Venue:          "IMAX Theatre",
		City:           "Los Angeles",
		PriceMin:       18,
		PriceMax:       35,
		TotalSeats:     100,
		AvailableSeats: 100,
	}
}

func newCachedService(t *testing.T, repo Repository) (Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc := NewService(repo)
	svc.SetCacheService(cache.NewService(client))
	return svc, mr
}

func TestCreateEvent_DefaultsSeats(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *Event) bool {
		return e.TotalSeats == 100 && e.AvailableSeats == 100 && e.CreatedBy == "admin-1"
	})).Return(nil)

	svc := NewService(repo)
	resp, err := svc.CreateEvent(context.Background(), "admin-1", CreateEventRequest{
		Title:    "Coldplay World Tour",
		Category: "concert",
		Date:     "2026-03-25",
		Venue:    "Rose Bowl",
		City:     "Pasadena",
		PriceMin: 120,
		PriceMax: 400,
	})

	require.NoError(t, err)
	assert.Equal(t, 100, resp.AvailableSeats)
	assert.False(t, resp.SoldOut)
	repo.AssertExpectations(t)
}

func TestCreateEvent_RejectsInvertedPrices(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo)

	_, err := svc.CreateEvent(context.Background(), "admin-1", CreateEventRequest{
		Title: "x", Category: "comedy", PriceMin: 50, PriceMax: 10,
	})

	assert.ErrorIs(t, err, ErrInvalidPrice)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetEventByID_CachesDetail(t *testing.T) {
	event := sampleEvent()
	repo := new(mockRepository)
	repo.On("GetByID", mock.Anything, event.ID).Return(event, nil).Once()

	svc, mr := newCachedService(t, repo)

	first, err := svc.GetEventByID(context.Background(), event.ID)
	require.NoError(t, err)
	second, err := svc.GetEventByID(context.Background(), event.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Title, second.Title)
	assert.True(t, mr.Exists(constants.BuildEventDetailKey(event.ID.String())))
	repo.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestGetEventByID_NotFound(t *testing.T) {
	id := uuid.New()
	repo := new(mockRepository)
	repo.On("GetByID", mock.Anything, id).Return(nil, ErrEventNotFound)

	svc, mr := newCachedService(t, repo)

	_, err := svc.GetEventByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.False(t, mr.Exists(constants.BuildEventDetailKey(id.String())))
}

func TestUpdateEvent_ResizeKeepsSoldSeatsAndInvalidates(t *testing.T) {
	event := sampleEvent()
	event.AvailableSeats = 90
	updated := *event
	updated.TotalSeats, updated.AvailableSeats = 50, 40

	repo := new(mockRepository)
	repo.On("GetByID", mock.Anything, event.ID).Return(event, nil)
	repo.On("Update", mock.Anything, event.ID, map[string]interface{}{
		"total_seats":     50,
		"available_seats": 40,
	}).Return(&updated, nil)
	repo.On("GetAll", mock.Anything, mock.Anything).Return([]Event{*event}, int64(1), nil)

	svc, mr := newCachedService(t, repo)
	ctx := context.Background()

	// Warm the caches.
	_, err := svc.GetEventByID(ctx, event.ID)
	require.NoError(t, err)
	_, err = svc.GetAllEvents(ctx, EventListQuery{})
	require.NoError(t, err)
	require.NotEmpty(t, mr.Keys())

	total := 50
	resp, err := svc.UpdateEvent(ctx, event.ID, UpdateEventRequest{TotalSeats: &total})
	require.NoError(t, err)
	assert.Equal(t, 40, resp.AvailableSeats)
	assert.Empty(t, mr.Keys())
}

func TestUpdateEvent_PriceRangeUsesStoredBounds(t *testing.T) {
	event := sampleEvent()
	repo := new(mockRepository)
	repo.On("GetByID", mock.Anything, event.ID).Return(event, nil)

	svc := NewService(repo)
	priceMin := 60
	_, err := svc.UpdateEvent(context.Background(), event.ID, UpdateEventRequest{PriceMin: &priceMin})

	assert.ErrorIs(t, err, ErrInvalidPrice)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetAllEvents_PaginatesAndCachesPerFilter(t *testing.T) {
	repo := new(mockRepository)
	movie := sampleEvent()
	repo.On("GetAll", mock.Anything, mock.MatchedBy(func(q EventListQuery) bool {
		return q.Category == "movie" && q.Page == 1 && q.Limit == 50
	})).Return([]Event{*movie}, int64(1), nil).Once()
	repo.On("GetAll", mock.Anything, mock.MatchedBy(func(q EventListQuery) bool {
		return q.Category == "concert"
	})).Return([]Event{}, int64(0), nil).Once()

	svc, _ := newCachedService(t, repo)
	ctx := context.Background()

	movies, err := svc.GetAllEvents(ctx, EventListQuery{Category: "movie"})
	require.NoError(t, err)
	assert.Len(t, movies.Events, 1)
	assert.Equal(t, 1, movies.TotalPages)

	_, err = svc.GetAllEvents(ctx, EventListQuery{Category: "movie"})
	require.NoError(t, err)

	concerts, err := svc.GetAllEvents(ctx, EventListQuery{Category: "concert"})
	require.NoError(t, err)
	assert.Empty(t, concerts.Events)

	repo.AssertExpectations(t)
}

func TestListKey_DistinguishesFilters(t *testing.T) {
	low, high := 10, 40
	trending := true
	a := listKey(EventListQuery{Category: "movie", MinPrice: &low, Page: 1, Limit: 50})
	b := listKey(EventListQuery{Category: "movie", MaxPrice: &high, Page: 1, Limit: 50})
	c := listKey(EventListQuery{Trending: &trending, Page: 1, Limit: 50})

	assert.NotEqual(t, a, b)
	assert.Equal(t, "neontix:events:list:category:movie:min:10:page:1:limit:50", a)
	assert.Equal(t, "neontix:events:list:trending:true:page:1:limit:50", c)
}
