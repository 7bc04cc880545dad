package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/dealspot/internal/core/deals"
	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/niksmo/dealspot/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProductsProducer struct {
	mock.Mock
}

func (m *MockProductsProducer) ProduceProducts(
	ctx context.Context, ps []domain.Product,
) error {
	return m.Called(ctx, ps).Error(0)
}

type MockProductsStorage struct {
	mock.Mock
}

func (m *MockProductsStorage) StoreProducts(
	ctx context.Context, ps []domain.Product,
) error {
	return m.Called(ctx, ps).Error(0)
}

func (m *MockProductsStorage) ListProducts(
	ctx context.Context, order domain.ProductOrder, limit, offset int,
) ([]domain.Product, error) {
	args := m.Called(ctx, order, limit, offset)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockProductsStorage) ReadProducts(
	ctx context.Context, ids []string,
) ([]domain.Product, error) {
	args := m.Called(ctx, ids)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

type MockSavedEmitter struct {
	mock.Mock
}

func (m *MockSavedEmitter) EmitSaveEvent(
	ctx context.Context, evt domain.SaveEvent,
) error {
	return m.Called(ctx, evt).Error(0)
}

type MockSavedReader struct {
	mock.Mock
}

func (m *MockSavedReader) SavedProductIDs(
	ctx context.Context, username string,
) ([]string, error) {
	args := m.Called(ctx, username)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type mocks struct {
	producer *MockProductsProducer
	storage  *MockProductsStorage
	emitter  *MockSavedEmitter
	reader   *MockSavedReader
}

func newService(t *testing.T) (*service.Service, mocks) {
	m := mocks{
		producer: new(MockProductsProducer),
		storage:  new(MockProductsStorage),
		emitter:  new(MockSavedEmitter),
		reader:   new(MockSavedReader),
	}
	settings := service.Settings{
		Rules:       deals.DefaultRules(),
		PageSize:    5,
		HideDelay:   time.Millisecond,
		FetchPolicy: domain.CacheFirst,
	}
	s := service.New(
		t.Context(), settings,
		m.producer, m.storage, m.emitter, m.reader, nil,
	)
	return s, m
}

func product(id, price, compareAt, shopName string) domain.Product {
	p := domain.Product{
		ProductID: id,
		Title:     id,
		Price:     domain.Money{Amount: price, CurrencyCode: "USD"},
	}
	if compareAt != "" {
		p.CompareAtPrice = &domain.Money{Amount: compareAt, CurrencyCode: "USD"}
	}
	if shopName != "" {
		p.Shop = &domain.Shop{ID: "id-" + shopName, Name: shopName}
	}
	return p
}

func productIDs(ps []domain.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ProductID
	}
	return out
}

func TestLoadPage(t *testing.T) {
	t.Run("Ordered", func(t *testing.T) {
		s, m := newService(t)
		six := []domain.Product{
			product("1", "1", "", ""), product("2", "1", "", ""),
			product("3", "1", "", ""), product("4", "1", "", ""),
			product("5", "1", "", ""), product("6", "1", "", ""),
		}
		m.storage.On("ListProducts", mock.Anything, domain.OrderByRating, 6, 10).
			Return(six, nil).Once()
		m.storage.On("ListProducts", mock.Anything, domain.OrderByRecent, 6, 0).
			Return(six[:2], nil).Once()

		page, err := s.LoadPage(t.Context(), domain.PageRequest{
			Spot: domain.Recommended, First: 5, Offset: 10,
		})
		require.NoError(t, err)
		assert.True(t, page.HasMore)
		assert.Len(t, page.Products, 5)

		page, err = s.LoadPage(t.Context(), domain.PageRequest{
			Spot: domain.Recent, First: 5,
		})
		require.NoError(t, err)
		assert.False(t, page.HasMore)
		assert.Len(t, page.Products, 2)
	})

	t.Run("Saved", func(t *testing.T) {
		s, m := newService(t)
		m.reader.On("SavedProductIDs", mock.Anything, "alice").
			Return([]string{"c", "a", "b"}, nil)
		m.storage.On("ReadProducts", mock.Anything, []string{"c", "a"}).
			Return([]domain.Product{product("a", "1", "", ""), product("c", "1", "", "")}, nil)

		page, err := s.LoadPage(t.Context(), domain.PageRequest{
			Spot: domain.Saved, Username: "alice", First: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a"}, productIDs(page.Products))
		assert.True(t, page.HasMore)

		page, err = s.LoadPage(t.Context(), domain.PageRequest{
			Spot: domain.Saved, Username: "alice", First: 2, Offset: 3,
		})
		require.NoError(t, err)
		assert.Empty(t, page.Products)
		assert.False(t, page.HasMore)
	})

	t.Run("StorageError", func(t *testing.T) {
		s, m := newService(t)
		m.storage.On("ListProducts", mock.Anything, domain.OrderByReviewCount, 6, 0).
			Return(nil, errors.New("boom"))

		_, err := s.LoadPage(t.Context(), domain.PageRequest{
			Spot: domain.Trending, First: 5,
		})
		require.Error(t, err)
	})
}

func TestHome(t *testing.T) {
	s, m := newService(t)

	pool := []domain.Product{
		product("p10", "90", "100", "Acme"),
		product("plain", "20", "", "Globex"),
		product("p45", "55", "100", "Globex"),
		product("p60", "40", "100", "Acme"),
		product("p60", "40", "100", "Acme"),
	}
	m.storage.On("ListProducts", mock.Anything, domain.OrderByReviewCount, 6, 0).
		Return(pool, nil).Once()

	var home domain.Home
	require.Eventually(t, func() bool {
		var err error
		home, err = s.Home(t.Context())
		if err != nil {
			return false
		}
		return home.Load.Idle() && len(home.Sections[0].Products) > 0
	}, time.Second, 5*time.Millisecond)

	require.Len(t, home.Sections, 4)
	assert.Equal(t, domain.TopDeals, home.Sections[0].Type)
	assert.Equal(t, []string{"p60", "p45", "p10"}, productIDs(home.Sections[0].Products))
	assert.Equal(t, []string{"p60"}, productIDs(home.Sections[1].Products))
	assert.Equal(t, "Acme", home.Sections[3].Subtitle)

	require.Len(t, home.QuickActions, 4)
	assert.Equal(t, "Acme Picks", home.QuickActions[3].Label)
	assert.Equal(t, "/store-deals?storeId=id-Acme", home.QuickActions[3].Route)

	list, err := s.SectionList(t.Context(), domain.StoreDeals, "Globex")
	require.NoError(t, err)
	assert.Equal(t, []string{"p45"}, productIDs(list.Products))
	require.Len(t, list.Rows, 1)

	res, err := s.FilterProducts(t.Context(), domain.FilterRequest{
		Section: domain.TopDeals,
		Filters: domain.ProductFilters{Shops: []string{"Acme"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p60", "p10"}, productIDs(res.Products))
	assert.Equal(t, []string{"Acme", "Globex"}, res.AvailableShops)
	assert.True(t, res.HasActiveFilters)

	m.storage.AssertExpectations(t)
}

func TestSavedSpotSkipsMissingProducts(t *testing.T) {
	s, m := newService(t)
	missing := []string{"x1", "x2", "x3", "x4", "x5"}
	m.reader.On("SavedProductIDs", mock.Anything, "alice").
		Return(append(missing, "a"), nil)
	m.storage.On("ReadProducts", mock.Anything, missing).Return(nil, nil)
	m.storage.On("ReadProducts", mock.Anything, []string{"a"}).
		Return([]domain.Product{product("a", "1", "", "")}, nil)

	page, err := s.LoadPage(t.Context(), domain.PageRequest{
		Spot: domain.Saved, Username: "alice", First: 5,
	})
	require.NoError(t, err)
	assert.Empty(t, page.Products)
	assert.True(t, page.HasMore)
	assert.Equal(t, 5, page.Next)

	req := domain.SpotRequest{Spot: domain.Saved, Username: "alice"}
	settled := func(hasMore bool) func() bool {
		return func() bool {
			v, err := s.Spot(t.Context(), req)
			return err == nil && v.Load.Idle() && v.HasMore == hasMore
		}
	}

	require.Eventually(t, settled(true), time.Second, 5*time.Millisecond)

	accepted, err := s.FetchMore(t.Context(), req)
	require.NoError(t, err)
	require.True(t, accepted)

	require.Eventually(t, settled(false), time.Second, 5*time.Millisecond)

	v, err := s.Spot(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, productIDs(v.Products))
	m.storage.AssertNumberOfCalls(t, "ReadProducts", 3)
}

func TestSpotRequiresUsername(t *testing.T) {
	s, _ := newService(t)

	_, err := s.Spot(t.Context(), domain.SpotRequest{Spot: domain.Saved})
	assert.ErrorIs(t, err, domain.ErrNoUsername)

	_, err = s.FetchMore(t.Context(), domain.SpotRequest{Spot: domain.Saved})
	assert.ErrorIs(t, err, domain.ErrNoUsername)
}

func TestSetSaved(t *testing.T) {
	s, m := newService(t)

	err := s.SetSaved(t.Context(), domain.SaveEvent{ProductID: "1", Saved: true})
	assert.ErrorIs(t, err, domain.ErrNoUsername)

	evt := domain.SaveEvent{Username: "bob", ProductID: "1", Saved: true}
	m.emitter.On("EmitSaveEvent", mock.Anything, evt).Return(nil).Once()
	require.NoError(t, s.SetSaved(t.Context(), evt))
	m.emitter.AssertExpectations(t)
}

func TestSaveProductsDedupes(t *testing.T) {
	s, m := newService(t)

	in := []domain.Product{product("1", "1", "", ""), product("1", "2", "", "")}
	m.storage.On("StoreProducts", mock.Anything, mock.MatchedBy(
		func(ps []domain.Product) bool { return len(ps) == 1 },
	)).Return(nil).Once()

	require.NoError(t, s.SaveProducts(t.Context(), in))
	m.storage.AssertExpectations(t)
}

func TestSendProducts(t *testing.T) {
	s, m := newService(t)

	ps := []domain.Product{product("1", "1", "", "")}
	m.producer.On("ProduceProducts", mock.Anything, ps).
		Return(errors.New("broker down")).Once()

	err := s.SendProducts(t.Context(), ps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Service.SendProducts")
}
