package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/orderin/database"
	"github.com/yeremiapane/orderin/domain"
	"github.com/yeremiapane/orderin/models"
)

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func fixedClock() func() time.Time {
	return func() time.Time { return fixedNow }
}

func newTestMenuStore(b database.Backend) *MenuStore {
	return NewMenuStore(b, WithClock(fixedClock()))
}

func cappuccino() *models.MenuItem {
	return &models.MenuItem{Name: "Cappuccino", Price: 4.5, Category: "Beverages", IsAvailable: true}
}

func TestMenuAddAssignsIDAndRev(t *testing.T) {
	b := newMemBackend()
	s := newTestMenuStore(b)

	item, err := s.Add(context.Background(), cappuccino())
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "1-test", item.Rev)
	assert.Equal(t, fixedNow, item.CreatedAt)
	assert.Equal(t, fixedNow, item.UpdatedAt)

	cached, ok := s.Get(item.ID)
	require.True(t, ok)
	assert.Equal(t, "1-test", cached.Rev)

	stored, ok := b.doc(item.ID)
	require.True(t, ok)
	assert.NotContains(t, string(stored.Body), `"rev"`)
}

func TestMenuToggleAvailability(t *testing.T) {
	b := newMemBackend()
	s := newTestMenuStore(b)
	ctx := context.Background()

	item, err := s.Add(ctx, cappuccino())
	require.NoError(t, err)

	toggled, err := s.ToggleAvailability(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsAvailable)
	assert.Equal(t, "2-test", toggled.Rev)
	assert.Equal(t, 2, b.putCount())
	assert.Len(t, s.Items(), 1)
}

func TestMenuAddIsVisibleBeforeAcknowledgement(t *testing.T) {
	b := newMemBackend()
	b.putGate = make(chan struct{})
	s := newTestMenuStore(b)

	done := make(chan *models.MenuItem)
	go func() {
		item, _ := s.Add(context.Background(), &models.MenuItem{
			Meta: models.Meta{ID: "m-1"}, Name: "Latte", Price: 4, Category: "Beverages",
		})
		done <- item
	}()

	assert.Eventually(t, func() bool {
		_, ok := s.Get("m-1")
		return ok
	}, time.Second, 5*time.Millisecond)
	assert.True(t, s.Status().Loading)
	cached, _ := s.Get("m-1")
	assert.Empty(t, cached.Rev)

	close(b.putGate)
	item := <-done
	assert.Equal(t, "1-test", item.Rev)
	assert.False(t, s.Status().Loading)
}

func TestMenuAddFailureRollsBack(t *testing.T) {
	b := newMemBackend()
	s := newTestMenuStore(b)
	ctx := context.Background()

	_, err := s.Add(ctx, cappuccino())
	require.NoError(t, err)
	before := s.Items()

	b.failPut = errors.New("disk full")
	item, err := s.Add(ctx, &models.MenuItem{Name: "Latte", Price: 4, Category: "Beverages"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.NotEmpty(t, item.ID, "attempted id is returned")
	assert.Equal(t, before, s.Items())
	assert.Contains(t, s.Status().Error, "disk full")
}

func TestMenuAddValidation(t *testing.T) {
	b := newMemBackend()
	s := newTestMenuStore(b)

	_, err := s.Add(context.Background(), &models.MenuItem{Name: "", Price: -1, Category: "Beverages"})
	assert.ErrorIs(t, err, domain.ErrValidationRejected)
	assert.Empty(t, s.Items())
	assert.Equal(t, 0, b.putCount())
}

func TestMenuUpdateMergesPartial(t *testing.T) {
	b := newMemBackend()
	s := newTestMenuStore(b)
	ctx := context.Background()

	item, err := s.Add(ctx, cappuccino())
	require.NoError(t, err)

	price := 5.25
	updated, err := s.Update(ctx, item.ID, models.MenuItemPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 5.25, updated.Price)
	assert.Equal(t, "Cappuccino", updated.Name)
	assert.Equal(t, item.CreatedAt, updated.CreatedAt)
	assert.Empty(t, s.Status().MutatingID)
}

func TestMenuUpdateKeepsUpdatedAtMonotonic(t *testing.T) {
	b := newMemBackend()
	now := fixedNow
	s := NewMenuStore(b, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	item, err := s.Add(ctx, cappuccino())
	require.NoError(t, err)

	now = fixedNow.Add(-time.Hour)
	name := "Big Cappuccino"
	updated, err := s.Update(ctx, item.ID, models.MenuItemPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, updated.UpdatedAt)
}

func TestMenuUpdateMarksMutatingID(t *testing.T) {
	b := newMemBackend()
	s := newTestMenuStore(b)
	ctx := context.Background()

	item, err := s.Add(ctx, cappuccino())
	require.NoError(t, err)

	b.putGate = make(chan struct{})
	done := make(chan error)
	go func() {
		_, err := s.ToggleAvailability(ctx, item.ID)
		done <- err
	}()

	assert.Eventually(t, func() bool {
		return s.Status().MutatingID == item.ID
	}, time.Second, 5*time.Millisecond)
	close(b.putGate)
	require.NoError(t, <-done)
	assert.Empty(t, s.Status().MutatingID)
}

func TestMenuUpdateUnknownID(t *testing.T) {
	s := newTestMenuStore(newMemBackend())

	name := "x"
	_, err := s.Update(context.Background(), "ghost", models.MenuItemPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, s.Status().MutatingID)
}

func TestMenuUpdateNotFoundInBackendCreates(t *testing.T) {
	b := newMemBackend()
	s := newTestMenuStore(b)
	ctx := context.Background()

	item, err := s.Add(ctx, cappuccino())
	require.NoError(t, err)
	b.reset()

	name := "Iced Cappuccino"
	updated, err := s.Update(ctx, item.ID, models.MenuItemPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, item.ID, updated.ID)
	assert.NotEmpty(t, updated.Rev)
	_, ok := b.doc(item.ID)
	assert.True(t, ok)
	assert.Len(t, s.Items(), 1)
}

func TestMenuUpdateOtherErrorRevertsWithoutRetry(t *testing.T) {
	b := newMemBackend()
	s := newTestMenuStore(b)
	ctx := context.Background()

	item, err := s.Add(ctx, cappuccino())
	require.NoError(t, err)
	before := s.Items()
	putsBefore := b.putCount()

	b.failPut = errors.New("io timeout")
	name := "Mocha"
	_, err = s.Update(ctx, item.ID, models.MenuItemPatch{Name: &name})
	require.Error(t, err)
	assert.Equal(t, putsBefore+1, b.putCount())
	assert.Equal(t, before, s.Items())
}

func TestMenuDeleteIsNotOptimistic(t *testing.T) {
	b := newMemBackend()
	s := newTestMenuStore(b)
	ctx := context.Background()

	item, err := s.Add(ctx, cappuccino())
	require.NoError(t, err)

	b.failRemove = errors.New("locked")
	err = s.Delete(ctx, item.ID)
	require.Error(t, err)
	_, ok := s.Get(item.ID)
	assert.True(t, ok)

	b.failRemove = nil
	require.NoError(t, s.Delete(ctx, item.ID))
	_, ok = s.Get(item.ID)
	assert.False(t, ok)
	_, ok = b.doc(item.ID)
	assert.False(t, ok)
}

func TestMenuDeleteMissingIsDomainError(t *testing.T) {
	b := newMemBackend()
	s := newTestMenuStore(b)
	ctx := context.Background()

	item, err := s.Add(ctx, cappuccino())
	require.NoError(t, err)
	b.reset()

	err = s.Delete(ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, ok := s.Get(item.ID)
	assert.True(t, ok)
}

func TestMenuLoadKeepsCacheOnEmptyBackend(t *testing.T) {
	b := newMemBackend()
	s := newTestMenuStore(b)
	ctx := context.Background()

	_, err := s.Add(ctx, cappuccino())
	require.NoError(t, err)
	_, err = s.Add(ctx, &models.MenuItem{Name: "Latte", Price: 4, Category: "Beverages"})
	require.NoError(t, err)
	b.reset()

	items := s.Load(ctx)
	assert.Len(t, items, 2)
	assert.Len(t, s.Items(), 2)
}

func TestMenuLoadErrorReturnsPreviousSnapshot(t *testing.T) {
	b := newMemBackend()
	s := newTestMenuStore(b)
	ctx := context.Background()

	_, err := s.Add(ctx, cappuccino())
	require.NoError(t, err)
	before := s.Items()

	b.failList = errors.New("engine closed")
	assert.Equal(t, before, s.Load(ctx))
	assert.NotEmpty(t, s.Status().Error)
	assert.False(t, s.Status().Loading)

	b.failList = nil
	s.Load(ctx)
	assert.Empty(t, s.Status().Error, "error cleared by the next operation")
}

func TestMenuRoundTrip(t *testing.T) {
	b := newMemBackend()
	ctx := context.Background()
	writer := newTestMenuStore(b)

	added, err := writer.Add(ctx, cappuccino())
	require.NoError(t, err)

	reader := newTestMenuStore(b)
	reader.Load(ctx)
	got, ok := reader.Get(added.ID)
	require.True(t, ok)
	assert.Equal(t, added.Name, got.Name)
	assert.Equal(t, added.Price, got.Price)
	assert.Equal(t, added.Category, got.Category)
	assert.Equal(t, added.IsAvailable, got.IsAvailable)
	assert.True(t, added.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, added.Rev, got.Rev)
}

func TestMenuAvailableAndCategories(t *testing.T) {
	s := newTestMenuStore(newMemBackend())
	ctx := context.Background()

	_, err := s.Add(ctx, cappuccino())
	require.NoError(t, err)
	_, err = s.Add(ctx, &models.MenuItem{Name: "Cake", Price: 6.5, Category: "Desserts"})
	require.NoError(t, err)

	assert.Len(t, s.Available(), 1)
	assert.Equal(t, []string{"Beverages", "Desserts"}, s.Categories())
}
