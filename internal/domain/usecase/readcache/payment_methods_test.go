package readcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safiripay/payment-core/internal/domain/entity"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/cache"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/logger"
)

type fakeMethodRepo struct {
	methods      map[string][]entity.SavedPaymentMethod
	listCalls    int
	defaultCalls int
}

func newFakeMethodRepo() *fakeMethodRepo {
	return &fakeMethodRepo{methods: make(map[string][]entity.SavedPaymentMethod)}
}

func (r *fakeMethodRepo) GetByUser(ctx context.Context, userID string) ([]entity.SavedPaymentMethod, error) {
	r.listCalls++
	return r.methods[userID], nil
}

func (r *fakeMethodRepo) GetDefault(ctx context.Context, userID string) (*entity.SavedPaymentMethod, error) {
	r.defaultCalls++
	for _, m := range r.methods[userID] {
		if m.IsDefault {
			clone := m
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeMethodRepo) Save(ctx context.Context, method *entity.SavedPaymentMethod) error {
	list := r.methods[method.UserID]
	if method.IsDefault {
		for i := range list {
			list[i].IsDefault = false
		}
	}
	r.methods[method.UserID] = append(list, *method)
	return nil
}

func (r *fakeMethodRepo) Delete(ctx context.Context, userID, methodID string) error {
	list := r.methods[userID]
	kept := list[:0]
	for _, m := range list {
		if m.ID != methodID {
			kept = append(kept, m)
		}
	}
	r.methods[userID] = kept
	return nil
}

func newTestMethodCache() (*PaymentMethodCache, *fakeMethodRepo) {
	tp := newFakeTimeProvider()
	repo := newFakeMethodRepo()
	store := cache.NewMemoryStore(tp)
	return NewPaymentMethodCache(store, repo, logger.NewNoopLogger(), 15*time.Minute), repo
}

func TestGetMethodsIsCached(t *testing.T) {
	methodCache, repo := newTestMethodCache()
	ctx := context.Background()

	repo.methods["user-1"] = []entity.SavedPaymentMethod{
		{ID: "pm-1", UserID: "user-1", Provider: entity.ProviderPaystack, Method: entity.MethodCard, IsDefault: true},
	}

	methods, err := methodCache.GetMethods(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "pm-1", methods[0].ID)

	_, err = methodCache.GetMethods(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)
}

func TestGetMethodsCachesEmptyList(t *testing.T) {
	methodCache, repo := newTestMethodCache()
	ctx := context.Background()

	methods, err := methodCache.GetMethods(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, methods)

	// A user with no methods is a valid cached answer
	_, err = methodCache.GetMethods(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)
}

func TestGetDefaultMethodAbsenceIsNotCached(t *testing.T) {
	methodCache, repo := newTestMethodCache()
	ctx := context.Background()

	method, err := methodCache.GetDefaultMethod(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, method)

	// Once a default appears it is served without a new cache entry masking it
	repo.methods["user-1"] = []entity.SavedPaymentMethod{
		{ID: "pm-1", UserID: "user-1", IsDefault: true},
	}
	method, err = methodCache.GetDefaultMethod(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, method)
	assert.Equal(t, "pm-1", method.ID)
	assert.Equal(t, 2, repo.defaultCalls)
}

func TestSaveMethodInvalidatesBothEntries(t *testing.T) {
	methodCache, repo := newTestMethodCache()
	ctx := context.Background()

	repo.methods["user-1"] = []entity.SavedPaymentMethod{
		{ID: "pm-1", UserID: "user-1", IsDefault: true},
	}

	// Warm both entries
	_, err := methodCache.GetMethods(ctx, "user-1")
	require.NoError(t, err)
	_, err = methodCache.GetDefaultMethod(ctx, "user-1")
	require.NoError(t, err)

	err = methodCache.SaveMethod(ctx, &entity.SavedPaymentMethod{ID: "pm-2", UserID: "user-1", IsDefault: true})
	require.NoError(t, err)

	methods, err := methodCache.GetMethods(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, methods, 2)

	method, err := methodCache.GetDefaultMethod(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, method)
	assert.Equal(t, "pm-2", method.ID)
}

func TestDeleteMethodInvalidatesBothEntries(t *testing.T) {
	methodCache, repo := newTestMethodCache()
	ctx := context.Background()

	repo.methods["user-1"] = []entity.SavedPaymentMethod{
		{ID: "pm-1", UserID: "user-1", IsDefault: true},
	}

	_, err := methodCache.GetMethods(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, methodCache.DeleteMethod(ctx, "user-1", "pm-1"))

	methods, err := methodCache.GetMethods(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, methods)
}
