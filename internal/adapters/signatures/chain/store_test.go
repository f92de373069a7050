package chain

import (
	"context"
	"errors"
	"testing"

	portmocks "github.com/bnema/memefi-tapper/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newChain(t *testing.T) (*Store, *portmocks.MockSignatureStore, *portmocks.MockSignatureStore) {
	t.Helper()

	primary := portmocks.NewMockSignatureStore(t)
	fallback := portmocks.NewMockSignatureStore(t)
	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	return store, primary, fallback
}

func TestStoreGetUsesPrimaryWhenItSucceeds(t *testing.T) {
	t.Parallel()

	store, primary, _ := newChain(t)
	primary.EXPECT().Get(mock.Anything, "ada").Return("from-redis", true, nil).Once()

	value, found, err := store.Get(context.Background(), "ada")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "from-redis", value)
}

func TestStoreGetMissingEverywhere(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Get(mock.Anything, "ada").Return("", false, nil).Once()
	fallback.EXPECT().Get(mock.Anything, "ada").Return("", false, nil).Once()

	_, found, err := store.Get(context.Background(), "ada")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreGetCopiesFallbackHitIntoPrimary(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Get(mock.Anything, "ada").Return("", false, nil).Once()
	fallback.EXPECT().Get(mock.Anything, "ada").Return("from-file", true, nil).Once()
	primary.EXPECT().Put(mock.Anything, "ada", "from-file").Return(nil).Once()

	value, found, err := store.Get(context.Background(), "ada")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "from-file", value)
}

func TestStoreGetKeepsFallbackHitWhenCopyFails(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Get(mock.Anything, "ada").Return("", false, nil).Once()
	fallback.EXPECT().Get(mock.Anything, "ada").Return("from-file", true, nil).Once()
	primary.EXPECT().Put(mock.Anything, "ada", "from-file").Return(errors.New("redis read only")).Once()

	value, found, err := store.Get(context.Background(), "ada")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "from-file", value)
}

func TestStoreGetFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Get(mock.Anything, "ada").Return("", false, errors.New("redis unavailable")).Once()
	fallback.EXPECT().Get(mock.Anything, "ada").Return("from-file", true, nil).Once()

	value, found, err := store.Get(context.Background(), "ada")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "from-file", value)
}

func TestStoreGetReturnsCombinedErrorWhenBothBackendsFail(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Get(mock.Anything, "ada").Return("", false, errors.New("redis failed")).Once()
	fallback.EXPECT().Get(mock.Anything, "ada").Return("", false, errors.New("file failed")).Once()

	_, _, err := store.Get(context.Background(), "ada")
	require.Error(t, err)
	assert.ErrorContains(t, err, "primary backend")
	assert.ErrorContains(t, err, "fallback backend")
	assert.ErrorContains(t, err, "redis failed")
	assert.ErrorContains(t, err, "file failed")
}

func TestStorePutFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newChain(t)
	primary.EXPECT().Put(mock.Anything, "ada", "ua").Return(errors.New("redis failed")).Once()
	fallback.EXPECT().Put(mock.Anything, "ada", "ua").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), "ada", "ua"))
}

func TestStorePutDoesNotCallFallbackWhenPrimarySucceeds(t *testing.T) {
	t.Parallel()

	store, primary, _ := newChain(t)
	primary.EXPECT().Put(mock.Anything, "ada", "ua").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), "ada", "ua"))
}

func TestStoreSkipsFallbackOnCancellation(t *testing.T) {
	t.Parallel()

	store, primary, _ := newChain(t)
	primary.EXPECT().Put(mock.Anything, "ada", "ua").Return(context.Canceled).Once()
	primary.EXPECT().Get(mock.Anything, "ada").Return("", false, context.DeadlineExceeded).Once()

	require.ErrorIs(t, store.Put(context.Background(), "ada", "ua"), context.Canceled)
	_, _, err := store.Get(context.Background(), "ada")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewStoreRejectsNilBackends(t *testing.T) {
	t.Parallel()

	_, err := NewStore(nil, portmocks.NewMockSignatureStore(t))
	require.ErrorIs(t, err, errNilPrimaryStore)

	_, err = NewStore(portmocks.NewMockSignatureStore(t), nil)
	require.ErrorIs(t, err, errNilFallbackStore)
}
