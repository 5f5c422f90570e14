package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Engrjalalkhan/easydoctor/internal/repository"
)

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_, err := store.Get(ctx, "lastLoginTime")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "lastLoginTime", "1757000000000"))
	val, err := store.Get(ctx, "lastLoginTime")
	require.NoError(t, err)
	assert.Equal(t, "1757000000000", val)

	require.NoError(t, store.Delete(ctx, "lastLoginTime"))
	_, err = store.Get(ctx, "lastLoginTime")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.Set(ctx, "doctorEmail", "old@example.com"))
	require.NoError(t, store.Set(ctx, "doctorEmail", "new@example.com"))

	val, err := store.Get(ctx, "doctorEmail")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", val)
}

func TestStore_NamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	root := NewStore()
	phone := root.WithNamespace("device-a")
	tablet := root.WithNamespace("device-b")

	require.NoError(t, phone.Set(ctx, "doctorEmail", "ayesha@example.com"))

	_, err := tablet.Get(ctx, "doctorEmail")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)

	val, err := phone.Get(ctx, "doctorEmail")
	require.NoError(t, err)
	assert.Equal(t, "ayesha@example.com", val)

	// Same namespace from the same root sees the same data.
	again, err := root.WithNamespace("device-a").Get(ctx, "doctorEmail")
	require.NoError(t, err)
	assert.Equal(t, "ayesha@example.com", again)
}
