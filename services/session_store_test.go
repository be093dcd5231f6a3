package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()

	id, s := store.Create()
	require.NotEmpty(t, id)
	got, ok := store.Get(id)
	require.True(t, ok)
	assert.Same(t, s, got)

	other, _ := store.Create()
	assert.NotEqual(t, id, other)
	assert.Equal(t, 2, store.Len())

	w := store.GetOrCreate(WatchedSessionID)
	assert.Same(t, w, store.GetOrCreate(WatchedSessionID))

	assert.True(t, store.Delete(id))
	assert.False(t, store.Delete(id))
	_, ok = store.Get(id)
	assert.False(t, ok)
}
