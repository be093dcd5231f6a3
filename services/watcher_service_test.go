package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github/itish2003/pdfchat/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestWatcher(t *testing.T, dir string, handle EngineHandle) (*DirectoryWatcher, *Session, *SessionOrchestrator) {
	t.Helper()
	d, err := NewDocumentDirectory(dir)
	require.NoError(t, err)
	o := newTestOrchestrator(t, &fakeReader{}, readyEngine(handle))
	s := NewSession()
	return NewDirectoryWatcher(d, o, s, openAIParams(), zap.NewNop()), s, o
}

func TestDirectoryWatcher_Sync(t *testing.T) {
	dir := t.TempDir()
	handle := &mockHandle{}
	handle.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(models.Answer{Response: "ok"}, nil)
	w, s, o := newTestWatcher(t, dir, handle)

	reloaded, err := w.Sync(context.Background())
	require.NoError(t, err)
	assert.False(t, reloaded, "empty directory loads nothing")
	assert.False(t, s.IsReady())

	writeFile(t, dir, "a.pdf", pages("alpha"))
	reloaded, err = w.Sync(context.Background())
	require.NoError(t, err)
	assert.True(t, reloaded)
	assert.True(t, s.IsReady())

	_, err = o.Ask(context.Background(), s, "what?")
	require.NoError(t, err)
	require.Len(t, s.History(), 2)

	reloaded, err = w.Sync(context.Background())
	require.NoError(t, err)
	assert.False(t, reloaded, "unchanged directory is not reloaded")
	assert.Len(t, s.History(), 2)

	writeFile(t, dir, "b.pdf", pages("bravo"))
	reloaded, err = w.Sync(context.Background())
	require.NoError(t, err)
	assert.True(t, reloaded)
	assert.Empty(t, s.History())
	assert.Equal(t, 2, s.Status().Documents)
}

func TestDirectoryWatcher_WatchPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pdf", pages("alpha"))
	w, s, _ := newTestWatcher(t, dir, &mockHandle{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	require.Eventually(t, func() bool { return s.Status().Documents == 1 }, 5*time.Second, 20*time.Millisecond)

	writeFile(t, dir, "b.pdf", pages("bravo"))
	require.Eventually(t, func() bool { return s.Status().Documents == 2 }, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestDirectoryWatcher_SyncClearsSessionWhenPDFsRemoved(t *testing.T) {
	dir := t.TempDir()
	handle := &mockHandle{}
	handle.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(models.Answer{Response: "ok"}, nil)
	w, s, o := newTestWatcher(t, dir, handle)

	writeFile(t, dir, "a.pdf", pages("alpha"))
	_, err := w.Sync(context.Background())
	require.NoError(t, err)
	_, err = o.Ask(context.Background(), s, "what?")
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "a.pdf")))
	changed, err := w.Sync(context.Background())

	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, s.IsReady())
	assert.Equal(t, StateEmpty, s.State())
	assert.Empty(t, s.History())
	assert.Equal(t, 0, s.Status().Documents)

	_, err = o.Ask(context.Background(), s, "still there?")
	assert.ErrorIs(t, err, ErrNotReady)

	changed, err = w.Sync(context.Background())
	require.NoError(t, err)
	assert.False(t, changed, "empty directory is only cleared once")
}

func TestDirectoryWatcher_RetriesReloadAfterBusySession(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pdf", pages("alpha"))
	handle := &blockingHandle{started: make(chan struct{}), release: make(chan struct{})}
	w, s, o := newTestWatcher(t, dir, handle)
	w.RetryInterval = 20 * time.Millisecond
	core, logs := observer.New(zap.WarnLevel)
	w.log = zap.New(core)

	_, err := w.Sync(context.Background())
	require.NoError(t, err)

	asked := make(chan struct{})
	go func() {
		_, _ = o.Ask(context.Background(), s, "slow question")
		close(asked)
	}()
	<-handle.started

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	writeFile(t, dir, "b.pdf", pages("bravo"))
	go func() { done <- w.Watch(ctx) }()

	// b.pdf predates the watch, so only the retry can pick it up.
	require.Eventually(t, func() bool {
		return logs.FilterMessage("WATCHER: session busy, retrying").Len() > 0
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, s.Status().Documents)
	close(handle.release)
	<-asked

	require.Eventually(t, func() bool { return s.Status().Documents == 2 }, 5*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
