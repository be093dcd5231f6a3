package services

import (
	"context"
	"errors"
	"time"

	"github/itish2003/pdfchat/models"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchedSessionID is the store key of the session fed by the watcher.
const WatchedSessionID = "watched"

const defaultRetryInterval = 2 * time.Second

// DirectoryWatcher keeps one session loaded with the PDFs of a directory and
// reloads it whenever they change. A reload clears that session's history.
type DirectoryWatcher struct {
	dir          *DocumentDirectory
	orchestrator *SessionOrchestrator
	session      *Session
	params       models.BackendParams
	log          *zap.Logger

	fingerprint string

	// RetryInterval is how often a sync that found the session busy is
	// retried.
	RetryInterval time.Duration
}

func NewDirectoryWatcher(dir *DocumentDirectory, orchestrator *SessionOrchestrator, session *Session, params models.BackendParams, log *zap.Logger) *DirectoryWatcher {
	return &DirectoryWatcher{
		dir:           dir,
		orchestrator:  orchestrator,
		session:       session,
		params:        params,
		log:           log,
		RetryInterval: defaultRetryInterval,
	}
}

// Sync reloads the session if the directory contents changed since the last
// successful load, or empties it once the directory holds no PDFs. It
// reports whether the session changed.
func (w *DirectoryWatcher) Sync(ctx context.Context) (bool, error) {
	fingerprint, err := w.dir.Fingerprint()
	if err != nil {
		return false, err
	}
	if fingerprint == w.fingerprint {
		return false, nil
	}

	names, err := w.dir.ListPDFs()
	if err != nil {
		return false, err
	}
	if len(names) == 0 {
		cleared, err := w.session.reset()
		if err != nil {
			return false, err
		}
		w.fingerprint = fingerprint
		w.log.Info("WATCHER: no PDFs in directory", zap.String("dir", w.dir.Dir), zap.Bool("cleared", cleared))
		return cleared, nil
	}
	docs, err := w.dir.ReadDocuments(names)
	if err != nil {
		return false, err
	}

	if _, err := w.orchestrator.LoadDocuments(ctx, w.session, docs, w.params); err != nil {
		return false, err
	}
	w.fingerprint = fingerprint
	w.log.Info("WATCHER: session reloaded", zap.String("dir", w.dir.Dir), zap.Int("documents", len(docs)))
	return true, nil
}

// Watch syncs once, then on every PDF event until ctx is cancelled.
func (w *DirectoryWatcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir.Dir); err != nil {
		return err
	}
	w.log.Info("WATCHER: watching directory", zap.String("dir", w.dir.Dir))
	pending := w.syncAndLog(ctx)

	interval := w.RetryInterval
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	retry := time.NewTicker(interval)
	defer retry.Stop()

	for {
		select {
		case <-retry.C:
			if pending {
				pending = w.syncAndLog(ctx)
			}
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isPDF(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.log.Debug("WATCHER: event", zap.String("event", event.String()))
				pending = w.syncAndLog(ctx)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("WATCHER: watcher error", zap.Error(err))
		case <-ctx.Done():
			w.log.Info("WATCHER: context cancelled, shutting down watcher")
			return nil
		}
	}
}

// syncAndLog reports whether the sync has to be retried because the session
// was busy.
func (w *DirectoryWatcher) syncAndLog(ctx context.Context) bool {
	if _, err := w.Sync(ctx); err != nil {
		if errors.Is(err, ErrBusy) {
			w.log.Warn("WATCHER: session busy, retrying", zap.Duration("interval", w.RetryInterval))
			return true
		}
		w.log.Error("WATCHER: failed to reload documents", zap.Error(err))
	}
	return false
}
