package artifacts

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// UntilModified returns a context that is canceled when one of paths is
// written, created, removed or renamed. The cause is available through
// context.Cause.
//
// Artifacts are never reloaded in-process; callers use this to stop
// serving so a supervisor can restart with the new files.
//
// If error is not nil, both the context and the cancel function are nil.
func UntilModified(ctx context.Context, paths ...string) (context.Context, func(), error) {
	cctx, cancel := context.WithCancelCause(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		cancel(err)
		return nil, nil, err
	}

	go func() {
		defer w.Close()

		for {
			select {
			case <-cctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
					continue
				}
				cancel(fmt.Errorf("%s is updated (%s)", event.Name, event.Op.String()))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				cancel(fmt.Errorf("watching artifacts: %w", err))
			}
		}
	}()

	for _, p := range paths {
		if err = w.Add(p); err != nil {
			cancel(err)
			return nil, nil, err
		}
	}
	return cctx, func() { cancel(nil) }, nil
}
