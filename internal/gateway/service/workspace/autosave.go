package workspace

import (
	"context"
	"time"

	"livepreview/internal/vfs"
)

const flushTimeout = 5 * time.Second

// StartAutosave saves the workspace once changes have been quiet for delay.
// The returned func stops autosaving and flushes any unsaved change.
func (s *Service) StartAutosave(ctx context.Context, delay time.Duration) func() {
	if s.repo == nil {
		return func() {}
	}
	if delay <= 0 {
		delay = time.Second
	}

	dirty := make(chan struct{}, 1)
	unsubscribe := s.store.Subscribe(func(vfs.ChangeEvent) {
		select {
		case dirty <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		timer := time.NewTimer(delay)
		timer.Stop()
		pending := false
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				select {
				case <-dirty:
					pending = true
				default:
				}
				if pending {
					flushCtx, cancelFlush := context.WithTimeout(context.Background(), flushTimeout)
					s.saveLogged(flushCtx)
					cancelFlush()
				}
				return
			case <-dirty:
				pending = true
				timer.Reset(delay)
			case <-timer.C:
				pending = false
				s.saveLogged(ctx)
			}
		}
	}()

	return func() {
		unsubscribe()
		cancel()
		<-done
	}
}

func (s *Service) saveLogged(ctx context.Context) {
	if err := s.Save(ctx); err != nil {
		s.log.WithError(err).Warn("autosave failed")
		return
	}
	s.log.WithField("files", s.store.Len()).Debug("workspace saved")
}
