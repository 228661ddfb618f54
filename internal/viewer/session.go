package viewer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"
)

// FrameSink receives what a Session presents.
type FrameSink interface {
	Frame(img *image.NRGBA) error
	Status(st Status) error
}

// Session owns a Viewer on a single goroutine: host events, background load
// results and animation ticks are applied in one select loop.
type Session struct {
	v      *Viewer
	sink   FrameSink
	events chan Event
	log    zerolog.Logger
}

// NewSession wraps v. The session closes v when Run returns.
func NewSession(v *Viewer, sink FrameSink, log zerolog.Logger) *Session {
	return &Session{
		v:      v,
		sink:   sink,
		events: make(chan Event, 64),
		log:    log,
	}
}

// Send queues an event for the owner goroutine.
func (s *Session) Send(ctx context.Context, ev Event) error {
	select {
	case s.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run mounts the viewer and serves it until ctx ends or the sink fails.
func (s *Session) Run(ctx context.Context) error {
	v := s.v
	defer v.Close()
	v.Mount(ctx)

	var (
		ticker   *time.Ticker
		tick     <-chan time.Time
		interval time.Duration
		last     Status
	)
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tick, interval = nil, nil, 0
		}
	}
	defer stopTicker()

	present := func() error {
		if err := s.sink.Frame(v.Render()); err != nil {
			return fmt.Errorf("viewer: present frame: %w", err)
		}
		if st := v.Status(); st != last {
			last = st
			if err := s.sink.Status(st); err != nil {
				return fmt.Errorf("viewer: present status: %w", err)
			}
		}
		return nil
	}
	if err := present(); err != nil {
		return err
	}

	for {
		// the tick timer only runs while something animates
		if v.Animating() {
			if d := v.TickInterval(); d != interval {
				stopTicker()
				ticker = time.NewTicker(d)
				tick, interval = ticker.C, d
			}
		} else {
			stopTicker()
		}

		changed := false
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.events:
			changed = v.Handle(ctx, ev)
			// apply queued input in order before presenting once
			for drained := false; !drained; {
				select {
				case ev := <-s.events:
					changed = v.Handle(ctx, ev) || changed
				default:
					drained = true
				}
			}
		case u := <-v.Updates():
			changed = v.Apply(u)
		case <-tick:
			changed = v.Tick()
		}
		if changed {
			if err := present(); err != nil {
				s.log.Debug().Err(err).Msg("session ended")
				return err
			}
		}
	}
}

// Settle applies background results to v until it leaves the loading state.
func Settle(ctx context.Context, v *Viewer) error {
	v.Mount(ctx)
	for v.Status().State == StateLoading {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u := <-v.Updates():
			v.Apply(u)
		}
	}
	return nil
}
