// Package poll paces the pull-based loops of the arbiter and the player
// agents: fast while something is changing, backing off while idle.
package poll

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	DefaultInterval    = 100 * time.Millisecond
	DefaultMaxInterval = time.Second
)

type Settings struct {
	Interval    time.Duration
	MaxInterval time.Duration
}

func DefaultSettings() Settings {
	return Settings{Interval: DefaultInterval, MaxInterval: DefaultMaxInterval}
}

// Normalized fills in defaults for unset intervals.
func (s Settings) Normalized() Settings {
	if s.Interval <= 0 {
		s.Interval = DefaultInterval
	}
	if s.MaxInterval < s.Interval {
		s.MaxInterval = s.Interval
	}
	return s
}

// Poller sleeps between polls with exponential backoff. Call Reset when a
// poll made progress.
type Poller struct {
	b *backoff.ExponentialBackOff
}

func New(s Settings) *Poller {
	s = s.Normalized()
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.Interval
	b.MaxInterval = s.MaxInterval
	b.Multiplier = 1.5
	b.RandomizationFactor = 0.2
	b.Reset()
	return &Poller{b: b}
}

func (p *Poller) Reset() {
	p.b.Reset()
}

// Wait sleeps for the next backoff interval or until ctx is done.
func (p *Poller) Wait(ctx context.Context) error {
	return Sleep(ctx, p.b.NextBackOff())
}

// Until polls cond until it reports true, fails, or ctx ends.
func Until(ctx context.Context, s Settings, cond func() (bool, error)) error {
	p := New(s)
	for {
		done, err := cond()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := p.Wait(ctx); err != nil {
			return err
		}
	}
}

// Sleep is time.Sleep that gives up when ctx ends.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
