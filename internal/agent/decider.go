package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"
)

var defaultLines = []string{
	"I have a bad feeling about this.",
	"Who has been suspiciously quiet?",
	"I trust everyone who spoke early.",
	"Let's not rush this vote.",
	"Somebody here is lying.",
}

// ScriptedDecider speaks canned lines now and then and votes at random. It
// stands in for a language model in simulations and tests.
type ScriptedDecider struct {
	Lines []string
	// SpeakChance is the probability of speaking on a given poll.
	SpeakChance float64
	// MinGap is the least time between two messages.
	MinGap time.Duration
	// VoteFunc overrides the random vote when set.
	VoteFunc func(view View, candidates []string) string

	mu   sync.Mutex
	rand *rand.Rand
	last time.Time
}

func NewScriptedDecider(seed int64) *ScriptedDecider {
	return &ScriptedDecider{
		Lines:       defaultLines,
		SpeakChance: 0.3,
		MinGap:      200 * time.Millisecond,
		rand:        rand.New(rand.NewSource(seed)),
	}
}

func (d *ScriptedDecider) Speak(_ context.Context, view View) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Lines) == 0 || time.Since(d.last) < d.MinGap {
		return "", nil
	}
	if d.random().Float64() >= d.SpeakChance {
		return "", nil
	}
	d.last = time.Now()
	return d.Lines[d.random().Intn(len(d.Lines))], nil
}

func (d *ScriptedDecider) Vote(_ context.Context, view View, candidates []string) (string, error) {
	if d.VoteFunc != nil {
		return d.VoteFunc(view, candidates), nil
	}
	if len(candidates) == 0 {
		return "", nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return candidates[d.random().Intn(len(candidates))], nil
}

func (d *ScriptedDecider) random() *rand.Rand {
	if d.rand == nil {
		d.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return d.rand
}

// HumanDecider reads a person's chat lines and votes from a terminal. Lines
// typed while it is not voting time become chat messages.
type HumanDecider struct {
	out   io.Writer
	lines chan string
}

func NewHumanDecider(in io.Reader, out io.Writer) *HumanDecider {
	h := &HumanDecider{out: out, lines: make(chan string, 16)}
	go func() {
		defer close(h.lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			h.lines <- scanner.Text()
		}
	}()
	return h
}

func (h *HumanDecider) Speak(_ context.Context, _ View) (string, error) {
	select {
	case line := <-h.lines:
		return line, nil
	default:
		return "", nil
	}
}

func (h *HumanDecider) Vote(ctx context.Context, view View, candidates []string) (string, error) {
	fmt.Fprintf(h.out, "%s: time to vote. Candidates: %s\n> ", view.Phase, strings.Join(candidates, ", "))
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line := <-h.lines:
		// A closed input yields "", which falls back to a random vote.
		return line, nil
	}
}
