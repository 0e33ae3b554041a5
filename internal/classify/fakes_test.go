package classify

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tsucho-dev/tsucho/internal/model"
)

// countingClassifier records every call and answers from a fixed table.
type countingClassifier struct {
	calls   atomic.Int64
	mu      sync.Mutex
	seen    map[string]int
	answers map[string]Verdict
}

func newCountingClassifier(answers map[string]Verdict) *countingClassifier {
	return &countingClassifier{seen: make(map[string]int), answers: answers}
}

func (c *countingClassifier) Classify(_ context.Context, text string) Verdict {
	c.calls.Add(1)
	c.mu.Lock()
	c.seen[text]++
	c.mu.Unlock()
	if v, ok := c.answers[text]; ok {
		return v
	}
	return Fixed(model.CategoryOther)
}

// fakeGenerator returns a canned answer or error.
type fakeGenerator struct {
	answer  string
	err     error
	pingErr error
	calls   atomic.Int64
	prompts []string
	mu      sync.Mutex
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls.Add(1)
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	return g.answer, g.err
}

func (g *fakeGenerator) Ping(context.Context) error { return g.pingErr }
