// Package events collects the Strapi webhook events the generated webhook
// subscribes to.
package events

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// ErrCancelled is returned when the user aborts the selection prompt.
var ErrCancelled = errors.New("event selection cancelled")

// Prompt is the question shown above the candidate list.
const Prompt = "Which Strapi events should trigger the GitHub pipeline?"

var candidates = []string{
	"entry.create",
	"entry.update",
	"entry.delete",
	"entry.publish",
	"entry.unpublish",
	"media.create",
	"media.update",
	"media.delete",
}

// Candidates returns the fixed list of events offered to the user.
func Candidates() []string {
	return slices.Clone(candidates)
}

// IsCandidate reports whether name is one of the offered events.
func IsCandidate(name string) bool {
	return slices.Contains(candidates, name)
}

// Chooser presents candidates and returns the subset the user checked, in the
// order the user saw them. Implementations may block indefinitely.
type Chooser interface {
	Choose(ctx context.Context, prompt string, candidates []string) ([]string, error)
}

// ChooserFunc adapts a function to the Chooser interface.
type ChooserFunc func(ctx context.Context, prompt string, candidates []string) ([]string, error)

// Choose calls f.
func (f ChooserFunc) Choose(ctx context.Context, prompt string, candidates []string) ([]string, error) {
	return f(ctx, prompt, candidates)
}

// Select asks c for the event selection. The result is returned exactly as the
// chooser produced it: no sorting, de-duplication, or validation.
func Select(ctx context.Context, c Chooser) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("no event chooser configured")
	}

	selected, err := c.Choose(ctx, Prompt, Candidates())
	if err != nil {
		return nil, fmt.Errorf("selecting events: %w", err)
	}

	if selected == nil {
		selected = []string{}
	}

	return selected, nil
}

// StaticChooser returns a fixed selection without prompting. It backs the
// --event flag, configured defaults, and tests.
type StaticChooser []string

// Choose returns a copy of s.
func (s StaticChooser) Choose(_ context.Context, _ string, _ []string) ([]string, error) {
	return slices.Clone([]string(s)), nil
}
