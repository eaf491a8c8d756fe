package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// HuhChooser prompts with an interactive checkbox list on the terminal.
type HuhChooser struct {
	// Preselected events start checked.
	Preselected []string
	// Accessible switches to the plain-text prompt mode for screen readers
	// and dumb terminals.
	Accessible bool
}

// Choose runs a multi-select form. Checked options are returned in candidate
// order.
func (h *HuhChooser) Choose(ctx context.Context, prompt string, candidates []string) ([]string, error) {
	opts := make([]huh.Option[string], len(candidates))
	for i, c := range candidates {
		opts[i] = huh.NewOption(c, c)
	}

	var selected []string
	if len(h.Preselected) > 0 {
		selected = append(selected, h.Preselected...)
	}

	field := huh.NewMultiSelect[string]().
		Title(prompt).
		Description("space to toggle, enter to confirm").
		Options(opts...).
		Value(&selected)

	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(chooserTheme()).
		WithAccessible(h.Accessible)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrCancelled
		}

		return nil, fmt.Errorf("event prompt: %w", err)
	}

	return orderLike(candidates, selected), nil
}

// orderLike returns the members of selected in the order they appear in
// candidates. Anything not in candidates keeps its relative order at the end.
func orderLike(candidates, selected []string) []string {
	picked := make(map[string]bool, len(selected))
	for _, s := range selected {
		picked[s] = true
	}

	out := make([]string, 0, len(selected))

	for _, c := range candidates {
		if picked[c] {
			out = append(out, c)
			delete(picked, c)
		}
	}

	for _, s := range selected {
		if picked[s] {
			out = append(out, s)
			delete(picked, s)
		}
	}

	return out
}

func chooserTheme() *huh.Theme {
	t := huh.ThemeBase()

	accent := lipgloss.AdaptiveColor{Light: "#5A32FA", Dark: "#8C6BFF"}

	t.Focused.Title = t.Focused.Title.Foreground(accent).Bold(true)
	t.Focused.SelectedPrefix = t.Focused.SelectedPrefix.Foreground(accent)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(accent)
	t.Focused.MultiSelectSelector = t.Focused.MultiSelectSelector.Foreground(accent)

	return t
}
