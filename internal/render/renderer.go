// Package render bakes the event selection into the webhook template.
package render

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/donaldgifford/strapi-github/internal/errs"
	"github.com/donaldgifford/strapi-github/internal/manifest"
)

// Placeholder marks where the events array goes in the webhook template.
const Placeholder = "__WEBHOOK_EVENTS__"

// EventsLiteral formats events as a TypeScript array literal: each element
// double-quoted, comma separated, no whitespace. Downstream code and tests
// match this text exactly.
func EventsLiteral(events []string) string {
	quoted := make([]string, len(events))
	for i, e := range events {
		quoted[i] = strconv.Quote(e)
	}

	return "[" + strings.Join(quoted, ",") + "]"
}

// Render substitutes the single placeholder in text with the events literal.
func Render(text string, events []string) (string, error) {
	return renderNamed("", text, events)
}

// RenderFile reads the entry's template from fsys, renders it, and writes the
// result under targetRoot.
func RenderFile(fsys fs.FS, entry manifest.Entry, targetRoot string, events []string) error {
	data, err := fs.ReadFile(fsys, entry.Source)
	if err != nil {
		return &errs.IOError{Op: "read template", Path: entry.Source, Err: err}
	}

	out, err := renderNamed(entry.Source, string(data), events)
	if err != nil {
		return err
	}

	if err := manifest.ValidateDest(entry.Dest); err != nil {
		return fmt.Errorf("webhook template: %w", err)
	}

	return manifest.WriteFile(targetRoot, entry.Dest, []byte(out))
}

func renderNamed(name, text string, events []string) (string, error) {
	n := strings.Count(text, Placeholder)
	if n != 1 {
		return "", &errs.TemplateError{Path: name, Placeholder: Placeholder, Count: n}
	}

	return strings.Replace(text, Placeholder, EventsLiteral(events), 1), nil
}
