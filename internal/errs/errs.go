// Package errs defines the error types surfaced by the setup workflow.
//
// Every failure is fatal to the operation that produced it. Callers inspect
// the concrete type with errors.As to decide how to report it.
package errs

import "fmt"

// IOError reports a missing, unreadable, or unwritable file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// TemplateError reports a template whose expected placeholder or marker text
// is absent or ambiguous. It usually means the templates and the tool have
// drifted apart.
type TemplateError struct {
	Path        string
	Placeholder string
	Count       int
}

func (e *TemplateError) Error() string {
	name := e.Path
	if name == "" {
		name = "template"
	}

	if e.Count == 0 {
		return fmt.Sprintf("%s: placeholder %q not found", name, e.Placeholder)
	}

	return fmt.Sprintf("%s: placeholder %q found %d times, expected exactly once", name, e.Placeholder, e.Count)
}

// PatchError reports an entry-point file that does not have the conventional
// shape the patcher expects. The file is never written when this is returned.
type PatchError struct {
	Path    string
	Pattern string
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("%s: no bootstrap hook matching %s (file left unchanged)", e.Path, e.Pattern)
}
