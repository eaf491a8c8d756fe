// Package manifest describes which template files are installed into a Strapi
// project and copies them into place.
package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/donaldgifford/strapi-github/internal/errs"
)

// Entry pairs a template source with its destination inside the project.
// Source is a slash-separated path relative to the templates root; Dest is a
// slash-separated path relative to the project root.
type Entry struct {
	Source string
	Dest   string
}

// Manifest is an ordered list of entries.
type Manifest []Entry

// EntryPoint is the project file patched in place.
const EntryPoint = "src/index.ts"

// EnvFile is the environment file written next to package.json.
const EnvFile = ".env"

// WebhookEntry is the rendered webhook registration module. It is not part of
// Default because its content depends on the event selection.
var WebhookEntry = Entry{
	Source: "util/set-up-github-webhook.ts",
	Dest:   "src/util/set-up-github-webhook.ts",
}

// Default returns the static files copied verbatim on every setup run.
func Default() Manifest {
	return Manifest{
		{Source: "config.ts", Dest: "src/config.ts"},
		{Source: "util/get-github-auth.ts", Dest: "src/util/get-github-auth.ts"},
		{Source: "api/github/routes/trigger-pipeline.ts", Dest: "src/api/github/routes/trigger-pipeline.ts"},
		{Source: "api/github/controllers/trigger-pipeline.ts", Dest: "src/api/github/controllers/trigger-pipeline.ts"},
	}
}

// Destinations lists the destination paths of m in order.
func (m Manifest) Destinations() []string {
	out := make([]string, 0, len(m))
	for _, e := range m {
		out = append(out, e.Dest)
	}

	return out
}

// Validate rejects entries whose destination is absolute or escapes the
// project root.
func (m Manifest) Validate() error {
	for i, e := range m {
		if strings.TrimSpace(e.Source) == "" {
			return fmt.Errorf("manifest[%d]: source is required", i)
		}

		if err := ValidateDest(e.Dest); err != nil {
			return fmt.Errorf("manifest[%d] (%s): %w", i, e.Source, err)
		}
	}

	return nil
}

// ValidateDest checks that dest is a relative path that stays inside the
// project root once cleaned.
func ValidateDest(dest string) error {
	if strings.TrimSpace(dest) == "" {
		return fmt.Errorf("destination is required")
	}

	if path.IsAbs(dest) || filepath.IsAbs(dest) {
		return fmt.Errorf("destination %q must be relative", dest)
	}

	cleaned := path.Clean(dest)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("destination %q escapes the project root", dest)
	}

	return nil
}

// Copy writes every entry of m from fsys into targetRoot, creating parent
// directories and overwriting existing files. It stops at the first failure
// and returns the destinations written so far.
func Copy(fsys fs.FS, m Manifest, targetRoot string) ([]string, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	written := make([]string, 0, len(m))

	for _, e := range m {
		content, err := fs.ReadFile(fsys, e.Source)
		if err != nil {
			return written, &errs.IOError{Op: "read template", Path: e.Source, Err: err}
		}

		if err := WriteFile(targetRoot, e.Dest, content); err != nil {
			return written, err
		}

		written = append(written, e.Dest)
	}

	return written, nil
}

// WriteFile writes content to dest under targetRoot, creating intermediate
// directories.
func WriteFile(targetRoot, dest string, content []byte) error {
	destPath := filepath.Join(targetRoot, filepath.FromSlash(dest))

	if err := os.MkdirAll(filepath.Dir(destPath), 0o750); err != nil {
		return &errs.IOError{Op: "create directory", Path: filepath.Dir(destPath), Err: err}
	}

	if err := os.WriteFile(destPath, content, 0o644); err != nil { //nolint:gosec // generated sources must be readable by the project toolchain
		return &errs.IOError{Op: "write", Path: destPath, Err: err}
	}

	return nil
}
