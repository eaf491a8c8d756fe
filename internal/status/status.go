// Package status reports how far a Strapi project is from a completed setup.
package status

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/donaldgifford/strapi-github/internal/envfile"
	"github.com/donaldgifford/strapi-github/internal/manifest"
	"github.com/donaldgifford/strapi-github/internal/patch"
)

// Opts configures the status report.
type Opts struct {
	// ProjectDir is the Strapi project root (defaults to ".").
	ProjectDir string
	// OutputFormat is "text" or "json".
	OutputFormat string
	// Writer is the output destination.
	Writer io.Writer
	// Strategy classifies the entry point. Defaults to patch.TextAnchor.
	Strategy patch.Strategy
}

// FileState describes a generated file on disk.
type FileState string

// File states.
const (
	StateOK      FileState = "ok"
	StateMissing FileState = "missing"
	StateEmpty   FileState = "empty"
)

// FileStatus is the state of one generated file.
type FileStatus struct {
	Path  string    `json:"path"`
	State FileState `json:"state"`
}

// Result holds the status report.
type Result struct {
	Files         []FileStatus   `json:"files"`
	EntryPoint    patch.Decision `json:"entry_point"`
	EntryPointErr string         `json:"entry_point_error,omitempty"`
	MissingEnv    []string       `json:"missing_env"`
	Complete      bool           `json:"complete"`
}

// Run builds the report and renders it to opts.Writer.
func Run(opts *Opts) (*Result, error) {
	projectDir := opts.ProjectDir
	if projectDir == "" {
		projectDir = "."
	}

	result := &Result{Complete: true}

	dests := append(manifest.Default().Destinations(), manifest.WebhookEntry.Dest)
	for _, d := range dests {
		st := checkFile(filepath.Join(projectDir, filepath.FromSlash(d)), d)
		if st.State != StateOK {
			result.Complete = false
		}

		result.Files = append(result.Files, st)
	}

	decision, err := patch.Inspect(filepath.Join(projectDir, filepath.FromSlash(manifest.EntryPoint)), opts.Strategy)
	result.EntryPoint = decision

	if err != nil {
		result.EntryPointErr = err.Error()
	}

	if decision != patch.AlreadyPatched {
		result.Complete = false
	}

	env, err := os.ReadFile(filepath.Join(projectDir, manifest.EnvFile))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", manifest.EnvFile, err)
	}

	defined, err := envfile.Defined(env)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", manifest.EnvFile, err)
	}
	for _, k := range envfile.Keys() {
		if !defined[k] {
			result.MissingEnv = append(result.MissingEnv, k)
			result.Complete = false
		}
	}

	if opts.Writer == nil {
		return result, nil
	}

	return result, renderResult(opts.Writer, opts.OutputFormat, result)
}

func checkFile(path, relPath string) FileStatus {
	info, err := os.Stat(path)
	if err != nil {
		return FileStatus{Path: relPath, State: StateMissing}
	}

	if info.Size() == 0 {
		return FileStatus{Path: relPath, State: StateEmpty}
	}

	return FileStatus{Path: relPath, State: StateOK}
}

func renderResult(w io.Writer, format string, result *Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(result)
	default:
		return renderText(w, result)
	}
}

func renderText(w io.Writer, result *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, "FILE\tSTATUS"); err != nil {
		return err
	}

	for _, f := range result.Files {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", f.Path, stateLabel(f.State)); err != nil {
			return err
		}
	}

	entry := result.EntryPoint.String()
	if result.EntryPointErr != "" {
		entry = "MISSING"
	}

	if _, err := fmt.Fprintf(tw, "%s\t%s\n", manifest.EntryPoint, entry); err != nil {
		return err
	}

	env := "ok"
	if len(result.MissingEnv) > 0 {
		env = fmt.Sprintf("%d missing", len(result.MissingEnv))
	}

	if _, err := fmt.Fprintf(tw, "%s\t%s\n", manifest.EnvFile, env); err != nil {
		return err
	}

	return tw.Flush()
}

func stateLabel(s FileState) string {
	switch s {
	case StateOK:
		return "ok"
	case StateMissing:
		return "MISSING"
	case StateEmpty:
		return "EMPTY"
	default:
		return string(s)
	}
}
