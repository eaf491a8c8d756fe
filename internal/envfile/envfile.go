// Package envfile adds the variables the generated integration reads to the
// project's .env file.
package envfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/donaldgifford/strapi-github/internal/errs"
)

var keys = []string{
	"GITHUB_APP_ID",
	"GITHUB_APP_INSTALLATION_ID",
	"GITHUB_APP_PRIVATE_KEY",
	"GITHUB_REPO_OWNER",
	"GITHUB_REPO_NAME",
	"GITHUB_WORKFLOW_ID",
	"GITHUB_WORKFLOW_REF",
	"GITHUB_WEBHOOK_SECRET",
	"GITHUB_WEBHOOK_URL",
}

// Keys returns the variables read by the generated config module.
func Keys() []string {
	return append([]string(nil), keys...)
}

// Defined returns the set of keys assigned in content, read with the dotenv
// grammar: comments, "export " prefixes, "KEY: value" pairs, and quoted
// values spanning several lines.
func Defined(content []byte) (map[string]bool, error) {
	vars, err := godotenv.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	defined := make(map[string]bool, len(vars))
	for k := range vars {
		defined[k] = true
	}

	return defined, nil
}

// Ensure creates path if needed and appends an assignment for every key not
// already defined, using values for the right-hand side when present. Existing
// lines are never changed. It returns the keys that were added.
func Ensure(path string, keys []string, values map[string]string) ([]string, error) {
	existing, err := os.ReadFile(filepath.Clean(path))
	if err != nil && !os.IsNotExist(err) {
		return nil, &errs.IOError{Op: "read", Path: path, Err: err}
	}

	defined, err := Defined(existing)
	if err != nil {
		// An unparsable file is left alone.
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var b strings.Builder

	var added []string

	for _, k := range keys {
		if defined[k] {
			continue
		}

		b.WriteString(k + "=" + quote(values[k]) + "\n")
		added = append(added, k)
		defined[k] = true
	}

	if len(added) == 0 && existing != nil {
		return nil, nil
	}

	var out bytes.Buffer

	out.Write(existing)

	if len(existing) > 0 && !bytes.HasSuffix(existing, []byte("\n")) {
		out.WriteByte('\n')
	}

	out.WriteString(b.String())

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, &errs.IOError{Op: "create directory", Path: filepath.Dir(path), Err: err}
	}

	if err := os.WriteFile(path, out.Bytes(), 0o600); err != nil {
		return nil, &errs.IOError{Op: "write", Path: path, Err: err}
	}

	return added, nil
}

// quote wraps values containing whitespace, quotes, or newlines in double
// quotes, escaping newlines the way dotenv loaders expect.
func quote(v string) string {
	if v == "" || !strings.ContainsAny(v, " \t\n\"'#") {
		return v
	}

	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	v = strings.ReplaceAll(v, "\n", `\n`)

	return `"` + v + `"`
}
