// Package patch wires the GitHub webhook setup into a Strapi entry point.
//
// The patcher works on text anchors rather than a parsed syntax tree. It
// recognises the bootstrap hook in the shapes the Strapi project generator
// emits and nothing else: a file that does not match is reported with a
// PatchError instead of being patched on a best-effort basis.
package patch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/donaldgifford/strapi-github/internal/errs"
)

// Text inserted into the entry point.
const (
	ImportLine     = `import { setUpGithubWebhook } from "./util/set-up-github-webhook";`
	CoreImportLine = `import type { Core } from "@strapi/strapi";`
	Signature      = `async bootstrap({ strapi }: { strapi: Core.Strapi }) {`
	SetupCall      = `await setUpGithubWebhook(strapi);`

	bodyIndent = "  "

	bom = "\ufeff"
)

var (
	// bootstrapPattern matches the generated hook declaration: the
	// commented-out placeholder parameter, an active parameter, or an empty
	// list, optionally async and optionally with a return type.
	bootstrapPattern = regexp.MustCompile(`(?m)^([ \t]*)(?:async[ \t]+)?bootstrap[ \t]*\([^()]*\)[ \t]*(?::[^{\n]*)?\{`)

	importStart = regexp.MustCompile(`^import(?:[ \t]|\{|\*|'|")`)
	sideEffect  = regexp.MustCompile(`^import[ \t]*['"]`)
	fromClause  = regexp.MustCompile(`\bfrom[ \t]*['"]`)
	coreImport  = regexp.MustCompile(`(?m)^import[ \t]+(?:type[ \t]+)?\{[^}]*\bCore\b[^}]*\}[ \t]*from[ \t]*['"]@strapi/strapi['"]`)

	// webhookImport and setupStatement only match live code at the start of
	// a line, so commented-out text does not count.
	webhookImport  = regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(ImportLine))
	setupStatement = regexp.MustCompile(`(?m)^[ \t]*(?:await[ \t]+)?setUpGithubWebhook[ \t]*\(`)
	blockComment   = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// Pattern describes the bootstrap declaration the patcher looks for. It is
// quoted in PatchError messages.
var Pattern = bootstrapPattern.String()

// Strategy decides whether and how an entry point is patched. It keeps the
// pattern rules apart from the file handling in PatchFile.
type Strategy interface {
	Decide(src string) Decision
	Apply(src string) (string, error)
}

// TextAnchor is the default Strategy. The first bootstrap declaration in the
// file is authoritative.
type TextAnchor struct{}

// Decide classifies src.
func (TextAnchor) Decide(src string) Decision {
	src = strings.TrimPrefix(src, bom)

	if webhookImport.MatchString(blockComment.ReplaceAllString(src, "")) {
		return AlreadyPatched
	}

	loc := bootstrapPattern.FindStringSubmatchIndex(src)
	if loc == nil {
		return UnrecognizedShape
	}

	if callsSetup(hookBody(src, loc[1]-1)) {
		return NeedsImportInsertion
	}

	return NeedsBootstrapRewrite
}

// Apply returns the patched text. An AlreadyPatched file is returned as is.
// A leading byte order mark is kept in front of the output.
func (a TextAnchor) Apply(src string) (string, error) {
	decision := a.Decide(src)

	switch decision {
	case AlreadyPatched:
		return src, nil
	case UnrecognizedShape:
		return "", &errs.PatchError{Pattern: Pattern}
	}

	prefix := ""
	if strings.HasPrefix(src, bom) {
		prefix = bom
		src = src[len(bom):]
	}

	if decision == NeedsBootstrapRewrite {
		src = rewriteHook(src, bootstrapPattern.FindStringSubmatchIndex(src))
	}

	imports := []string{ImportLine}
	if !coreImport.MatchString(blockComment.ReplaceAllString(src, "")) {
		imports = []string{CoreImportLine, ImportLine}
	}

	return prefix + insertImports(src, imports), nil
}

// callsSetup reports whether body has a setup call statement outside
// comments.
func callsSetup(body string) bool {
	body = blockComment.ReplaceAllString(body, "")

	for _, line := range strings.Split(body, "\n") {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}

		if setupStatement.MatchString(line) {
			return true
		}
	}

	return false
}

// PatchFile applies s to the file at path. The new content is written once,
// through a temporary file renamed over the original, so a failure at any
// point leaves the file untouched.
func PatchFile(path string, s Strategy) (Decision, error) {
	if s == nil {
		s = TextAnchor{}
	}

	info, err := os.Stat(path)
	if err != nil {
		return UnrecognizedShape, &errs.IOError{Op: "stat", Path: path, Err: err}
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return UnrecognizedShape, &errs.IOError{Op: "read", Path: path, Err: err}
	}

	src := string(data)

	decision := s.Decide(src)
	if decision == AlreadyPatched {
		return decision, nil
	}

	out, err := s.Apply(src)
	if err != nil {
		var patchErr *errs.PatchError
		if errors.As(err, &patchErr) && patchErr.Path == "" {
			patchErr.Path = path
		}

		return decision, err
	}

	if out == src {
		return decision, nil
	}

	if err := writeAtomic(path, []byte(out), info.Mode().Perm()); err != nil {
		return decision, err
	}

	return decision, nil
}

// Inspect reads path and reports the decision without writing.
func Inspect(path string, s Strategy) (Decision, error) {
	if s == nil {
		s = TextAnchor{}
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return UnrecognizedShape, &errs.IOError{Op: "read", Path: path, Err: err}
	}

	return s.Decide(string(data)), nil
}

// rewriteHook replaces the matched declaration with the async signature and
// makes the setup call the first statement of the body.
func rewriteHook(src string, loc []int) string {
	start, end := loc[0], loc[1]
	indent := src[loc[2]:loc[3]]
	inner := indent + bodyIndent
	nl := newline(src)

	rest := src[end:]
	lineRest, after, hasNL := strings.Cut(rest, "\n")
	lineRest = strings.TrimSuffix(lineRest, "\r")

	var b strings.Builder

	b.WriteString(src[:start])
	b.WriteString(indent + Signature + nl)
	b.WriteString(inner + SetupCall)

	trimmed := strings.TrimLeft(lineRest, " \t")

	switch {
	case strings.TrimSpace(trimmed) == "":
		// Body already starts on the next line.
	case strings.HasPrefix(trimmed, "}"):
		// Inline empty body: close it on its own line.
		b.WriteString(nl + indent + trimmed)
	default:
		// Inline statements move below the call.
		b.WriteString(nl + inner + trimmed)
	}

	if hasNL {
		b.WriteString(nl + after)
	}

	return b.String()
}

// insertImports adds lines after the last top-level import statement, or at
// the top of the file when it has none. Lines inside block comments are not
// import statements.
func insertImports(src string, lines []string) string {
	nl := newline(src)
	all := strings.SplitAfter(src, "\n")

	insertAt := 0
	inComment := false

	for i := 0; i < len(all); i++ {
		if inComment || strings.HasPrefix(strings.TrimSpace(all[i]), "/*") {
			inComment = !closesComment(all[i], inComment)

			continue
		}

		if !importStart.MatchString(all[i]) {
			continue
		}

		end := statementEnd(all, i)
		insertAt = end + 1
		i = end
	}

	var b strings.Builder

	for _, l := range all[:insertAt] {
		b.WriteString(l)
	}

	if insertAt > 0 && !strings.HasSuffix(all[insertAt-1], "\n") {
		b.WriteString(nl)
	}

	for _, l := range lines {
		b.WriteString(l + nl)
	}

	for _, l := range all[insertAt:] {
		b.WriteString(l)
	}

	return b.String()
}

// closesComment reports whether a block comment open at the start of line
// (or opened on it) is closed by the end of line.
func closesComment(line string, open bool) bool {
	if !open {
		_, line, _ = strings.Cut(line, "/*")
	}

	return strings.Contains(line, "*/")
}

// statementEnd returns the index of the line that closes the import statement
// starting at lines[i]. Multi-line named imports end at their from clause.
func statementEnd(lines []string, i int) int {
	for j := i; j < len(lines); j++ {
		line := strings.TrimRight(lines[j], " \t\r\n")

		if j == i && sideEffect.MatchString(line) {
			return j
		}

		if fromClause.MatchString(line) || strings.HasSuffix(line, ";") {
			return j
		}
	}

	return i
}

// hookBody returns the text between the brace at open and its matching
// closing brace. An unbalanced body runs to the end of src.
func hookBody(src string, open int) string {
	depth := 0

	for i := open; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return src[open+1 : i]
			}
		}
	}

	return src[open+1:]
}

func newline(src string) string {
	if strings.Contains(src, "\r\n") {
		return "\r\n"
	}

	return "\n"
}

func writeAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &errs.IOError{Op: "create temp file", Path: dir, Err: err}
	}

	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()

		return &errs.IOError{Op: "write", Path: tmpName, Err: err}
	}

	if err := tmp.Chmod(perm); err != nil {
		cleanup()

		return &errs.IOError{Op: "chmod", Path: tmpName, Err: err}
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return &errs.IOError{Op: "close", Path: tmpName, Err: err}
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)

		return &errs.IOError{Op: "replace", Path: path, Err: fmt.Errorf("renaming %s: %w", tmpName, err)}
	}

	return nil
}
