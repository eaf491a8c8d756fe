// Package getter wraps hashicorp/go-getter for fetching remote template sets.
package getter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	getter "github.com/hashicorp/go-getter/v2"
)

// Getter wraps go-getter to fetch sources from git, HTTP, and other protocols.
type Getter struct {
	client *getter.Client
	logger *slog.Logger
}

// New creates a Getter with default configuration.
func New(logger *slog.Logger) *Getter {
	if logger == nil {
		logger = slog.Default()
	}

	return &Getter{
		client: &getter.Client{
			DisableSymlinks: true,
		},
		logger: logger,
	}
}

// FetchOpts configures a fetch operation.
type FetchOpts struct {
	// Ref is appended as ?ref= for git sources.
	Ref string

	// Pwd is the working directory for relative path detection.
	Pwd string
}

// Fetch downloads a source (directory) to the destination path.
// The src string uses go-getter URL syntax including // for subpath extraction.
func (g *Getter) Fetch(ctx context.Context, src, dest string, opts FetchOpts) error {
	fullSrc := appendRef(src, opts.Ref)
	g.logger.Debug("fetching templates", "src", fullSrc, "dest", dest)

	req := &getter.Request{
		Src:             fullSrc,
		Dst:             dest,
		Pwd:             opts.Pwd,
		GetMode:         getter.ModeDir,
		Copy:            true,
		DisableSymlinks: true,
	}

	if _, err := g.client.Get(ctx, req); err != nil {
		return fmt.Errorf("fetching %s: %w", src, err)
	}

	return nil
}

// FetchTemp downloads src into a fresh temporary directory. The caller must
// invoke cleanup once the templates have been consumed.
func (g *Getter) FetchTemp(ctx context.Context, src string, opts FetchOpts) (dir string, cleanup func(), err error) {
	// go-getter wants to create the destination itself.
	parent, err := os.MkdirTemp("", "strapi-github-templates-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp dir: %w", err)
	}

	cleanup = func() {
		if err := os.RemoveAll(parent); err != nil {
			g.logger.Warn("failed to clean up temp directory", "dir", parent, "error", err)
		}
	}

	dir = parent + string(os.PathSeparator) + "templates"

	if err := g.Fetch(ctx, src, dir, opts); err != nil {
		cleanup()

		return "", nil, err
	}

	return dir, cleanup, nil
}

// IsLocalDir reports whether src names an existing local directory, in which
// case it is used in place without going through go-getter.
func IsLocalDir(src string) bool {
	if strings.Contains(src, "::") || strings.Contains(src, "://") {
		return false
	}

	info, err := os.Stat(src)

	return err == nil && info.IsDir()
}

// appendRef adds a ref query parameter to a source URL.
func appendRef(src, ref string) string {
	if ref == "" {
		return src
	}

	sep := "?"
	if strings.Contains(src, "?") {
		sep = "&"
	}

	return src + sep + "ref=" + ref
}
