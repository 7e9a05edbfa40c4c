// Package linecount detects the language of tracked files and splits their
// lines into code, comment and blank.
package linecount

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
	"github.com/src-d/enry/v2"
	"golang.org/x/sync/errgroup"
)

// Counter reads files from the working tree with a bounded worker pool.
type Counter struct {
	workers int
}

var _ contract.LineCounter = &Counter{} // Compile-time check

// New returns a Counter using up to workers goroutines.
func New(workers int) *Counter {
	return &Counter{workers: max(workers, 1)}
}

// Count implements contract.LineCounter. Vendored paths and paths missing
// from disk are left out.
func (c *Counter) Count(ctx context.Context, repoPath string, paths []string) (map[string]schema.FileLines, error) {
	var mu sync.Mutex
	out := make(map[string]schema.FileLines, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, p := range paths {
		if enry.IsVendor(p) {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lines, ok, err := countFile(filepath.Join(repoPath, filepath.FromSlash(p)), p)
			if err != nil {
				contract.Logger.WithError(err).WithField("file", p).Debug("skipping unreadable file")
				return nil
			}
			if !ok {
				return nil
			}
			mu.Lock()
			out[p] = lines
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// countFile reports ok=false when the file does not exist or is not regular.
func countFile(fullPath, relPath string) (schema.FileLines, bool, error) {
	info, err := os.Stat(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return schema.FileLines{}, false, nil
	}
	if err != nil {
		return schema.FileLines{}, false, err
	}
	if !info.Mode().IsRegular() {
		return schema.FileLines{}, false, nil
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return schema.FileLines{}, false, err
	}

	lines := schema.FileLines{
		Language: enry.GetLanguage(path.Base(relPath), data),
		Bytes:    info.Size(),
	}
	if enry.IsBinary(data) {
		return lines, true, nil
	}
	lines.Code, lines.Comment, lines.Blank = classify(data, syntaxByLanguage[lines.Language])
	lines.Total = lines.Code + lines.Comment + lines.Blank
	return lines, true, nil
}

// classify counts lines by kind. A line holding code and a comment is code.
func classify(data []byte, syntax commentSyntax) (code, comment, blank int) {
	if len(data) == 0 {
		return 0, 0, 0
	}
	data = bytes.TrimSuffix(data, []byte("\n"))

	var closer string // non-empty while inside a block comment
	for _, raw := range bytes.Split(data, []byte("\n")) {
		line := strings.TrimSpace(string(raw))
		switch {
		case closer != "":
			comment++
			if strings.Contains(line, closer) {
				closer = ""
			}
		case line == "":
			blank++
		case hasAnyPrefix(line, syntax.line):
			comment++
		default:
			opener, end, ok := blockStart(line, syntax.block)
			if !ok {
				code++
				continue
			}
			comment++
			if !strings.Contains(line[len(opener):], end) {
				closer = end
			}
		}
	}
	return code, comment, blank
}

func hasAnyPrefix(line string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func blockStart(line string, blocks [][2]string) (string, string, bool) {
	for _, b := range blocks {
		if strings.HasPrefix(line, b[0]) {
			return b[0], b[1], true
		}
	}
	return "", "", false
}
