// Package logparse turns `git log --numstat` text into a lazy, single-pass
// stream of commits.
//
// The expected grammar is one block per commit:
//
//	[<hash>] <YYYY-MM-DD>
//	<author> <<email>>
//	<added>\t<removed>\t<path>
//	...
//
// A block starts at every line beginning with '['. Blocks whose header does
// not match are skipped and counted; read errors end the stream.
package logparse

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
)

const maxLineSize = 16 * 1024 * 1024

var (
	headerRe  = regexp.MustCompile(`^\[([^\]]+)\]\s(\d{4}-\d{2}-\d{2})\n([^<]+)\s<([^>]+)>`)
	numstatRe = regexp.MustCompile(`^(\d+|-)\s+(\d+|-)\s+(.+)$`)
)

// Iterator yields commits one at a time. It owns the underlying reader and
// releases it exactly once: on exhaustion, on a read error, or on Close.
//
//	it := logparse.New(r)
//	defer it.Close()
//	for it.Next() {
//		c := it.Commit()
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	scanner *bufio.Scanner
	closer  io.Closer

	pending []string // lines of the block being read
	lineNo  int
	current schema.Commit
	err     error
	skipped int
	done    bool
	closed  bool
}

// New creates an iterator over r. If r is also an io.Closer it is closed
// when the iterator is done with it.
func New(r io.Reader) *Iterator {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	it := &Iterator{scanner: scanner}
	if c, ok := r.(io.Closer); ok {
		it.closer = c
	}
	return it
}

// Open creates an iterator over the log file at path.
func Open(path string) (*Iterator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return New(f), nil
}

// Next advances to the next well-formed commit. It returns false when the
// stream is exhausted, failed, or closed.
func (it *Iterator) Next() bool {
	for !it.done {
		block, ok := it.readBlock()
		if len(block) > 0 {
			if commit, parsed := parseBlock(block); parsed {
				it.current = commit
				if !ok {
					it.finish(nil)
				}
				return true
			}
			it.skipped++
			contract.Logger.WithField("line", it.lineNo).WithField("block", firstLine(block)).Debug("skipping malformed log block")
		}
		if !ok {
			it.finish(nil)
		}
	}
	return false
}

// readBlock returns the next block of non-blank lines. ok is false once the
// source has no more lines; the returned block is still valid then.
func (it *Iterator) readBlock() (block []string, ok bool) {
	for it.scanner.Scan() {
		it.lineNo++
		line := strings.TrimRight(it.scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && len(it.pending) > 0 {
			block = it.pending
			it.pending = []string{line}
			return block, true
		}
		it.pending = append(it.pending, line)
	}
	if err := it.scanner.Err(); err != nil {
		it.finish(fmt.Errorf("failed to read log at line %d: %w", it.lineNo+1, err))
		return nil, false
	}
	block, it.pending = it.pending, nil
	return block, false
}

// Commit returns the commit Next advanced to.
func (it *Iterator) Commit() schema.Commit {
	return it.current
}

// Err returns the read error that ended the stream, if any. Stopping early
// with Close is not an error.
func (it *Iterator) Err() error {
	return it.err
}

// Skipped returns the number of blocks dropped for a malformed header.
func (it *Iterator) Skipped() int {
	return it.skipped
}

// Close releases the underlying reader. It is safe to call more than once.
func (it *Iterator) Close() error {
	it.done = true
	return it.closeSource()
}

func (it *Iterator) finish(err error) {
	if it.done {
		return
	}
	it.err = err
	it.done = true
	if closeErr := it.closeSource(); closeErr != nil && it.err == nil {
		it.err = fmt.Errorf("failed to close log source: %w", closeErr)
	}
}

func (it *Iterator) closeSource() error {
	if it.closed {
		return nil
	}
	it.closed = true
	it.pending = nil
	if it.closer == nil {
		return nil
	}
	return it.closer.Close()
}

// ForEach drains it through fn and always closes it. A non-nil error from fn
// stops the iteration and is returned as-is.
func ForEach(it *Iterator, fn func(schema.Commit) error) (err error) {
	defer func() {
		if closeErr := it.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close log source: %w", closeErr)
		}
	}()
	for it.Next() {
		if err := fn(it.Commit()); err != nil {
			return err
		}
	}
	return it.Err()
}

// parseBlock parses one commit block. It reports false for a missing or
// malformed header.
func parseBlock(lines []string) (schema.Commit, bool) {
	if len(lines) < 2 {
		return schema.Commit{}, false
	}
	m := headerRe.FindStringSubmatch(lines[0] + "\n" + lines[1])
	if m == nil {
		return schema.Commit{}, false
	}
	date, err := time.Parse(contract.DateFormat, m[2])
	if err != nil {
		return schema.Commit{}, false
	}

	commit := schema.Commit{
		Hash:        m[1],
		Date:        date,
		AuthorName:  strings.TrimSpace(m[3]),
		AuthorEmail: strings.TrimSpace(m[4]),
		Changes:     make([]schema.FileChange, 0, len(lines)-2),
	}
	for _, line := range lines[2:] {
		if change, ok := parseNumstat(line); ok {
			commit.Changes = append(commit.Changes, change)
		}
	}
	return commit, true
}

// parseNumstat parses "<added>\t<removed>\t<path>". Binary files report '-'
// for both counts, which become 0.
func parseNumstat(line string) (schema.FileChange, bool) {
	m := numstatRe.FindStringSubmatch(line)
	if m == nil {
		return schema.FileChange{}, false
	}
	change := schema.FileChange{
		Path:         strings.TrimSpace(m[3]),
		LinesAdded:   parseCount(m[1]),
		LinesDeleted: parseCount(m[2]),
	}
	if oldPath, newPath := resolvePath(change.Path); oldPath != "" || newPath != "" {
		change.OldPath, change.NewPath = oldPath, newPath
		if newPath != "" {
			change.Path = newPath
		}
	}
	return change, true
}

func parseCount(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func firstLine(block []string) string {
	if len(block) == 0 {
		return ""
	}
	return block[0]
}
