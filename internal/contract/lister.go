package contract

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
)

// IndexFileLister reads the tracked paths straight from the repository index
// with go-git, and falls back to `git ls-files` when the index cannot be
// decoded (for example a newer index version than go-git supports).
type IndexFileLister struct {
	fallback GitClient
}

var _ FileLister = &IndexFileLister{} // Compile-time check

// NewIndexFileLister creates a lister. A nil fallback disables it.
func NewIndexFileLister(fallback GitClient) *IndexFileLister {
	return &IndexFileLister{fallback: fallback}
}

// ListFiles implements the FileLister interface.
func (l *IndexFileLister) ListFiles(ctx context.Context, repoPath string) (map[string]struct{}, error) {
	names, err := readIndexEntries(repoPath)
	if err != nil {
		if l.fallback == nil {
			return nil, err
		}
		Logger.WithError(err).WithField("repo", repoPath).Debug("index read failed, using git ls-files")
		list, listErr := l.fallback.ListTrackedFiles(ctx, repoPath)
		if listErr != nil {
			return nil, fmt.Errorf("failed to list tracked files: %w", errors.Join(err, listErr))
		}
		names = list
	}

	files := make(map[string]struct{}, len(names))
	for _, name := range names {
		files[name] = struct{}{}
	}
	return files, nil
}

func readIndexEntries(repoPath string) ([]string, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %q: %w", repoPath, err)
	}
	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("failed to read index of %q: %w", repoPath, err)
	}
	names := make([]string, 0, len(idx.Entries))
	for _, entry := range idx.Entries {
		names = append(names, entry.Name)
	}
	return names, nil
}
