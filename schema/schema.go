// Package schema has the records that flow through the mining pipeline and
// the rows it persists.
package schema

import "time"

// Commit is one history entry as produced by the log parser. It is never
// mutated after parsing.
type Commit struct {
	Hash        string       `json:"hash"`
	Date        time.Time    `json:"date"` // calendar day, UTC
	AuthorName  string       `json:"author_name"`
	AuthorEmail string       `json:"author_email"`
	Changes     []FileChange `json:"changes"`
}

// FileChange is one numstat line of a commit.
type FileChange struct {
	Path         string `json:"path"` // current path; equals NewPath on renames
	LinesAdded   int    `json:"lines_added"`
	LinesDeleted int    `json:"lines_deleted"`
	OldPath      string `json:"old_path,omitempty"`
	NewPath      string `json:"new_path,omitempty"`
}

// IsRenamed reports whether the change carries both sides of a rename.
func (fc FileChange) IsRenamed() bool {
	return fc.OldPath != "" && fc.NewPath != ""
}

// AuthorContribution is one author's cumulative work on one file.
type AuthorContribution struct {
	Name       string  `json:"name"`
	LinesAdded int     `json:"lines_added"`
	Commits    int     `json:"commits"`
	Percentage float64 `json:"percentage"` // set at finish
}

// FileKnowledge is the knowledge concentration row for a run and file.
type FileKnowledge struct {
	RunID                string               `json:"run_id"`
	FilePath             string               `json:"file_path"`
	LinesAdded           int                  `json:"lines_added"`
	Commits              int                  `json:"commits"`
	Contributions        []AuthorContribution `json:"contributions"`
	LeadAuthor           string               `json:"lead_author,omitempty"` // empty when no lead
	LeadAuthorPercentage float64              `json:"lead_author_percentage"`
	Contributors         int                  `json:"contributors"`
	ActiveContributors   int                  `json:"active_contributors"`
	KnowledgeLoss        float64              `json:"knowledge_loss"`
}

// FileOwnership is the ownership row for a run and file. Unlike knowledge,
// a file may have several co-equal lead authors.
type FileOwnership struct {
	RunID         string               `json:"run_id"`
	FilePath      string               `json:"file_path"`
	LinesAdded    int                  `json:"lines_added"`
	Commits       int                  `json:"commits"`
	Contributions []AuthorContribution `json:"contributions"`
	LeadAuthors   []string             `json:"lead_authors"`
	Contributors  int                  `json:"contributors"`
}

// AuthorStatistics is the per-author row for a run.
type AuthorStatistics struct {
	RunID                  string    `json:"run_id"`
	Name                   string    `json:"name"`
	Emails                 []string  `json:"emails"`
	FirstCommitDate        time.Time `json:"first_commit_date"`
	LastCommitDate         time.Time `json:"last_commit_date"`
	DaysSinceFirstCommit   int       `json:"days_since_first_commit"`
	MonthsSinceFirstCommit int       `json:"months_since_first_commit"`
	DaysSinceLastCommit    int       `json:"days_since_last_commit"`
	MonthsSinceLastCommit  int       `json:"months_since_last_commit"`
	Commits                int       `json:"commits"`
	LinesAdded             int       `json:"lines_added"`
	LinesDeleted           int       `json:"lines_deleted"`
	UniqueFiles            int       `json:"unique_files"`
	FilesAsLeadAuthor      int       `json:"files_as_lead_author"`
	IsActive               bool      `json:"is_active"`
}

// DailyStats is one gap-filled day of repository activity.
type DailyStats struct {
	RunID         string    `json:"run_id"`
	Day           time.Time `json:"day"`
	Commits       int       `json:"commits"`
	UniqueAuthors int       `json:"unique_authors"`
	ActiveAuthors int       `json:"active_authors"`
	LinesAdded    int       `json:"lines_added"`
	LinesDeleted  int       `json:"lines_deleted"`
}

// FileInfo is the per-file activity and size row for a run.
type FileInfo struct {
	RunID            string    `json:"run_id"`
	FilePath         string    `json:"file_path"`
	FileName         string    `json:"file_name"`
	FirstCommitDate  time.Time `json:"first_commit_date"`
	LastCommitDate   time.Time `json:"last_commit_date"`
	TotalCommits     int       `json:"total_commits"`
	CommitsLastMonth int       `json:"commits_last_month"`
	CommitsLastYear  int       `json:"commits_last_year"`
	CommitsHotSpot   int       `json:"commits_hot_spot"`
	CodeAgeDays      int       `json:"code_age_days"`
	CodeAgeMonths    int       `json:"code_age_months"`
	Language         string    `json:"language"`
	CodeLines        int       `json:"code_lines"`
	CommentLines     int       `json:"comment_lines"`
	BlankLines       int       `json:"blank_lines"`
	TotalLines       int       `json:"total_lines"`
	SizeBytes        int64     `json:"size_bytes"`
	FileSize         string    `json:"file_size"`
}

// FileLines is what the line counter knows about one file on disk.
type FileLines struct {
	Language string
	Code     int
	Comment  int
	Blank    int
	Total    int
	Bytes    int64
}
