// Package parquet provides data structures and functions for exporting
// hotspotter results to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/hotspotter/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun maps to the hotspotter_analyses table.
type AnalysisRun struct {
	ID               string     `parquet:"id,snappy"`
	RepoPath         string     `parquet:"repo_path,snappy"`
	RepoName         string     `parquet:"repo_name,snappy"`
	HeadHash         string     `parquet:"head_hash,snappy"`
	StartDate        *time.Time `parquet:"start_date,optional,snappy"`
	EndDate          *time.Time `parquet:"end_date,optional,snappy"`
	ReferenceDate    time.Time  `parquet:"reference_date,snappy"`
	AnalyzedAt       time.Time  `parquet:"analyzed_at,snappy"`
	Status           string     `parquet:"status,snappy,dict"`
	Phase            string     `parquet:"phase,snappy,dict"`
	Error            *string    `parquet:"error,optional,snappy"`
	DurationMs       int64      `parquet:"duration_ms,snappy"`
	CommitsProcessed int32      `parquet:"commits_processed,snappy"`
	SkippedBlocks    int32      `parquet:"skipped_blocks,snappy"`
	SchemaVersion    int32      `parquet:"schema_version,snappy"`
}

// Contribution is one author's share of a file.
type Contribution struct {
	Name       string  `parquet:"name"`
	LinesAdded int32   `parquet:"lines_added"`
	Commits    int32   `parquet:"commits"`
	Percentage float64 `parquet:"percentage"`
}

// FileKnowledge maps to the hotspotter_file_knowledge table.
type FileKnowledge struct {
	RunID                string         `parquet:"run_id,snappy,dict"`
	FilePath             string         `parquet:"file_path,snappy"`
	LinesAdded           int32          `parquet:"lines_added,snappy"`
	Commits              int32          `parquet:"commits,snappy"`
	Contributions        []Contribution `parquet:"contributions"`
	LeadAuthor           *string        `parquet:"lead_author,optional,snappy"`
	LeadAuthorPercentage float64        `parquet:"lead_author_percentage,snappy"`
	Contributors         int32          `parquet:"contributors,snappy"`
	ActiveContributors   int32          `parquet:"active_contributors,snappy"`
	KnowledgeLoss        float64        `parquet:"knowledge_loss,snappy"`
}

// FileOwnership maps to the hotspotter_file_ownership table.
type FileOwnership struct {
	RunID         string         `parquet:"run_id,snappy,dict"`
	FilePath      string         `parquet:"file_path,snappy"`
	LinesAdded    int32          `parquet:"lines_added,snappy"`
	Commits       int32          `parquet:"commits,snappy"`
	Contributions []Contribution `parquet:"contributions"`
	LeadAuthors   []string       `parquet:"lead_authors"`
	Contributors  int32          `parquet:"contributors,snappy"`
}

// AuthorStatistics maps to the hotspotter_author_statistics table.
type AuthorStatistics struct {
	RunID                  string    `parquet:"run_id,snappy,dict"`
	Name                   string    `parquet:"name,snappy"`
	Emails                 []string  `parquet:"emails"`
	FirstCommitDate        time.Time `parquet:"first_commit_date,snappy"`
	LastCommitDate         time.Time `parquet:"last_commit_date,snappy"`
	DaysSinceFirstCommit   int32     `parquet:"days_since_first_commit,snappy"`
	MonthsSinceFirstCommit int32     `parquet:"months_since_first_commit,snappy"`
	DaysSinceLastCommit    int32     `parquet:"days_since_last_commit,snappy"`
	MonthsSinceLastCommit  int32     `parquet:"months_since_last_commit,snappy"`
	Commits                int32     `parquet:"commits,snappy"`
	LinesAdded             int32     `parquet:"lines_added,snappy"`
	LinesDeleted           int32     `parquet:"lines_deleted,snappy"`
	UniqueFiles            int32     `parquet:"unique_files,snappy"`
	FilesAsLeadAuthor      int32     `parquet:"files_as_lead_author,snappy"`
	IsActive               bool      `parquet:"is_active,snappy"`
}

// DailyStats maps to the hotspotter_activity_trends table.
type DailyStats struct {
	RunID         string    `parquet:"run_id,snappy,dict"`
	Day           time.Time `parquet:"day,snappy"`
	Commits       int32     `parquet:"commits,snappy"`
	UniqueAuthors int32     `parquet:"unique_authors,snappy"`
	ActiveAuthors int32     `parquet:"active_authors,snappy"`
	LinesAdded    int32     `parquet:"lines_added,snappy"`
	LinesDeleted  int32     `parquet:"lines_deleted,snappy"`
}

// FileInfo maps to the hotspotter_file_info table.
type FileInfo struct {
	RunID            string    `parquet:"run_id,snappy,dict"`
	FilePath         string    `parquet:"file_path,snappy"`
	FileName         string    `parquet:"file_name,snappy"`
	FirstCommitDate  time.Time `parquet:"first_commit_date,snappy"`
	LastCommitDate   time.Time `parquet:"last_commit_date,snappy"`
	TotalCommits     int32     `parquet:"total_commits,snappy"`
	CommitsLastMonth int32     `parquet:"commits_last_month,snappy"`
	CommitsLastYear  int32     `parquet:"commits_last_year,snappy"`
	CommitsHotSpot   int32     `parquet:"commits_hot_spot,snappy"`
	CodeAgeDays      int32     `parquet:"code_age_days,snappy"`
	CodeAgeMonths    int32     `parquet:"code_age_months,snappy"`
	Language         string    `parquet:"language,snappy,dict"`
	CodeLines        int32     `parquet:"code_lines,snappy"`
	CommentLines     int32     `parquet:"comment_lines,snappy"`
	BlankLines       int32     `parquet:"blank_lines,snappy"`
	TotalLines       int32     `parquet:"total_lines,snappy"`
	SizeBytes        int64     `parquet:"size_bytes,snappy"`
}

// WriteFile writes rows to a Parquet file at outputPath. The schema is
// derived from the struct tags of T.
func WriteFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func convertContributions(in []schema.AuthorContribution) []Contribution {
	out := make([]Contribution, len(in))
	for i, c := range in {
		out[i] = Contribution{Name: c.Name, LinesAdded: int32(c.LinesAdded), Commits: int32(c.Commits), Percentage: c.Percentage}
	}
	return out
}

// ConvertAnalysisRuns converts run rows to their Parquet form.
func ConvertAnalysisRuns(records []schema.AnalysisInfo) []AnalysisRun {
	out := make([]AnalysisRun, len(records))
	for i, r := range records {
		out[i] = AnalysisRun{
			ID:               r.ID,
			RepoPath:         r.RepoPath,
			RepoName:         r.RepoName,
			HeadHash:         r.HeadHash,
			StartDate:        optionalTime(r.StartDate),
			EndDate:          optionalTime(r.EndDate),
			ReferenceDate:    r.ReferenceDate,
			AnalyzedAt:       r.AnalyzedAt,
			Status:           string(r.Status),
			Phase:            string(r.Phase),
			Error:            optionalString(r.Error),
			DurationMs:       r.DurationMs,
			CommitsProcessed: int32(r.CommitsProcessed),
			SkippedBlocks:    int32(r.SkippedBlocks),
			SchemaVersion:    int32(r.SchemaVersion),
		}
	}
	return out
}

// ConvertFileKnowledge converts knowledge rows to their Parquet form.
func ConvertFileKnowledge(records []schema.FileKnowledge) []FileKnowledge {
	out := make([]FileKnowledge, len(records))
	for i, r := range records {
		out[i] = FileKnowledge{
			RunID:                r.RunID,
			FilePath:             r.FilePath,
			LinesAdded:           int32(r.LinesAdded),
			Commits:              int32(r.Commits),
			Contributions:        convertContributions(r.Contributions),
			LeadAuthor:           optionalString(r.LeadAuthor),
			LeadAuthorPercentage: r.LeadAuthorPercentage,
			Contributors:         int32(r.Contributors),
			ActiveContributors:   int32(r.ActiveContributors),
			KnowledgeLoss:        r.KnowledgeLoss,
		}
	}
	return out
}

// ConvertFileOwnership converts ownership rows to their Parquet form.
func ConvertFileOwnership(records []schema.FileOwnership) []FileOwnership {
	out := make([]FileOwnership, len(records))
	for i, r := range records {
		out[i] = FileOwnership{
			RunID:         r.RunID,
			FilePath:      r.FilePath,
			LinesAdded:    int32(r.LinesAdded),
			Commits:       int32(r.Commits),
			Contributions: convertContributions(r.Contributions),
			LeadAuthors:   r.LeadAuthors,
			Contributors:  int32(r.Contributors),
		}
	}
	return out
}

// ConvertAuthorStatistics converts author rows to their Parquet form.
func ConvertAuthorStatistics(records []schema.AuthorStatistics) []AuthorStatistics {
	out := make([]AuthorStatistics, len(records))
	for i, r := range records {
		out[i] = AuthorStatistics{
			RunID:                  r.RunID,
			Name:                   r.Name,
			Emails:                 r.Emails,
			FirstCommitDate:        r.FirstCommitDate,
			LastCommitDate:         r.LastCommitDate,
			DaysSinceFirstCommit:   int32(r.DaysSinceFirstCommit),
			MonthsSinceFirstCommit: int32(r.MonthsSinceFirstCommit),
			DaysSinceLastCommit:    int32(r.DaysSinceLastCommit),
			MonthsSinceLastCommit:  int32(r.MonthsSinceLastCommit),
			Commits:                int32(r.Commits),
			LinesAdded:             int32(r.LinesAdded),
			LinesDeleted:           int32(r.LinesDeleted),
			UniqueFiles:            int32(r.UniqueFiles),
			FilesAsLeadAuthor:      int32(r.FilesAsLeadAuthor),
			IsActive:               r.IsActive,
		}
	}
	return out
}

// ConvertDailyStats converts trend rows to their Parquet form.
func ConvertDailyStats(records []schema.DailyStats) []DailyStats {
	out := make([]DailyStats, len(records))
	for i, r := range records {
		out[i] = DailyStats{
			RunID:         r.RunID,
			Day:           r.Day,
			Commits:       int32(r.Commits),
			UniqueAuthors: int32(r.UniqueAuthors),
			ActiveAuthors: int32(r.ActiveAuthors),
			LinesAdded:    int32(r.LinesAdded),
			LinesDeleted:  int32(r.LinesDeleted),
		}
	}
	return out
}

// ConvertFileInfo converts file info rows to their Parquet form.
func ConvertFileInfo(records []schema.FileInfo) []FileInfo {
	out := make([]FileInfo, len(records))
	for i, r := range records {
		out[i] = FileInfo{
			RunID:            r.RunID,
			FilePath:         r.FilePath,
			FileName:         r.FileName,
			FirstCommitDate:  r.FirstCommitDate,
			LastCommitDate:   r.LastCommitDate,
			TotalCommits:     int32(r.TotalCommits),
			CommitsLastMonth: int32(r.CommitsLastMonth),
			CommitsLastYear:  int32(r.CommitsLastYear),
			CommitsHotSpot:   int32(r.CommitsHotSpot),
			CodeAgeDays:      int32(r.CodeAgeDays),
			CodeAgeMonths:    int32(r.CodeAgeMonths),
			Language:         r.Language,
			CodeLines:        int32(r.CodeLines),
			CommentLines:     int32(r.CommentLines),
			BlankLines:       int32(r.BlankLines),
			TotalLines:       int32(r.TotalLines),
			SizeBytes:        r.SizeBytes,
		}
	}
	return out
}
