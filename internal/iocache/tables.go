package iocache

import (
	"github.com/huangsam/hotspotter/schema"
)

// Table names for persisted results.
const (
	analysesTable      = "hotspotter_analyses"
	knowledgeTable     = "hotspotter_file_knowledge"
	ownershipTable     = "hotspotter_file_ownership"
	authorsTable       = "hotspotter_author_statistics"
	trendsTable        = "hotspotter_activity_trends"
	fileInfoTable      = "hotspotter_file_info"
	migrationsTable    = "hotspotter_schema_migrations"
	runIDColumn        = "run_id"
	analysisTimeColumn = "analyzed_at"
)

// AllTables lists the result tables in dependency order.
var AllTables = []string{analysesTable, knowledgeTable, ownershipTable, authorsTable, trendsTable, fileInfoTable}

var analysesDef = tableDef[schema.AnalysisInfo]{
	name: analysesTable,
	columns: []string{
		"id", "repo_path", "repo_name", "head_hash", "start_date", "end_date", "reference_date",
		analysisTimeColumn, "status", "phase", "error", "duration_ms", "commits_processed",
		"skipped_blocks", "schema_version",
	},
	keys:    []string{"id"},
	orderBy: analysisTimeColumn + " DESC, id",
	values: func(r schema.AnalysisInfo, b schema.DatabaseBackend) ([]any, error) {
		return []any{
			r.ID, r.RepoPath, r.RepoName, r.HeadHash, formatTime(r.StartDate, b), formatTime(r.EndDate, b),
			formatTime(r.ReferenceDate, b), formatTime(r.AnalyzedAt, b), string(r.Status), string(r.Phase),
			r.Error, r.DurationMs, r.CommitsProcessed, r.SkippedBlocks, r.SchemaVersion,
		}, nil
	},
	scan: func(s rowScanner) (schema.AnalysisInfo, error) {
		var r schema.AnalysisInfo
		var status, phase string
		err := s.Scan(
			&r.ID, &r.RepoPath, &r.RepoName, &r.HeadHash, timeColumn{&r.StartDate}, timeColumn{&r.EndDate},
			timeColumn{&r.ReferenceDate}, timeColumn{&r.AnalyzedAt}, &status, &phase,
			&r.Error, &r.DurationMs, &r.CommitsProcessed, &r.SkippedBlocks, &r.SchemaVersion,
		)
		r.Status, r.Phase = schema.RunStatus(status), schema.RunPhase(phase)
		return r, err
	},
}

var knowledgeDef = tableDef[schema.FileKnowledge]{
	name: knowledgeTable,
	columns: []string{
		runIDColumn, "file_path", "lines_added", "commits", "contributions", "lead_author",
		"lead_author_percentage", "contributors", "active_contributors", "knowledge_loss",
	},
	keys:    []string{runIDColumn, "file_path"},
	orderBy: "file_path",
	values: func(r schema.FileKnowledge, _ schema.DatabaseBackend) ([]any, error) {
		contributions, err := jsonText(r.Contributions)
		if err != nil {
			return nil, err
		}
		return []any{
			r.RunID, r.FilePath, r.LinesAdded, r.Commits, contributions, r.LeadAuthor,
			r.LeadAuthorPercentage, r.Contributors, r.ActiveContributors, r.KnowledgeLoss,
		}, nil
	},
	scan: func(s rowScanner) (schema.FileKnowledge, error) {
		var r schema.FileKnowledge
		err := s.Scan(
			&r.RunID, &r.FilePath, &r.LinesAdded, &r.Commits, jsonColumn{&r.Contributions}, &r.LeadAuthor,
			&r.LeadAuthorPercentage, &r.Contributors, &r.ActiveContributors, &r.KnowledgeLoss,
		)
		return r, err
	},
}

var ownershipDef = tableDef[schema.FileOwnership]{
	name:    ownershipTable,
	columns: []string{runIDColumn, "file_path", "lines_added", "commits", "contributions", "lead_authors", "contributors"},
	keys:    []string{runIDColumn, "file_path"},
	orderBy: "file_path",
	values: func(r schema.FileOwnership, _ schema.DatabaseBackend) ([]any, error) {
		contributions, err := jsonText(r.Contributions)
		if err != nil {
			return nil, err
		}
		leads, err := jsonText(r.LeadAuthors)
		if err != nil {
			return nil, err
		}
		return []any{r.RunID, r.FilePath, r.LinesAdded, r.Commits, contributions, leads, r.Contributors}, nil
	},
	scan: func(s rowScanner) (schema.FileOwnership, error) {
		var r schema.FileOwnership
		err := s.Scan(&r.RunID, &r.FilePath, &r.LinesAdded, &r.Commits, jsonColumn{&r.Contributions}, jsonColumn{&r.LeadAuthors}, &r.Contributors)
		return r, err
	},
}

var authorsDef = tableDef[schema.AuthorStatistics]{
	name: authorsTable,
	columns: []string{
		runIDColumn, "name", "emails", "first_commit_date", "last_commit_date",
		"days_since_first_commit", "months_since_first_commit", "days_since_last_commit", "months_since_last_commit",
		"commits", "lines_added", "lines_deleted", "unique_files", "files_as_lead_author", "is_active",
	},
	keys:    []string{runIDColumn, "name"},
	orderBy: "name",
	values: func(r schema.AuthorStatistics, b schema.DatabaseBackend) ([]any, error) {
		emails, err := jsonText(r.Emails)
		if err != nil {
			return nil, err
		}
		return []any{
			r.RunID, r.Name, emails, formatTime(r.FirstCommitDate, b), formatTime(r.LastCommitDate, b),
			r.DaysSinceFirstCommit, r.MonthsSinceFirstCommit, r.DaysSinceLastCommit, r.MonthsSinceLastCommit,
			r.Commits, r.LinesAdded, r.LinesDeleted, r.UniqueFiles, r.FilesAsLeadAuthor, r.IsActive,
		}, nil
	},
	scan: func(s rowScanner) (schema.AuthorStatistics, error) {
		var r schema.AuthorStatistics
		err := s.Scan(
			&r.RunID, &r.Name, jsonColumn{&r.Emails}, timeColumn{&r.FirstCommitDate}, timeColumn{&r.LastCommitDate},
			&r.DaysSinceFirstCommit, &r.MonthsSinceFirstCommit, &r.DaysSinceLastCommit, &r.MonthsSinceLastCommit,
			&r.Commits, &r.LinesAdded, &r.LinesDeleted, &r.UniqueFiles, &r.FilesAsLeadAuthor, &r.IsActive,
		)
		return r, err
	},
}

var trendsDef = tableDef[schema.DailyStats]{
	name:    trendsTable,
	columns: []string{runIDColumn, "day", "commits", "unique_authors", "active_authors", "lines_added", "lines_deleted"},
	keys:    []string{runIDColumn, "day"},
	orderBy: "day",
	values: func(r schema.DailyStats, b schema.DatabaseBackend) ([]any, error) {
		return []any{r.RunID, formatTime(r.Day, b), r.Commits, r.UniqueAuthors, r.ActiveAuthors, r.LinesAdded, r.LinesDeleted}, nil
	},
	scan: func(s rowScanner) (schema.DailyStats, error) {
		var r schema.DailyStats
		err := s.Scan(&r.RunID, timeColumn{&r.Day}, &r.Commits, &r.UniqueAuthors, &r.ActiveAuthors, &r.LinesAdded, &r.LinesDeleted)
		return r, err
	},
}

var fileInfoDef = tableDef[schema.FileInfo]{
	name: fileInfoTable,
	columns: []string{
		runIDColumn, "file_path", "file_name", "first_commit_date", "last_commit_date",
		"total_commits", "commits_last_month", "commits_last_year", "commits_hot_spot",
		"code_age_days", "code_age_months", "language", "code_lines", "comment_lines",
		"blank_lines", "total_lines", "size_bytes", "file_size",
	},
	keys:    []string{runIDColumn, "file_path"},
	orderBy: "file_path",
	values: func(r schema.FileInfo, b schema.DatabaseBackend) ([]any, error) {
		return []any{
			r.RunID, r.FilePath, r.FileName, formatTime(r.FirstCommitDate, b), formatTime(r.LastCommitDate, b),
			r.TotalCommits, r.CommitsLastMonth, r.CommitsLastYear, r.CommitsHotSpot,
			r.CodeAgeDays, r.CodeAgeMonths, r.Language, r.CodeLines, r.CommentLines,
			r.BlankLines, r.TotalLines, r.SizeBytes, r.FileSize,
		}, nil
	},
	scan: func(s rowScanner) (schema.FileInfo, error) {
		var r schema.FileInfo
		err := s.Scan(
			&r.RunID, &r.FilePath, &r.FileName, timeColumn{&r.FirstCommitDate}, timeColumn{&r.LastCommitDate},
			&r.TotalCommits, &r.CommitsLastMonth, &r.CommitsLastYear, &r.CommitsHotSpot,
			&r.CodeAgeDays, &r.CodeAgeMonths, &r.Language, &r.CodeLines, &r.CommentLines,
			&r.BlankLines, &r.TotalLines, &r.SizeBytes, &r.FileSize,
		)
		return r, err
	},
}
