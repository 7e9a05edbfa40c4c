package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
)

// TrendsOptions configures the rolling active-author window.
type TrendsOptions struct {
	Window int
	Unit   schema.WindowUnit

	// ExtendToReference fills days after the last commit up to the
	// reference date.
	ExtendToReference bool
}

// ActivityTrends builds a gap-filled daily activity series.
type ActivityTrends struct {
	store     contract.RowStore[schema.DailyStats]
	opts      TrendsOptions
	batchSize int
}

// NewActivityTrends creates the analyzer.
func NewActivityTrends(store contract.RowStore[schema.DailyStats], opts TrendsOptions, batchSize int) *ActivityTrends {
	return &ActivityTrends{store: store, opts: opts, batchSize: batchSize}
}

type dayState struct {
	commits int
	added   int
	deleted int
	authors map[string]struct{}
}

// TrendsSession is the daily activity state of one run.
type TrendsSession struct {
	analyzer  *ActivityTrends
	params    RunParams
	reference time.Time
	days      map[time.Time]*dayState
	first     time.Time
	last      time.Time
}

var _ Session = &TrendsSession{} // Compile-time check

// Start allocates a session. It never touches storage.
func (a *ActivityTrends) Start(params RunParams) *TrendsSession {
	return &TrendsSession{
		analyzer:  a,
		params:    params,
		reference: params.reference(),
		days:      make(map[time.Time]*dayState),
	}
}

// Name implements Session.
func (s *TrendsSession) Name() string { return TrendsName }

// ProcessCommit implements Session.
func (s *TrendsSession) ProcessCommit(commit *schema.Commit) {
	if s == nil || commit == nil || s.days == nil {
		return
	}
	day := contract.TruncateDay(commit.Date)
	st, ok := s.days[day]
	if !ok {
		st = &dayState{authors: make(map[string]struct{})}
		s.days[day] = st
	}
	st.commits++
	st.authors[commit.AuthorName] = struct{}{}
	for _, change := range commit.Changes {
		st.added += change.LinesAdded
		st.deleted += change.LinesDeleted
	}

	if s.first.IsZero() || day.Before(s.first) {
		s.first = day
	}
	if day.After(s.last) {
		s.last = day
	}
}

// windowStart is the earliest activity day that still counts as active on day.
func (s *TrendsSession) windowStart(day time.Time) time.Time {
	if s.analyzer.opts.Unit == schema.WindowMonths {
		return contract.AddMonths(day, -s.analyzer.opts.Window)
	}
	return day.AddDate(0, 0, -s.analyzer.opts.Window)
}

type authorSeen struct {
	day  time.Time
	name string
}

// Results derives one row per calendar day from the first commit day to the
// last, including days without commits. An author is active on a day when
// their latest commit is on or after windowStart of that day.
func (s *TrendsSession) Results() []schema.DailyStats {
	if s == nil || len(s.days) == 0 {
		return nil
	}
	end := s.last
	if s.analyzer.opts.ExtendToReference && s.reference.After(end) {
		end = s.reference
	}

	var (
		rows     []schema.DailyStats
		queue    []authorSeen
		lastSeen = make(map[string]time.Time)
	)
	for day := s.first; !day.After(end); day = day.AddDate(0, 0, 1) {
		row := schema.DailyStats{RunID: s.params.RunID, Day: day}
		if st, ok := s.days[day]; ok {
			row.Commits = st.commits
			row.UniqueAuthors = len(st.authors)
			row.LinesAdded = st.added
			row.LinesDeleted = st.deleted
			for name := range st.authors {
				lastSeen[name] = day
				queue = append(queue, authorSeen{day: day, name: name})
			}
		}

		// The window start only moves forward, so expired sightings can
		// be dropped from the front of the queue.
		cutoff := s.windowStart(day)
		for len(queue) > 0 && queue[0].day.Before(cutoff) {
			seen := queue[0]
			queue = queue[1:]
			if lastSeen[seen.name].Equal(seen.day) {
				delete(lastSeen, seen.name)
			}
		}
		row.ActiveAuthors = len(lastSeen)
		rows = append(rows, row)
	}
	return rows
}

// Finish implements Session.
func (s *TrendsSession) Finish(ctx context.Context) error {
	if s == nil || s.days == nil {
		return nil
	}
	if s.analyzer.batchSize < 1 {
		return fmt.Errorf("%w (received %d)", ErrInvalidBatchSize, s.analyzer.batchSize)
	}
	if s.analyzer.opts.Window < 1 {
		return fmt.Errorf("trend window must be at least 1 (received %d)", s.analyzer.opts.Window)
	}
	rows := s.Results()
	s.days = nil
	return SaveInBatches(ctx, s.analyzer.store, TrendsName, rows, s.analyzer.batchSize)
}
