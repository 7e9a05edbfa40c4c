package analyzer

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trendsSession(opts TrendsOptions) *TrendsSession {
	return NewActivityTrends(newTrendStore(), opts, 10).Start(params("run"))
}

func activeSeries(rows []schema.DailyStats) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.ActiveAuthors
	}
	return out
}

func TestTrendsGapFilledDayWindow(t *testing.T) {
	s := trendsSession(TrendsOptions{Window: 5, Unit: schema.WindowDays})
	s.ProcessCommit(commit("c1", "Ada", day(2024, 1, 1), change("a.go", 3, 1)))
	s.ProcessCommit(commit("c2", "Ada", day(2024, 1, 10), change("a.go", 2, 0)))

	rows := s.Results()
	require.Len(t, rows, 10)
	assert.Equal(t, day(2024, 1, 1), rows[0].Day)
	assert.Equal(t, day(2024, 1, 10), rows[9].Day)
	assert.Equal(t, []int{1, 1, 1, 1, 1, 1, 0, 0, 0, 1}, activeSeries(rows))

	assert.Equal(t, 1, rows[0].Commits)
	assert.Equal(t, 3, rows[0].LinesAdded)
	assert.Equal(t, 1, rows[0].LinesDeleted)
	assert.Zero(t, rows[4].Commits)
	assert.Zero(t, rows[4].UniqueAuthors)
}

func TestTrendsUniqueAuthorsPerDay(t *testing.T) {
	s := trendsSession(TrendsOptions{Window: 1, Unit: schema.WindowDays})
	s.ProcessCommit(commit("c1", "Ada", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)))
	s.ProcessCommit(commit("c2", "Ada", day(2024, 1, 1)))
	s.ProcessCommit(commit("c3", "Bob", day(2024, 1, 1)))

	rows := s.Results()
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Commits)
	assert.Equal(t, 2, rows[0].UniqueAuthors)
	assert.Equal(t, 2, rows[0].ActiveAuthors)
}

func TestTrendsMonthWindow(t *testing.T) {
	s := trendsSession(TrendsOptions{Window: 1, Unit: schema.WindowMonths})
	s.ProcessCommit(commit("c1", "Ada", day(2024, 1, 31)))
	s.ProcessCommit(commit("c2", "Bob", day(2024, 3, 1)))

	rows := s.Results()
	byDay := make(map[time.Time]schema.DailyStats, len(rows))
	for _, r := range rows {
		byDay[r.Day] = r
	}
	require.Len(t, rows, 31)
	assert.Equal(t, 1, byDay[day(2024, 2, 29)].ActiveAuthors, "Jan 31 is within a month of Feb 29")
	assert.Equal(t, 1, byDay[day(2024, 3, 1)].ActiveAuthors, "only Bob remains on Mar 1")
}

func TestTrendsExtendToReference(t *testing.T) {
	opts := TrendsOptions{Window: 3, Unit: schema.WindowDays}
	commits := []*schema.Commit{commit("c1", "Ada", day(2025, 6, 10))}

	plain := trendsSession(opts)
	for _, c := range commits {
		plain.ProcessCommit(c)
	}
	assert.Len(t, plain.Results(), 1)

	opts.ExtendToReference = true
	extended := trendsSession(opts)
	for _, c := range commits {
		extended.ProcessCommit(c)
	}
	rows := extended.Results()
	require.Len(t, rows, 6)
	assert.Equal(t, fixedNow, rows[5].Day)
	assert.Equal(t, []int{1, 1, 1, 1, 0, 0}, activeSeries(rows))
}

func TestTrendsEmpty(t *testing.T) {
	s := trendsSession(TrendsOptions{Window: 3, Unit: schema.WindowDays, ExtendToReference: true})
	assert.Empty(t, s.Results())
	assert.NoError(t, s.Finish(context.Background()))
}

func TestTrendsFinishRejectsZeroWindow(t *testing.T) {
	store := newTrendStore()
	s := NewActivityTrends(store, TrendsOptions{Unit: schema.WindowDays}, 10).Start(params("run"))
	s.ProcessCommit(commit("c1", "Ada", day(2024, 1, 1)))
	assert.Error(t, s.Finish(context.Background()))
	assert.Zero(t, store.saves)
}

// naiveActive counts, for one day, the authors whose latest commit on or
// before that day falls inside the window.
func naiveActive(commits []*schema.Commit, d time.Time, opts TrendsOptions) int {
	cutoff := d.AddDate(0, 0, -opts.Window)
	if opts.Unit == schema.WindowMonths {
		cutoff = contract.AddMonths(d, -opts.Window)
	}
	latest := make(map[string]time.Time)
	for _, c := range commits {
		cd := contract.TruncateDay(c.Date)
		if cd.After(d) {
			continue
		}
		if cd.After(latest[c.AuthorName]) {
			latest[c.AuthorName] = cd
		}
	}
	n := 0
	for _, seen := range latest {
		if !seen.Before(cutoff) {
			n++
		}
	}
	return n
}

func TestTrendsMatchesNaiveWindow(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	var commits []*schema.Commit
	start := day(2023, 1, 1)
	for i := range 400 {
		author := fmt.Sprintf("dev%d", rng.IntN(12))
		commits = append(commits, commit(fmt.Sprintf("c%d", i), author, start.AddDate(0, 0, rng.IntN(500))))
	}

	for _, opts := range []TrendsOptions{
		{Window: 7, Unit: schema.WindowDays},
		{Window: 30, Unit: schema.WindowDays},
		{Window: 2, Unit: schema.WindowMonths},
	} {
		t.Run(fmt.Sprintf("%d %s", opts.Window, opts.Unit), func(t *testing.T) {
			s := trendsSession(opts)
			for _, c := range commits {
				s.ProcessCommit(c)
			}
			for _, row := range s.Results() {
				require.Equal(t, naiveActive(commits, row.Day, opts), row.ActiveAuthors, row.Day.Format(time.DateOnly))
			}
		})
	}
}
