package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mbenders/weekly-listens/internal/analysis"
)

// ReportSummary identifies one stored weekly report.
type ReportSummary struct {
	User       string
	WeekEnding time.Time
	Created    time.Time
}

// SaveReport upserts the report for (user, weekEnding) in a single
// statement, so a failed write leaves any previous report intact.
func (s *Store) SaveReport(ctx context.Context, user string, weekEnding time.Time, report *analysis.WeeklyReport) error {
	encoded, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report for %q: %w", user, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO WeeklyReport (user, week_ending, report, created)
		VALUES (?, ?, ?, ?)`,
		user, weekEnding.Unix(), string(encoded), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("saving report for %q: %w", user, err)
	}
	return nil
}

// GetReport loads the report for (user, weekEnding). A missing report
// is an error naming the key.
func (s *Store) GetReport(user string, weekEnding time.Time) (*analysis.WeeklyReport, error) {
	row := s.db.QueryRow("SELECT report FROM WeeklyReport WHERE user = ? AND week_ending = ?",
		user, weekEnding.Unix())
	var encoded string
	if err := row.Scan(&encoded); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no report for %q week ending %s", user, weekEnding.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("reading report for %q: %w", user, err)
	}

	var report analysis.WeeklyReport
	if err := json.Unmarshal([]byte(encoded), &report); err != nil {
		return nil, fmt.Errorf("decoding report for %q: %w", user, err)
	}
	return &report, nil
}

// LatestReport loads the user's most recent report by week ending.
func (s *Store) LatestReport(user string) (*analysis.WeeklyReport, error) {
	row := s.db.QueryRow(`
		SELECT week_ending FROM WeeklyReport
		WHERE user = ?
		ORDER BY week_ending DESC
		LIMIT 1`, user)
	var weekEnding int64
	if err := row.Scan(&weekEnding); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no reports for %q", user)
		}
		return nil, fmt.Errorf("finding latest report for %q: %w", user, err)
	}
	return s.GetReport(user, time.Unix(weekEnding, 0).UTC())
}

func (s *Store) ListReports(user string) ([]ReportSummary, error) {
	rows, err := s.db.Query(`
		SELECT user, week_ending, created FROM WeeklyReport
		WHERE user = ?
		ORDER BY week_ending DESC`, user)
	if err != nil {
		return nil, fmt.Errorf("listing reports for %q: %w", user, err)
	}
	defer rows.Close()

	var summaries []ReportSummary
	for rows.Next() {
		var (
			summary    ReportSummary
			weekEnding int64
			created    int64
		)
		if err := rows.Scan(&summary.User, &weekEnding, &created); err != nil {
			return nil, fmt.Errorf("scanning report summary: %w", err)
		}
		summary.WeekEnding = time.Unix(weekEnding, 0).UTC()
		summary.Created = time.Unix(created, 0).UTC()
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// DeleteReport removes the report for (user, weekEnding) and reports
// whether one existed.
func (s *Store) DeleteReport(user string, weekEnding time.Time) (bool, error) {
	result, err := s.db.Exec("DELETE FROM WeeklyReport WHERE user = ? AND week_ending = ?",
		user, weekEnding.Unix())
	if err != nil {
		return false, fmt.Errorf("deleting report for %q: %w", user, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting report for %q: %w", user, err)
	}
	return affected > 0, nil
}
