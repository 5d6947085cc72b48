package sis

import (
	"context"
	"database/sql"
	"fmt"
)

// RosterEntry is one active enrollment row as the registrar reports it.
type RosterEntry struct {
	RollNo string
	Name   string
	Email  string
}

// CountActive returns the number of active enrollments in the registrar roster.
func (p *Pool) CountActive(ctx context.Context) (int, error) {
	var count int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrollments WHERE status = 'active'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return count, nil
}

// FetchRoster returns all active enrollments ordered by roll number.
// Email may be NULL in the registrar schema and comes back empty.
func (p *Pool) FetchRoster(ctx context.Context) ([]RosterEntry, error) {
	query := `
		SELECT roll_no, full_name, email
		FROM enrollments
		WHERE status = 'active'
		ORDER BY roll_no
	`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}
	defer rows.Close()

	var entries []RosterEntry
	for rows.Next() {
		var entry RosterEntry
		var email sql.NullString
		if err := rows.Scan(&entry.RollNo, &entry.Name, &email); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		entry.Email = email.String
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}
