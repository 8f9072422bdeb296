package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/dadda/internal/ir"
)

// NetlistRecord is a stored netlist: its canonical encoding plus the
// columns indexed for listing.
type NetlistRecord struct {
	Fingerprint string
	Name        string
	Mode        string
	OutputWidth int
	HalfAdders  int
	FullAdders  int
	IRVersion   string
	Canonical   []byte
}

// ReadNetlist returns the netlist stored under fingerprint.
// Returns ErrNotFound if there is none. The canonical encoding is rehashed
// and a row whose content no longer matches its key is an error.
func (s *Store) ReadNetlist(ctx context.Context, fingerprint string) (NetlistRecord, error) {
	var rec NetlistRecord
	var canonical string
	err := s.db.QueryRowContext(ctx, `
		SELECT fingerprint, name, mode, output_width, half_adders, full_adders, ir_version, canonical
		FROM netlists
		WHERE fingerprint = ?
	`, fingerprint).Scan(
		&rec.Fingerprint,
		&rec.Name,
		&rec.Mode,
		&rec.OutputWidth,
		&rec.HalfAdders,
		&rec.FullAdders,
		&rec.IRVersion,
		&canonical,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return NetlistRecord{}, fmt.Errorf("netlist %s: %w", fingerprint, ErrNotFound)
	}
	if err != nil {
		return NetlistRecord{}, fmt.Errorf("read netlist: %w", err)
	}

	rec.Canonical = []byte(canonical)
	if got := ir.FingerprintCanonical(rec.Canonical); got != rec.Fingerprint {
		return NetlistRecord{}, fmt.Errorf("read netlist %s: content hashes to %s", rec.Fingerprint, got)
	}
	return rec, nil
}

// ResolveFingerprint expands a fingerprint prefix to the single stored
// fingerprint it matches.
func (s *Store) ResolveFingerprint(ctx context.Context, prefix string) (string, error) {
	if prefix == "" || strings.ContainsAny(prefix, "%_") {
		return "", fmt.Errorf("invalid fingerprint prefix %q", prefix)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT fingerprint FROM netlists
		WHERE fingerprint LIKE ? || '%'
		ORDER BY fingerprint COLLATE BINARY ASC
		LIMIT 2
	`, prefix)
	if err != nil {
		return "", fmt.Errorf("resolve fingerprint: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return "", fmt.Errorf("resolve fingerprint: %w", err)
		}
		matches = append(matches, fp)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve fingerprint: %w", err)
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("fingerprint %s: %w", prefix, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("fingerprint prefix %s is ambiguous", prefix)
	}
}

// CountNetlists returns the number of distinct stored netlists.
func (s *Store) CountNetlists(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM netlists`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count netlists: %w", err)
	}
	return n, nil
}

// ReadRun returns the run with the given ID, or ErrNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return run, err
}

// RunFilter narrows ListRuns. Zero fields match everything.
type RunFilter struct {
	Name        string
	Fingerprint string

	// Limit keeps only the most recent runs.
	Limit int
}

// ListRuns returns the runs matching filter in log order:
// ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if no runs match.
func (s *Store) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	var where []string
	var args []any
	if filter.Name != "" {
		where = append(where, "name = ?")
		args = append(args, filter.Name)
	}
	if filter.Fingerprint != "" {
		where = append(where, "fingerprint = ?")
		args = append(args, filter.Fingerprint)
	}

	query := "SELECT " + runColumns + " FROM runs"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq DESC, id COLLATE BINARY DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	query = "SELECT * FROM (" + query + ") ORDER BY seq ASC, id COLLATE BINARY ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

const runColumns = "id, seq, request, fingerprint, rejection, checked, failed, engine_version"

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var reqJSON string
	var fp sql.NullString
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&reqJSON,
		&fp,
		&run.Rejection,
		&run.Checked,
		&run.Failed,
		&run.EngineVersion,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.Fingerprint = fp.String
	if run.Request, err = unmarshalRequest(reqJSON); err != nil {
		return Run{}, fmt.Errorf("scan run %s: %w", run.ID, err)
	}
	return run, nil
}
