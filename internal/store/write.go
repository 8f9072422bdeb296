package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/dadda/internal/ir"
	"github.com/roach88/dadda/internal/matrix"
)

// Run is one synthesis request recorded in the log. Exactly one of
// Fingerprint and Rejection is set.
type Run struct {
	ID            string
	Seq           int64
	Request       matrix.Request
	Fingerprint   string
	Rejection     string
	Checked       int
	Failed        int
	EngineVersion string
}

// WriteNetlist stores the canonical encoding of nl and returns its
// fingerprint. Uses ON CONFLICT(fingerprint) DO NOTHING for idempotency:
// created is false when the netlist was already stored.
func (s *Store) WriteNetlist(ctx context.Context, nl *ir.Netlist) (fingerprint string, created bool, err error) {
	canonical, fingerprint, err := marshalNetlist(nl)
	if err != nil {
		return "", false, fmt.Errorf("write netlist: %w", err)
	}

	half, full := nl.CellCount()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO netlists
		(fingerprint, name, mode, output_width, half_adders, full_adders, ir_version, canonical)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`,
		fingerprint,
		nl.Name,
		nl.Mode,
		nl.OutputWidth(),
		half,
		full,
		ir.IRVersion,
		canonical,
	)
	if err != nil {
		return "", false, fmt.Errorf("write netlist: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return "", false, fmt.Errorf("write netlist: %w", err)
	}
	return fingerprint, n == 1, nil
}

// RecordRun appends a run to the log. An empty ID gets a random UUID and
// Seq is always assigned by the store as the next logical clock value.
// A synthesized run must reference a netlist written by WriteNetlist.
//
// Recording a run whose ID already exists is a no-op that returns the
// stored run.
func (s *Store) RecordRun(ctx context.Context, run Run) (Run, error) {
	if (run.Fingerprint == "") == (run.Rejection == "") {
		return Run{}, fmt.Errorf("record run: exactly one of fingerprint and rejection must be set")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.EngineVersion == "" {
		run.EngineVersion = ir.EngineVersion
	}

	reqJSON, err := marshalRequest(run.Request)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("record run: begin: %w", err)
	}
	defer tx.Rollback()

	var existing int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, run.ID).Scan(&existing)
	switch {
	case err == nil:
		if err := tx.Commit(); err != nil {
			return Run{}, fmt.Errorf("record run: commit: %w", err)
		}
		return s.ReadRun(ctx, run.ID)
	case !errors.Is(err, sql.ErrNoRows):
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("record run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, name, request, fingerprint, rejection, checked, failed, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.Request.Name,
		reqJSON,
		nullString(run.Fingerprint),
		run.Rejection,
		run.Checked,
		run.Failed,
		run.EngineVersion,
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("record run: commit: %w", err)
	}
	return run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
