package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/flowir/internal/ir"
)

// ErrNotFound is returned when a snapshot ID is not in the store.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is a persisted canonical graph snapshot.
type Snapshot struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	IRVersion string `json:"ir_version" yaml:"ir_version"`
	Seq       int64  `json:"seq" yaml:"seq"`
	Body      string `json:"-" yaml:"-"` // canonical JSON
}

// OperatorRecord locates one operator inside a persisted snapshot.
type OperatorRecord struct {
	SnapshotID   string `json:"snapshot_id" yaml:"snapshot_id"`
	SnapshotName string `json:"snapshot_name" yaml:"snapshot_name"`
	OperatorID   uint32 `json:"operator_id" yaml:"operator_id"`
	Name         string `json:"name" yaml:"name"`
	Fingerprint  string `json:"fingerprint" yaml:"fingerprint"`
	Primitive    bool   `json:"primitive" yaml:"primitive"`
}

// SaveSnapshot persists the canonical snapshot of irctx under name.
//
// The snapshot ID is ir.SnapshotHash(irctx). Uses ON CONFLICT(id) DO NOTHING
// for idempotency: saving identical content again returns the existing ID
// with inserted=false and keeps the original name.
func (s *Store) SaveSnapshot(ctx context.Context, name string, irctx *ir.Context) (id string, inserted bool, err error) {
	body, err := ir.MarshalCanonical(ir.Snapshot(irctx))
	if err != nil {
		return "", false, fmt.Errorf("save snapshot: %w", err)
	}
	id, err = ir.SnapshotHash(irctx)
	if err != nil {
		return "", false, fmt.Errorf("save snapshot: %w", err)
	}

	type operatorRow struct {
		id          ir.OperatorID
		name        string
		fingerprint string
		primitive   bool
	}
	var operators []operatorRow
	for _, opID := range irctx.Operators() {
		fp, err := ir.Fingerprint(irctx, opID)
		if err != nil {
			return "", false, fmt.Errorf("save snapshot: %w", err)
		}
		op := irctx.Operator(opID)
		operators = append(operators, operatorRow{opID, op.Name(), fp, op.IsPrimitive()})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("save snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, name, ir_version, body, seq)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM snapshots))
		ON CONFLICT(id) DO NOTHING
	`, id, name, ir.IRVersion, string(body))
	if err != nil {
		return "", false, fmt.Errorf("save snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", false, fmt.Errorf("save snapshot: %w", err)
	}
	if n == 0 {
		return id, false, tx.Commit()
	}

	for _, op := range operators {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO snapshot_operators (snapshot_id, operator_id, name, fingerprint, primitive)
			VALUES (?, ?, ?, ?, ?)
		`, id, uint32(op.id), op.name, op.fingerprint, op.primitive)
		if err != nil {
			return "", false, fmt.Errorf("save snapshot operator %q: %w", op.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("save snapshot: commit: %w", err)
	}
	return id, true, nil
}

// ReadSnapshot returns the snapshot with the given ID, or ErrNotFound.
func (s *Store) ReadSnapshot(ctx context.Context, id string) (Snapshot, error) {
	var snap Snapshot
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, ir_version, body, seq
		FROM snapshots
		WHERE id = ?
	`, id).Scan(&snap.ID, &snap.Name, &snap.IRVersion, &snap.Body, &snap.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("read snapshot %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot %s: %w", id, err)
	}
	return snap, nil
}

// ListSnapshots returns all snapshots without bodies, in save order.
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, ir_version, seq
		FROM snapshots
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []Snapshot{}
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Name, &snap.IRVersion, &snap.Seq); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snapshots, nil
}

// FindOperators returns every persisted operator with the given name,
// ordered by snapshot save order then operator ID.
func (s *Store) FindOperators(ctx context.Context, name string) ([]OperatorRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.snapshot_id, s.name, o.operator_id, o.name, o.fingerprint, o.primitive
		FROM snapshot_operators o
		JOIN snapshots s ON o.snapshot_id = s.id
		WHERE o.name = ?
		ORDER BY s.seq ASC, o.operator_id ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query operators: %w", err)
	}
	defer rows.Close()

	records := []OperatorRecord{}
	for rows.Next() {
		var rec OperatorRecord
		if err := rows.Scan(&rec.SnapshotID, &rec.SnapshotName, &rec.OperatorID, &rec.Name, &rec.Fingerprint, &rec.Primitive); err != nil {
			return nil, fmt.Errorf("scan operator: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operators: %w", err)
	}
	return records, nil
}
