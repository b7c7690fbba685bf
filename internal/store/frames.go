package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BeginRun registers a new run and returns its ID. Run IDs are UUIDv7 so a
// directory of runs sorts by start time.
func (s *Store) BeginRun(ctx context.Context, simName string) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, sim_name, started_at) VALUES (?, ?, ?)
	`, id, simName, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// WriteFrame records one timestep of a run. Idempotent per (run, step):
// duplicate writes are silently ignored so a replayed step never fails.
func (s *Store) WriteFrame(ctx context.Context, runID string, step int, simTime, dt float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO frames (run_id, step, sim_time, dt) VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, step) DO NOTHING
	`, runID, step, simTime, dt)
	if err != nil {
		return fmt.Errorf("write frame %d: %w", step, err)
	}
	return nil
}

// WriteFrameArray attaches an array snapshot to a frame. The data is stored
// as a JSON float array; snapshots are diagnostics, not a wire format.
func (s *Store) WriteFrameArray(ctx context.Context, runID string, step int, entity, array string, data []float64) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", entity, array, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO frame_arrays (run_id, step, entity, array, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, step, entity, array) DO NOTHING
	`, runID, step, entity, array, string(payload))
	if err != nil {
		return fmt.Errorf("write frame array %s/%s: %w", entity, array, err)
	}
	return nil
}

// FrameCount returns the number of frames recorded for a run.
func (s *Store) FrameCount(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM frames WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count frames: %w", err)
	}
	return n, nil
}

// ReadFrameArray returns one recorded array snapshot.
func (s *Store) ReadFrameArray(ctx context.Context, runID string, step int, entity, array string) ([]float64, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM frame_arrays
		WHERE run_id = ? AND step = ? AND entity = ? AND array = ?
	`, runID, step, entity, array).Scan(&payload)
	if err != nil {
		return nil, fmt.Errorf("read frame array %s/%s at step %d: %w", entity, array, step, err)
	}
	var data []float64
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, fmt.Errorf("decode frame array %s/%s: %w", entity, array, err)
	}
	return data, nil
}
