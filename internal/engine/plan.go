package engine

import (
	"context"
	"fmt"

	"study-tracker/internal/models"
)

// ReplaceAll swaps the whole session set atomically. A goal of -1 keeps the
// current weekly goal. Used by import and by local plan regeneration; the
// remote collection, when configured, receives the new set as one batched
// write.
func (e *Engine) ReplaceAll(sessions []models.Session, goal int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.Replace(sessions)
	if goal >= 0 {
		e.weeklyGoal = goal
		if err := e.cache.SetWeeklyGoal(goal); err != nil {
			return &PersistenceError{Op: "store weekly goal", Err: err}
		}
	}
	snap := e.store.Snapshot()
	if err := e.cache.ReplaceSessions(snap); err != nil {
		return &PersistenceError{Op: "rewrite cache", Err: err}
	}
	e.pushRemote("bulk upload", func(ctx context.Context) error {
		return e.remote.SetAll(ctx, snap)
	})
	return nil
}

// ImportPlan parses and installs an exported payload. Validation happens
// before anything is touched, so a malformed payload leaves the session
// set and the weekly goal exactly as they were.
func (e *Engine) ImportPlan(data []byte) error {
	plan, err := models.DecodePlan(data)
	if err != nil {
		return err
	}
	return e.ReplaceAll(plan.Sessions, plan.WeeklyGoal)
}

// ExportPlan serializes the current session set and weekly goal, returning
// the payload and the download file name (plan-estudio-<date>.json).
func (e *Engine) ExportPlan() ([]byte, string, error) {
	e.mu.Lock()
	plan := &models.Plan{Sessions: e.store.Snapshot(), WeeklyGoal: e.weeklyGoal}
	today := e.now().Format("2006-01-02")
	e.mu.Unlock()

	data, err := models.EncodePlan(plan)
	if err != nil {
		return nil, "", err
	}
	return data, fmt.Sprintf("plan-estudio-%s.json", today), nil
}

// UploadAll pushes the given session set to the remote collection as one
// batched write, without touching local state. Callers confirm destructive
// intent first: the remote set is overwritten wholesale, and the
// subscription will bring the result back down.
func (e *Engine) UploadAll(sessions []models.Session) error {
	if e.remote == nil {
		return &PersistenceError{Op: "bulk upload", Err: errNoRemote}
	}
	e.pushRemote("bulk upload", func(ctx context.Context) error {
		return e.remote.SetAll(ctx, sessions)
	})
	return nil
}

// ClearRemote deletes the identity's whole remote collection. The
// subscription will deliver the resulting empty set.
func (e *Engine) ClearRemote() error {
	if e.remote == nil {
		return &PersistenceError{Op: "clear remote", Err: errNoRemote}
	}
	e.pushRemote("clear remote", func(ctx context.Context) error {
		return e.remote.Clear(ctx)
	})
	return nil
}

// HasRemote reports whether a remote store is configured.
func (e *Engine) HasRemote() bool { return e.remote != nil }
