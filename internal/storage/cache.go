package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"study-tracker/internal/models"
	"study-tracker/internal/timer"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// Settings keys.
const (
	keyWeeklyGoal = "weekly_goal"
	keyTimerState = "timer_state"
)

// Cache is the durable local copy of the tracker's state: the full session
// list, the weekly goal, and the active timer. It is read once at startup
// and rewritten on every change, so it can serve alone when no remote store
// is configured.
type Cache struct {
	conn *sql.DB
}

// NewCache opens the sqlite file at path and runs migrations.
func NewCache(path string) (*Cache, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	c := &Cache{conn: conn}
	if err := c.migrate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Cache) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			topic TEXT NOT NULL,
			status TEXT NOT NULL,
			real_minutes INTEGER NOT NULL DEFAULT 0,
			note TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := c.conn.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

// LoadSessions reads the cached session list ordered by date ascending.
func (c *Cache) LoadSessions() ([]models.Session, error) {
	rows, err := c.conn.Query(
		"SELECT id, date, start_time, end_time, topic, status, real_minutes, note FROM sessions ORDER BY date ASC, id ASC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.Date, &s.Start, &s.End, &s.Topic, &s.Status, &s.RealMinutes, &s.Note); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// UpsertSession writes a single session row.
func (c *Cache) UpsertSession(s models.Session) error {
	_, err := c.conn.Exec(`
		INSERT INTO sessions (id, date, start_time, end_time, topic, status, real_minutes, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			topic = excluded.topic,
			status = excluded.status,
			real_minutes = excluded.real_minutes,
			note = excluded.note
	`, s.ID, s.Date, s.Start, s.End, s.Topic, s.Status, s.RealMinutes, s.Note)
	return err
}

// DeleteSession removes a session row by id.
func (c *Cache) DeleteSession(id string) error {
	_, err := c.conn.Exec("DELETE FROM sessions WHERE id = ?", id)
	return err
}

// ReplaceSessions rewrites the whole session list in one transaction, so a
// crash mid-write never leaves a half-replaced cache.
func (c *Cache) ReplaceSessions(sessions []models.Session) error {
	tx, err := c.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sessions"); err != nil {
		return err
	}
	stmt, err := tx.Prepare(
		"INSERT INTO sessions (id, date, start_time, end_time, topic, status, real_minutes, note) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range sessions {
		if _, err := stmt.Exec(s.ID, s.Date, s.Start, s.End, s.Topic, s.Status, s.RealMinutes, s.Note); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// WeeklyGoal reads the stored weekly goal in minutes; missing means 0.
func (c *Cache) WeeklyGoal() (int, error) {
	var value string
	err := c.conn.QueryRow("SELECT value FROM settings WHERE key = ?", keyWeeklyGoal).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var goal int
	if _, err := fmt.Sscanf(value, "%d", &goal); err != nil {
		return 0, fmt.Errorf("corrupt weekly goal %q: %w", value, err)
	}
	return goal, nil
}

// SetWeeklyGoal stores the weekly goal in minutes.
func (c *Cache) SetWeeklyGoal(minutes int) error {
	return c.setSetting(keyWeeklyGoal, fmt.Sprintf("%d", minutes))
}

// TimerState reads the persisted timer snapshot; a missing row means idle.
func (c *Cache) TimerState() (timer.State, error) {
	var value string
	err := c.conn.QueryRow("SELECT value FROM settings WHERE key = ?", keyTimerState).Scan(&value)
	if err == sql.ErrNoRows {
		return timer.State{}, nil
	}
	if err != nil {
		return timer.State{}, err
	}
	var st timer.State
	if err := json.Unmarshal([]byte(value), &st); err != nil {
		return timer.State{}, fmt.Errorf("corrupt timer state: %w", err)
	}
	return st, nil
}

// SetTimerState persists the timer snapshot so a stopwatch survives a
// process restart.
func (c *Cache) SetTimerState(st timer.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return c.setSetting(keyTimerState, string(data))
}

func (c *Cache) setSetting(key, value string) error {
	_, err := c.conn.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.conn.Close()
}
