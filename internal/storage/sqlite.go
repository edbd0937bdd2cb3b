package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"priorityflow/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; an existing database with another version is rejected.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an incompatible
// version of the planner.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// SQLiteStorage persists tasks in a single SQLite database file. List-valued
// fields are stored as JSON text columns.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// OpenSQLite initializes or connects to the planner database at path and
// applies the schema.
func OpenSQLite(path string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStorage{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schemaVersion)
	}

	return nil
}

const taskColumns = `id, title, description, status, category, due_date,
	required_info, received_info, business_impact, effort, dependencies,
	priority_label, priority_score, tags, last_updated`

func (s *SQLiteStorage) Upsert(task *domain.Task) (int64, error) {
	required, received, deps, tags, err := encodeLists(task)
	if err != nil {
		return 0, err
	}

	if task.ID == domain.NewTaskID || task.ID == 0 {
		res, err := s.db.Exec(
			`INSERT INTO tasks (
				title, description, status, category, due_date,
				required_info, received_info, business_impact, effort,
				dependencies, priority_label, priority_score, tags, last_updated
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			task.Title, task.Description, string(task.Status), string(task.Category),
			nullableString(task.DueDate), required, received,
			string(task.BusinessImpact), task.Effort, deps,
			string(task.PriorityLabel), task.PriorityScore, tags,
			nullableString(task.LastUpdated),
		)
		if err != nil {
			return 0, fmt.Errorf("insert task: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("last insert id: %w", err)
		}
		task.ID = id
		return id, nil
	}

	_, err = s.db.Exec(
		`INSERT INTO tasks (
			id, title, description, status, category, due_date,
			required_info, received_info, business_impact, effort,
			dependencies, priority_label, priority_score, tags, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			status = excluded.status,
			category = excluded.category,
			due_date = excluded.due_date,
			required_info = excluded.required_info,
			received_info = excluded.received_info,
			business_impact = excluded.business_impact,
			effort = excluded.effort,
			dependencies = excluded.dependencies,
			priority_label = excluded.priority_label,
			priority_score = excluded.priority_score,
			tags = excluded.tags,
			last_updated = excluded.last_updated`,
		task.ID, task.Title, task.Description, string(task.Status), string(task.Category),
		nullableString(task.DueDate), required, received,
		string(task.BusinessImpact), task.Effort, deps,
		string(task.PriorityLabel), task.PriorityScore, tags,
		nullableString(task.LastUpdated),
	)
	if err != nil {
		return 0, fmt.Errorf("upsert task %d: %w", task.ID, err)
	}
	return task.ID, nil
}

func (s *SQLiteStorage) Get(id int64) (*domain.Task, error) {
	row := s.db.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return task, nil
}

func (s *SQLiteStorage) List() ([]*domain.Task, error) {
	rows, err := s.db.Query("SELECT " + taskColumns + " FROM tasks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (s *SQLiteStorage) Delete(id int64) error {
	res, err := s.db.Exec("DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task                            domain.Task
		status, category, impact, label string
		dueDate, lastUpdated            sql.NullString
		required, received, deps, tags  string
	)
	err := row.Scan(
		&task.ID, &task.Title, &task.Description, &status, &category, &dueDate,
		&required, &received, &impact, &task.Effort, &deps,
		&label, &task.PriorityScore, &tags, &lastUpdated,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.ParseStatus(status)
	task.Category = domain.ParseCategory(category)
	task.BusinessImpact = domain.ParseImpact(impact)
	task.PriorityLabel = domain.ParseLabel(label)
	task.DueDate = dueDate.String
	task.LastUpdated = lastUpdated.String
	task.RequiredInfo = decodeStringList(required)
	task.ReceivedInfo = decodeStringList(received)
	task.Dependencies = decodeIDList(deps)
	task.Tags = decodeStringList(tags)
	return &task, nil
}

func encodeLists(task *domain.Task) (required, received, deps, tags string, err error) {
	if required, err = encodeJSON(task.RequiredInfo); err != nil {
		return
	}
	if received, err = encodeJSON(task.ReceivedInfo); err != nil {
		return
	}
	if deps, err = encodeJSON(task.Dependencies); err != nil {
		return
	}
	tags, err = encodeJSON(task.Tags)
	return
}

func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode list column: %w", err)
	}
	if string(data) == "null" {
		return "[]", nil
	}
	return string(data), nil
}

// decodeStringList tolerates malformed column data; a broken value degrades to
// an empty list the same way the engine degrades malformed inputs.
func decodeStringList(raw string) []string {
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return []string{}
	}
	return items
}

func decodeIDList(raw string) []int64 {
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil || ids == nil {
		return []int64{}
	}
	return ids
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
