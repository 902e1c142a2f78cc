// Package sqlite provides the SQLite implementation of storage.Store.
// It is the default backend: a single-file, CGO-free database suitable for
// local and single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scrypster/taskflow/internal/storage"
	"github.com/scrypster/taskflow/pkg/types"
)

// Store implements storage.Store using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dsn (a file path or ":memory:"),
// configures WAL mode, and applies the schema.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Using a single open
	// connection serialises writes and avoids SQLITE_BUSY errors under
	// concurrent load. WAL mode still lets readers proceed.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to enable WAL mode: %w", err)
	}

	// Wait instead of failing immediately when the connection is held by
	// another goroutine.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to set busy timeout: %w", err)
	}

	// Referential integrity: tasks reference users, history cascades with
	// its task.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// GetDB returns the underlying database connection.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateTask persists a new task.
func (s *Store) CreateTask(ctx context.Context, task *types.Task) error {
	if task == nil {
		return storage.ErrInvalidInput
	}
	if task.ID == "" {
		return fmt.Errorf("%w: task ID is required", storage.ErrInvalidInput)
	}

	customData, err := marshalCustomData(task.CustomData)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, title, task_type, current_status, is_closed,
			assigned_user_id, custom_data, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		task.ID,
		task.Title,
		task.TaskType,
		task.CurrentStatus,
		boolToInt(task.IsClosed),
		task.AssignedUserID,
		customData,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: failed to create task: %w", err)
	}
	return nil
}

// taskColumns is the select list shared by every task read. The user name is
// resolved with a join so callers never do an N+1 lookup.
const taskColumns = `
	t.id, t.title, t.task_type, t.current_status, t.is_closed,
	t.assigned_user_id, u.name, t.custom_data, t.created_at, t.updated_at
`

// GetTask retrieves a task with its status history.
func (s *Store) GetTask(ctx context.Context, id string) (*types.Task, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: task ID is required", storage.ErrInvalidInput)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		LEFT JOIN users u ON u.id = t.assigned_user_id
		WHERE t.id = ?
	`, id)

	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to get task: %w", err)
	}

	if err := s.loadHistory(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks retrieves all tasks, most recently updated first.
func (s *Store) ListTasks(ctx context.Context) ([]*types.Task, error) {
	return s.queryTasks(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		LEFT JOIN users u ON u.id = t.assigned_user_id
		ORDER BY t.updated_at DESC, t.id
	`)
}

// ListUserTasks retrieves the tasks assigned to userID, most recently
// updated first.
func (s *Store) ListUserTasks(ctx context.Context, userID int64) ([]*types.Task, error) {
	return s.queryTasks(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		LEFT JOIN users u ON u.id = t.assigned_user_id
		WHERE t.assigned_user_id = ?
		ORDER BY t.updated_at DESC, t.id
	`, userID)
}

// SaveTransition persists the mutated task and appends the history record in
// one transaction.
func (s *Store) SaveTransition(ctx context.Context, task *types.Task, change *types.StatusChange) error {
	if task == nil {
		return storage.ErrInvalidInput
	}

	customData, err := marshalCustomData(task.CustomData)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE tasks
		SET current_status = ?, is_closed = ?, assigned_user_id = ?,
		    custom_data = ?, updated_at = ?
		WHERE id = ?
	`,
		task.CurrentStatus,
		boolToInt(task.IsClosed),
		task.AssignedUserID,
		customData,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: failed to update task: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("sqlite: failed to check update result: %w", err)
	} else if n == 0 {
		return storage.ErrNotFound
	}

	if change != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO status_changes (task_id, from_status, to_status, assigned_user_id, changed_at)
			VALUES (?, ?, ?, ?, ?)
		`,
			change.TaskID,
			change.FromStatus,
			change.ToStatus,
			change.AssignedUserID,
			change.ChangedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlite: failed to append status change: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: failed to commit transition: %w", err)
	}
	return nil
}

// CountTasks returns the total number of tasks.
func (s *Store) CountTasks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: failed to count tasks: %w", err)
	}
	return n, nil
}

// CreateUser persists a user with upsert semantics.
func (s *Store) CreateUser(ctx context.Context, user *types.User) error {
	if user == nil {
		return storage.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email
	`, user.ID, user.Name, user.Email)
	if err != nil {
		return fmt.Errorf("sqlite: failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id int64) (*types.User, error) {
	var user types.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email FROM users WHERE id = ?", id,
	).Scan(&user.ID, &user.Name, &user.Email)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to get user: %w", err)
	}
	return &user, nil
}

// ListUsers retrieves all users ordered by ID.
func (s *Store) ListUsers(ctx context.Context) ([]*types.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, email FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*types.User, 0)
	for rows.Next() {
		var user types.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan user: %w", err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate users: %w", err)
	}
	return users, nil
}

// CountUsers returns the total number of users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: failed to count users: %w", err)
	}
	return n, nil
}

// queryTasks runs a task select and loads each result's history.
func (s *Store) queryTasks(ctx context.Context, query string, args ...interface{}) ([]*types.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*types.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate tasks: %w", err)
	}

	for _, task := range tasks {
		if err := s.loadHistory(ctx, task); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// loadHistory populates task.StatusHistory ordered by changed_at ascending.
func (s *Store) loadHistory(ctx context.Context, task *types.Task) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sc.task_id, sc.from_status, sc.to_status, sc.assigned_user_id, u.name, sc.changed_at
		FROM status_changes sc
		LEFT JOIN users u ON u.id = sc.assigned_user_id
		WHERE sc.task_id = ?
		ORDER BY sc.changed_at, sc.id
	`, task.ID)
	if err != nil {
		return fmt.Errorf("sqlite: failed to load status history: %w", err)
	}
	defer rows.Close()

	history := make([]types.StatusChange, 0)
	for rows.Next() {
		var change types.StatusChange
		var userName sql.NullString
		if err := rows.Scan(
			&change.TaskID,
			&change.FromStatus,
			&change.ToStatus,
			&change.AssignedUserID,
			&userName,
			&change.ChangedAt,
		); err != nil {
			return fmt.Errorf("sqlite: failed to scan status change: %w", err)
		}
		if userName.Valid {
			change.AssignedUserName = userName.String
		}
		history = append(history, change)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: failed to iterate status history: %w", err)
	}

	task.StatusHistory = history
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTask reads one task row (taskColumns order) into a Task.
func scanTask(row rowScanner) (*types.Task, error) {
	var task types.Task
	var isClosed int
	var userName, customDataJSON sql.NullString

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.TaskType,
		&task.CurrentStatus,
		&isClosed,
		&task.AssignedUserID,
		&userName,
		&customDataJSON,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.IsClosed = isClosed != 0
	if userName.Valid {
		task.AssignedUserName = userName.String
	}

	task.CustomData = types.CustomData{}
	if customDataJSON.Valid && customDataJSON.String != "" {
		if err := json.Unmarshal([]byte(customDataJSON.String), &task.CustomData); err != nil {
			return nil, fmt.Errorf("failed to unmarshal custom data: %w", err)
		}
	}
	return &task, nil
}

// marshalCustomData serialises custom data for storage. A nil map is stored
// as an empty JSON object so reads always see a usable map.
func marshalCustomData(data types.CustomData) (string, error) {
	if data == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal custom data: %w", err)
	}
	return string(raw), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
