package sqlite

// Schema contains the SQL statements to create the database schema.
// All statements are idempotent so the schema can be applied on every open.
const Schema = `
-- Users: read-mostly directory of assignees
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL
);

-- Tasks: one row per tracked work item
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    task_type TEXT NOT NULL,
    current_status INTEGER NOT NULL DEFAULT 1,
    is_closed INTEGER NOT NULL DEFAULT 0,
    assigned_user_id INTEGER NOT NULL REFERENCES users(id),

    -- Accumulating type-specific payload, stored as a JSON document since
    -- the field set is open-ended and depends on the task type.
    custom_data TEXT,

    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

-- Status history: append-only, owned by the task (cascade delete)
CREATE TABLE IF NOT EXISTS status_changes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    from_status INTEGER NOT NULL,
    to_status INTEGER NOT NULL,
    assigned_user_id INTEGER NOT NULL REFERENCES users(id),
    changed_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_assigned_user ON tasks(assigned_user_id);
CREATE INDEX IF NOT EXISTS idx_tasks_updated_at ON tasks(updated_at);
CREATE INDEX IF NOT EXISTS idx_status_changes_task ON status_changes(task_id, changed_at);
`
