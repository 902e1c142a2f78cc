package postgres

// Schema contains the SQL statements to create the database schema for
// PostgreSQL. All statements use IF NOT EXISTS so the schema can be applied
// idempotently on startup.
const Schema = `
-- Users: read-mostly directory of assignees
CREATE TABLE IF NOT EXISTS users (
    id BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL
);

-- Tasks: one row per tracked work item
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    task_type TEXT NOT NULL,
    current_status INTEGER NOT NULL DEFAULT 1,
    is_closed BOOLEAN NOT NULL DEFAULT FALSE,
    assigned_user_id BIGINT NOT NULL REFERENCES users(id),

    -- Accumulating type-specific payload; the field set is open-ended and
    -- depends on the task type, so it lives in a JSONB document.
    custom_data JSONB,

    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

-- Status history: append-only, owned by the task (cascade delete)
CREATE TABLE IF NOT EXISTS status_changes (
    id BIGSERIAL PRIMARY KEY,
    task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    from_status INTEGER NOT NULL,
    to_status INTEGER NOT NULL,
    assigned_user_id BIGINT NOT NULL REFERENCES users(id),
    changed_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_assigned_user ON tasks(assigned_user_id);
CREATE INDEX IF NOT EXISTS idx_tasks_updated_at ON tasks(updated_at);
CREATE INDEX IF NOT EXISTS idx_status_changes_task ON status_changes(task_id, changed_at);
`
