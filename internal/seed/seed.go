// Package seed loads optional demo data into an empty store so a fresh
// deployment has users to assign and tasks to look at. Seeding is
// idempotent: users are only created when the user table is empty, demo
// tasks only when no tasks exist.
package seed

import (
	"context"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scrypster/taskflow/internal/service"
	"github.com/scrypster/taskflow/internal/storage"
	"github.com/scrypster/taskflow/pkg/types"
)

// UserSeed is a user entry in a seed file.
type UserSeed struct {
	ID    int64  `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// TaskSeed is a demo task entry in a seed file. Tasks are created
// through the normal service path, so they start at status 1, open.
type TaskSeed struct {
	TaskType       string `yaml:"taskType"`
	Title          string `yaml:"title"`
	AssignedUserID int64  `yaml:"assignedUserId"`
}

// Data is the full seed file contents.
type Data struct {
	Users []UserSeed `yaml:"users"`
	Tasks []TaskSeed `yaml:"tasks"`
}

// Default returns the built-in demo data set used when no seed file is
// configured.
func Default() *Data {
	return &Data{
		Users: []UserSeed{
			{ID: 1, Name: "Alice Johnson", Email: "alice@example.com"},
			{ID: 2, Name: "Bob Smith", Email: "bob@example.com"},
			{ID: 3, Name: "Charlie Brown", Email: "charlie@example.com"},
			{ID: 4, Name: "Diana Prince", Email: "diana@example.com"},
		},
		Tasks: []TaskSeed{
			{TaskType: "Procurement", Title: "Purchase office laptops", AssignedUserID: 1},
			{TaskType: "Procurement", Title: "Purchase monitors", AssignedUserID: 2},
			{TaskType: "Procurement", Title: "Purchase office furniture", AssignedUserID: 3},
			{TaskType: "Development", Title: "Build REST API", AssignedUserID: 1},
			{TaskType: "Development", Title: "Implement authentication", AssignedUserID: 2},
			{TaskType: "Development", Title: "Build dashboard", AssignedUserID: 4},
		},
	}
}

// Load reads a seed file. An empty path returns the built-in defaults.
func Load(path string) (*Data, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("seed: parse %s: %w", path, err)
	}
	return &data, nil
}

// Apply seeds the store. Users are upserted only when the store has none;
// demo tasks are created through tasks (the normal service path) only when
// the store has no tasks, so restarting never duplicates them.
func Apply(ctx context.Context, data *Data, store storage.Store, tasks *service.TaskService) error {
	userCount, err := store.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("seed: count users: %w", err)
	}
	if userCount == 0 {
		for _, u := range data.Users {
			user := &types.User{ID: u.ID, Name: u.Name, Email: u.Email}
			if err := store.CreateUser(ctx, user); err != nil {
				return fmt.Errorf("seed: create user %d: %w", u.ID, err)
			}
		}
		log.Printf("seed: created %d users", len(data.Users))
	}

	taskCount, err := store.CountTasks(ctx)
	if err != nil {
		return fmt.Errorf("seed: count tasks: %w", err)
	}
	if taskCount == 0 && len(data.Tasks) > 0 {
		for _, t := range data.Tasks {
			if _, err := tasks.CreateTask(ctx, t.TaskType, t.Title, t.AssignedUserID); err != nil {
				return fmt.Errorf("seed: create task %q: %w", t.Title, err)
			}
		}
		log.Printf("seed: created %d demo tasks", len(data.Tasks))
	}
	return nil
}
