package types

// User is a person tasks can be assigned to. Users are read-only from the
// engine's perspective: tasks and status changes reference them by ID but
// never own or mutate them.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
