package domain

// User identifies the authenticated caller. Email rides along because the
// task-categories endpoint attributes link writes to it.
type User struct {
	ID    string
	Email string
}
