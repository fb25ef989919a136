package domain

import "time"

// User is a directory entry. The engine stores and reasons about ids and
// emails; display names exist only for presentation.
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}
