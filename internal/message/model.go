package message

import "time"

// Board is a named partition of public posts.
type Board struct {
	ID          int
	Name        string
	Description string
}

// Post is a single message on a board.
type Post struct {
	ID        int
	BoardID   int
	UserID    int
	Username  string // joined from users table
	Body      string
	Timestamp time.Time
}

// GeneralBoard is the board every session starts on.
const GeneralBoard = "General"

// RecentLimit caps how many posts LOOK returns.
const RecentLimit = 10
