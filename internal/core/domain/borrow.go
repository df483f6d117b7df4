package domain

import "time"

// BorrowRecord tracks one borrow/return cycle of a book. ReturnTime is
// nil while the book is still out.
type BorrowRecord struct {
	ID         int64      `json:"id"`
	BookID     int64      `json:"book_id"`
	UserID     int64      `json:"user_id"`
	BorrowTime time.Time  `json:"borrow_time"`
	ReturnTime *time.Time `json:"return_time,omitempty"`
	Note       string     `json:"note,omitempty"`
	Book       *Book      `json:"book,omitempty"`
	User       *User      `json:"user,omitempty"`
}
