package domain

import "time"

// BookStatus is the lending state of a single copy.
type BookStatus string

const (
	BookAvailable BookStatus = "available"
	BookBorrowed  BookStatus = "borrowed"
)

// Book is a catalog entry as served by the backend.
type Book struct {
	ID        int64      `json:"id"`
	BookNo    string     `json:"book_no"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	ISBN      string     `json:"isbn,omitempty"`
	Publisher string     `json:"publisher,omitempty"`
	Status    BookStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}
