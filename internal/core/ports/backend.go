package ports

import (
	"context"

	"github.com/LotusZhao0521/Library/internal/core/domain"
)

// AuthAPI covers the unauthenticated login exchange.
type AuthAPI interface {
	// Login posts form-encoded credentials and returns the issued token.
	Login(ctx context.Context, username, password string) (domain.Token, error)
}

// ChangePasswordInput is the payload for PUT /users/me/password.
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// CreateUserInput is the payload for POST /users/.
type CreateUserInput struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"required,oneof=admin user"`
}

// UserAPI covers identity and user administration endpoints.
type UserAPI interface {
	Me(ctx context.Context) (*domain.User, error)
	ChangePassword(ctx context.Context, in ChangePasswordInput) (*domain.User, error)
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, userID int64, role string) (*domain.User, error)
}

// CreateBookInput is the payload for POST /books/.
type CreateBookInput struct {
	BookNo    string `json:"book_no"             validate:"required"`
	Title     string `json:"title"               validate:"required"`
	Author    string `json:"author"              validate:"required"`
	ISBN      string `json:"isbn,omitempty"      validate:"omitempty,min=10,max=17"`
	Publisher string `json:"publisher,omitempty"`
}

// UpdateBookInput is the payload for PUT /books/{id}. Nil fields are
// omitted so the backend performs a partial update.
type UpdateBookInput struct {
	BookNo    *string `json:"book_no,omitempty"`
	Title     *string `json:"title,omitempty"`
	Author    *string `json:"author,omitempty"`
	ISBN      *string `json:"isbn,omitempty"`
	Publisher *string `json:"publisher,omitempty"`
}

// BookAPI covers the catalog and borrowing endpoints.
type BookAPI interface {
	List(ctx context.Context) ([]domain.Book, error)
	Get(ctx context.Context, id int64) (*domain.Book, error)
	Create(ctx context.Context, in CreateBookInput) (*domain.Book, error)
	Update(ctx context.Context, id int64, in UpdateBookInput) (*domain.Book, error)
	Delete(ctx context.Context, id int64) error
	Borrow(ctx context.Context, id int64) (*domain.BorrowRecord, error)
	Return(ctx context.Context, id int64) (*domain.BorrowRecord, error)
	Records(ctx context.Context, id int64) ([]domain.BorrowRecord, error)
}

// BorrowAPI covers the caller's own borrow records.
type BorrowAPI interface {
	ListMine(ctx context.Context) ([]domain.BorrowRecord, error)
	UpdateNote(ctx context.Context, recordID int64, note string) (*domain.BorrowRecord, error)
}
