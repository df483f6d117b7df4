package client

import (
	"context"
	"fmt"

	"github.com/LotusZhao0521/Library/internal/api"
	"github.com/LotusZhao0521/Library/internal/core/domain"
	"github.com/LotusZhao0521/Library/internal/core/ports"
)

// Books implements ports.BookAPI.
type Books struct {
	gw *api.Gateway
}

func NewBooks(gw *api.Gateway) *Books {
	return &Books{gw: gw}
}

func (c *Books) List(ctx context.Context) ([]domain.Book, error) {
	var books []domain.Book
	if err := c.gw.Get(ctx, "/books/", &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *Books) Get(ctx context.Context, id int64) (*domain.Book, error) {
	var b domain.Book
	if err := c.gw.Get(ctx, fmt.Sprintf("/books/%d", id), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Books) Create(ctx context.Context, in ports.CreateBookInput) (*domain.Book, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var b domain.Book
	if err := c.gw.Post(ctx, "/books/", in, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Books) Update(ctx context.Context, id int64, in ports.UpdateBookInput) (*domain.Book, error) {
	var b domain.Book
	if err := c.gw.Put(ctx, fmt.Sprintf("/books/%d", id), in, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Books) Delete(ctx context.Context, id int64) error {
	return c.gw.Delete(ctx, fmt.Sprintf("/books/%d", id))
}

func (c *Books) Borrow(ctx context.Context, id int64) (*domain.BorrowRecord, error) {
	var rec domain.BorrowRecord
	if err := c.gw.Post(ctx, fmt.Sprintf("/books/%d/borrow", id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Books) Return(ctx context.Context, id int64) (*domain.BorrowRecord, error) {
	var rec domain.BorrowRecord
	if err := c.gw.Post(ctx, fmt.Sprintf("/books/%d/return", id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Books) Records(ctx context.Context, id int64) ([]domain.BorrowRecord, error) {
	var recs []domain.BorrowRecord
	if err := c.gw.Get(ctx, fmt.Sprintf("/books/%d/records", id), &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
