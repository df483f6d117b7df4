package client

import (
	"context"
	"fmt"

	"github.com/LotusZhao0521/Library/internal/api"
	"github.com/LotusZhao0521/Library/internal/core/domain"
)

// Borrows implements ports.BorrowAPI.
type Borrows struct {
	gw *api.Gateway
}

func NewBorrows(gw *api.Gateway) *Borrows {
	return &Borrows{gw: gw}
}

// ListMine returns the caller's own borrow records.
func (c *Borrows) ListMine(ctx context.Context) ([]domain.BorrowRecord, error) {
	var recs []domain.BorrowRecord
	if err := c.gw.Get(ctx, "/borrow-records/", &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *Borrows) UpdateNote(ctx context.Context, recordID int64, note string) (*domain.BorrowRecord, error) {
	var rec domain.BorrowRecord
	body := map[string]string{"note": note}
	if err := c.gw.Put(ctx, fmt.Sprintf("/borrow-records/%d/note", recordID), body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
