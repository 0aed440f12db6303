// Package inventory wraps warehouse product writes with the client-side
// quantity invariant: quantities never go negative, regardless of what the
// server would accept.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/logitrack/dispatch/internal/api"
)

// ErrNegativeQuantity is returned when an adjustment would drive a product's
// quantity below zero. No request is sent in that case.
var ErrNegativeQuantity = errors.New("quantity cannot go below zero")

// ProductWriter is the slice of the API client the service needs.
type ProductWriter interface {
	UpdateProduct(ctx context.Context, product api.Product) error
}

// Service validates and applies quantity adjustments.
type Service struct {
	writer ProductWriter
}

// NewService builds a Service over the given writer.
func NewService(writer ProductWriter) *Service {
	return &Service{writer: writer}
}

// AdjustQuantity changes a product's quantity by delta. The adjustment is
// rejected client-side when it would go negative; otherwise exactly one write
// is issued and the updated product is returned once that write resolved.
// The server remains the source of truth and may still reject the update.
func (s *Service) AdjustQuantity(ctx context.Context, product api.Product, delta int) (api.Product, error) {
	next := product.Quantity + delta
	if next < 0 {
		return product, fmt.Errorf("adjust %q by %d from %d: %w", product.Name, delta, product.Quantity, ErrNegativeQuantity)
	}

	updated := product
	updated.Quantity = next
	if err := s.writer.UpdateProduct(ctx, updated); err != nil {
		return product, fmt.Errorf("update product %d: %w", product.ID, err)
	}
	return updated, nil
}
