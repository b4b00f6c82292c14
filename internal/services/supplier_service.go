package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-quote-backend/internal/domain"
	"github.com/tbourn/go-quote-backend/internal/repo"
)

// supplierIDRE bounds supplier identifiers to URL-safe tokens.
var supplierIDRE = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// SupplierService maintains the supplier directory used for invitations and
// report name resolution.
type SupplierService struct {
	DB *gorm.DB
}

// Create registers a supplier.
func (s *SupplierService) Create(ctx context.Context, id, name string, email *string) (*domain.Supplier, error) {
	id = strings.TrimSpace(id)
	name = whitespaceRE.ReplaceAllString(strings.TrimSpace(name), " ")
	if !supplierIDRE.MatchString(id) {
		return nil, fmt.Errorf("%w: id must be 1-64 characters of letters, digits, '.', '_' or '-'", ErrInvalidInput)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	sup := &domain.Supplier{ID: id, Name: name, Email: trimmedOrNil(email)}
	if err := repo.CreateSupplier(ctx, s.DB, sup); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateSupplier
		}
		return nil, err
	}
	return sup, nil
}

// Get returns a supplier or ErrSupplierNotFound.
func (s *SupplierService) Get(ctx context.Context, id string) (*domain.Supplier, error) {
	sup, err := repo.GetSupplier(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSupplierNotFound
		}
		return nil, err
	}
	return sup, nil
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)
