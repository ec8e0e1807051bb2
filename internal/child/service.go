package child

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hadhin/internal/model"
)

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, c *model.Child, tokenFor func(id int64) string) error
	GetByID(ctx context.Context, id int64) (*model.Child, error)
	ListByParent(ctx context.Context, parentID int64) ([]model.Child, error)
	ListPending(ctx context.Context) ([]model.Child, error)
	ListActive(ctx context.Context) ([]model.Child, error)
	SetApproved(ctx context.Context, id int64) error
	Deactivate(ctx context.Context, id int64) error
	Update(ctx context.Context, id int64, name string, birthdate *time.Time, photoURL string) error
}

// Service implements the child lifecycle: created pending approval, approved
// by an admin, or rejected (deactivated, terminal for scanning).
type Service struct {
	store Store
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ScanToken builds the unique per-child scan token.
func ScanToken(childID int64) string {
	return fmt.Sprintf("CHILD_%d_%s", childID, uuid.NewString()[:8])
}

// Add registers a child for a parent, pending admin approval.
func (s *Service) Add(ctx context.Context, parentID int64, name, birthdate, photoURL string) (*model.Child, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: child name is required", model.ErrValidation)
	}
	var bd *time.Time
	if birthdate != "" {
		parsed, err := time.Parse("2006-01-02", birthdate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date format, use YYYY-MM-DD", model.ErrValidation)
		}
		bd = &parsed
	}
	c := &model.Child{
		Name:      name,
		Birthdate: bd,
		ParentID:  parentID,
		PhotoURL:  photoURL,
		IsActive:  true,
	}
	if err := s.store.Insert(ctx, c, ScanToken); err != nil {
		return nil, err
	}
	return c, nil
}

// MyChildren lists a parent's active children.
func (s *Service) MyChildren(ctx context.Context, parentID int64) ([]model.Child, error) {
	return s.store.ListByParent(ctx, parentID)
}

// Pending lists children awaiting admin approval.
func (s *Service) Pending(ctx context.Context) ([]model.Child, error) {
	return s.store.ListPending(ctx)
}

// All lists every active child.
func (s *Service) All(ctx context.Context) ([]model.Child, error) {
	return s.store.ListActive(ctx)
}

// Get returns a child visible to the caller. Parents may only see their own.
func (s *Service) Get(ctx context.Context, caller *model.User, id int64) (*model.Child, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: child not found", model.ErrNotFound)
	}
	if caller.Role == model.RoleParent && c.ParentID != caller.ID {
		return nil, fmt.Errorf("%w: not your child", model.ErrAuthorization)
	}
	return c, nil
}

// Approve marks a pending child approved.
func (s *Service) Approve(ctx context.Context, id int64) (*model.Child, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: child not found", model.ErrNotFound)
	}
	if err := s.store.SetApproved(ctx, id); err != nil {
		return nil, err
	}
	c.IsApproved = true
	return c, nil
}

// Reject deactivates a child. History is retained.
func (s *Service) Reject(ctx context.Context, id int64) error {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: child not found", model.ErrNotFound)
	}
	return s.store.Deactivate(ctx, id)
}

// Update changes child details. Parents may edit only their own children;
// staff may not edit at all.
func (s *Service) Update(ctx context.Context, caller *model.User, id int64, name, birthdate, photoURL string) (*model.Child, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: child not found", model.ErrNotFound)
	}
	switch {
	case caller.Role == model.RoleParent && c.ParentID != caller.ID:
		return nil, fmt.Errorf("%w: not your child", model.ErrAuthorization)
	case caller.Role == model.RoleStaff:
		return nil, fmt.Errorf("%w: staff cannot edit child information", model.ErrAuthorization)
	}
	if name == "" {
		name = c.Name
	}
	var bd *time.Time
	if birthdate != "" {
		parsed, err := time.Parse("2006-01-02", birthdate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date format, use YYYY-MM-DD", model.ErrValidation)
		}
		bd = &parsed
	}
	if err := s.store.Update(ctx, id, name, bd, photoURL); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, id)
}

// QRCode returns the scan token for an approved child.
func (s *Service) QRCode(ctx context.Context, caller *model.User, id int64) (*model.Child, error) {
	c, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !c.IsApproved {
		return nil, fmt.Errorf("%w: child is not approved yet", model.ErrValidation)
	}
	return c, nil
}
