package registration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"hadhin/internal/model"
)

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, reg *model.Registration) error
	GetByNumber(ctx context.Context, number string) (*model.Registration, error)
	List(ctx context.Context) ([]model.Registration, error)
	SetStatus(ctx context.Context, number, status string, notes []model.ReviewNote) error
}

// Service implements the enrollment intake: submissions land in
// pending_review and move to approved or rejected by admin action.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// NewNumber builds a public registration number.
func NewNumber() string {
	return "BK-" + strings.ToUpper(uuid.NewString()[:6])
}

// SubmitInput carries a new enrollment form with already-saved attachments.
// Number may be pre-assigned when attachments were stored under it already.
type SubmitInput struct {
	Number         string
	ChildName      string
	BirthDate      string
	Gender         string
	Nationality    string
	BirthPlace     string
	ParentName     string
	Relationship   string
	Phone          string
	EmergencyPhone string
	Email          string
	Address        string
	Files          []model.RegistrationFile
}

// Submit records a new registration in pending_review.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*model.Registration, error) {
	if in.ChildName == "" || in.ParentName == "" {
		return nil, fmt.Errorf("%w: child name and parent name are required", model.ErrValidation)
	}
	number := in.Number
	if number == "" {
		number = NewNumber()
	}
	reg := &model.Registration{
		RegistrationNumber: number,
		Status:             model.RegistrationPending,
		ChildName:          in.ChildName,
		BirthDate:          in.BirthDate,
		Gender:             in.Gender,
		Nationality:        in.Nationality,
		BirthPlace:         in.BirthPlace,
		ParentName:         in.ParentName,
		Relationship:       in.Relationship,
		Phone:              in.Phone,
		EmergencyPhone:     in.EmergencyPhone,
		Email:              in.Email,
		Address:            in.Address,
		Files:              in.Files,
	}
	if err := s.store.Insert(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// List returns all registrations, newest first.
func (s *Service) List(ctx context.Context) ([]model.Registration, error) {
	return s.store.List(ctx)
}

// Get returns one registration by its public number.
func (s *Service) Get(ctx context.Context, number string) (*model.Registration, error) {
	reg, err := s.store.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, fmt.Errorf("%w: registration not found", model.ErrNotFound)
	}
	return reg, nil
}

// UpdateStatus moves a registration to a new status, appending a review note
// when one is given.
func (s *Service) UpdateStatus(ctx context.Context, number, status, note string) error {
	switch status {
	case model.RegistrationPending, model.RegistrationApproved, model.RegistrationRejected:
	default:
		return fmt.Errorf("%w: unknown status %q", model.ErrValidation, status)
	}
	reg, err := s.Get(ctx, number)
	if err != nil {
		return err
	}
	notes := reg.ReviewNotes
	if note != "" {
		notes = append(notes, model.ReviewNote{Note: note, Timestamp: s.now()})
	}
	return s.store.SetStatus(ctx, number, status, notes)
}

// Stats summarises intake volume by status and recency.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Today     int `json:"today"`
	ThisWeek  int `json:"this_week"`
	ThisMonth int `json:"this_month"`
}

// Statistics counts registrations by status and submission recency.
func (s *Service) Statistics(ctx context.Context) (*Stats, error) {
	regs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	stats := &Stats{Total: len(regs)}
	for _, reg := range regs {
		switch reg.Status {
		case model.RegistrationPending:
			stats.Pending++
		case model.RegistrationApproved:
			stats.Approved++
		case model.RegistrationRejected:
			stats.Rejected++
		}
		if !reg.SubmittedAt.Before(todayStart) {
			stats.Today++
		}
		if !reg.SubmittedAt.Before(weekAgo) {
			stats.ThisWeek++
		}
		if !reg.SubmittedAt.Before(monthAgo) {
			stats.ThisMonth++
		}
	}
	return stats, nil
}
