package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odontosys/clinic-api/internal/model"
	"github.com/odontosys/clinic-api/internal/repository"
	apperrors "github.com/odontosys/clinic-api/pkg/errors"
)

type AppointmentService interface {
	Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	Get(ctx context.Context, id primitive.ObjectID) (*model.Appointment, error)
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, req *model.UpdateAppointmentRequest) (*model.Appointment, error)
	Delete(ctx context.Context, id primitive.ObjectID, soft bool) error

	PatchLineItem(ctx context.Context, id primitive.ObjectID, index int, patch *model.LineItemPatch) (*model.Appointment, error)
	AppendLineItems(ctx context.Context, id primitive.ObjectID, items []model.LineItem) (*model.Appointment, error)
	DeleteLineItem(ctx context.Context, id primitive.ObjectID, index int) (*model.Appointment, error)
}

type Service struct {
	repo     repository.AppointmentRepository
	validate *validator.Validate
}

func NewService(repo repository.AppointmentRepository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// normalizeLineItems drops items with non-positive quantity or negative
// cost. Invalid items are removed before aggregation, not zeroed.
func normalizeLineItems(items []model.LineItem) []model.LineItem {
	normalized := make([]model.LineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 || item.UnitCost < 0 {
			continue
		}
		normalized = append(normalized, item)
	}
	return normalized
}

// validateLineItems checks the fields normalizeLineItems does not cover.
// It runs on the surviving items, so only name constraints can trip it.
func (s *Service) validateLineItems(items []model.LineItem) error {
	for _, item := range items {
		if err := s.validate.Struct(item); err != nil {
			return apperrors.BadRequest("invalid line item", err)
		}
	}
	return nil
}

// computeTotal sums unit_cost x quantity over the line items.
func computeTotal(items []model.LineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.UnitCost * float64(item.Quantity)
	}
	return total
}

func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	userID, ok := model.ParseObjectID(req.UserID)
	if !ok {
		return nil, apperrors.BadRequest("malformed user_id", nil)
	}

	items := normalizeLineItems(req.LineItems)
	if err := s.validateLineItems(items); err != nil {
		return nil, err
	}
	appt := &model.Appointment{
		Date:      req.Date,
		PatientID: req.PatientID,
		UserID:    userID,
		Status:    model.AppointmentStatus(req.Status),
		Reason:    req.Reason,
		LineItems: items,
	}
	if appt.Status == "" {
		appt.Status = model.AppointmentStatusPending
	}

	// An explicitly supplied total wins verbatim; otherwise it is derived
	// from the line items.
	if req.Total != nil {
		appt.Total = *req.Total
	} else {
		appt.Total = computeTotal(items)
	}

	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create appointment: %w", err))
	}
	return appt, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*model.Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return appt, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int64, error) {
	filters.Normalize()
	appts, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.Internal(fmt.Errorf("failed to list appointments: %w", err))
	}
	return appts, total, nil
}

func (s *Service) Update(ctx context.Context, id primitive.ObjectID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	appt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		appt.Date = *req.Date
	}
	if req.Status != nil {
		appt.Status = model.AppointmentStatus(*req.Status)
	}
	if req.Reason != nil {
		appt.Reason = *req.Reason
	}

	itemsChanged := false
	if req.LineItems != nil {
		items := normalizeLineItems(*req.LineItems)
		if err := s.validateLineItems(items); err != nil {
			return nil, err
		}
		appt.LineItems = items
		itemsChanged = true
	}

	switch {
	case req.Total != nil:
		appt.Total = *req.Total
	case itemsChanged:
		appt.Total = computeTotal(appt.LineItems)
	}

	if err := s.repo.Update(ctx, appt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to update appointment: %w", err))
	}
	return appt, nil
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID, soft bool) error {
	var err error
	if soft {
		err = s.repo.SoftDelete(ctx, id)
	} else {
		err = s.repo.Delete(ctx, id)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to delete appointment: %w", err))
	}
	return nil
}

// PatchLineItem shallow-merges the supplied fields over the element at
// index, re-validates the merged item, recomputes the total, and writes the
// element back positionally. An out-of-range index reports before any write.
func (s *Service) PatchLineItem(ctx context.Context, id primitive.ObjectID, index int, patch *model.LineItemPatch) (*model.Appointment, error) {
	appt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(appt.LineItems) {
		return nil, apperrors.NotFound("index out of range: line item", nil)
	}

	merged := appt.LineItems[index]
	if patch.Name != nil {
		merged.Name = *patch.Name
	}
	if patch.UnitCost != nil {
		merged.UnitCost = *patch.UnitCost
	}
	if patch.Quantity != nil {
		merged.Quantity = *patch.Quantity
	}
	if err := s.validate.Struct(merged); err != nil {
		return nil, apperrors.BadRequest("invalid line item", err)
	}

	appt.LineItems[index] = merged
	total := computeTotal(appt.LineItems)
	if err := s.repo.SetLineItem(ctx, id, index, merged, total); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to patch line item: %w", err))
	}
	appt.Total = total
	return appt, nil
}

func (s *Service) AppendLineItems(ctx context.Context, id primitive.ObjectID, items []model.LineItem) (*model.Appointment, error) {
	appt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if err := s.validate.Struct(item); err != nil {
			return nil, apperrors.BadRequest("invalid line item", err)
		}
	}

	appended := normalizeLineItems(items)
	appt.LineItems = append(appt.LineItems, appended...)
	total := computeTotal(appt.LineItems)
	if err := s.repo.PushLineItems(ctx, id, appended, total); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to append line items: %w", err))
	}
	appt.Total = total
	return appt, nil
}

// DeleteLineItem removes the element at index with the two-phase protocol:
// the element is first overwritten with a null marker, then all markers are
// pulled. Positions of elements the caller has not addressed never shift
// mid-operation; the document briefly holds a null marker between phases.
// Deleting at or beyond the current length is a reported-success no-op.
func (s *Service) DeleteLineItem(ctx context.Context, id primitive.ObjectID, index int) (*model.Appointment, error) {
	appt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 {
		return nil, apperrors.BadRequest("index must be non-negative", nil)
	}
	if index >= len(appt.LineItems) {
		return appt, nil
	}

	if err := s.repo.BlankLineItem(ctx, id, index); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to blank line item: %w", err))
	}
	if err := s.repo.CompactLineItems(ctx, id); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to compact line items: %w", err))
	}

	appt.LineItems = append(appt.LineItems[:index], appt.LineItems[index+1:]...)
	total := computeTotal(appt.LineItems)
	if err := s.repo.SetTotal(ctx, id, total); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to update total: %w", err))
	}
	appt.Total = total
	return appt, nil
}
