package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/apierr"
	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/repos"
	"github.com/emaratgreen/esg-backend/internal/types"
)

type CreateAssignmentInput struct {
	ElementID  *uuid.UUID `json:"element_id"`
	Category   string     `json:"category"`
	AssigneeID uuid.UUID  `json:"assignee_id"`
	Priority   string     `json:"priority"`
	DueDate    *time.Time `json:"due_date"`
	Notes      string     `json:"notes"`
}

type UpdateAssignmentInput struct {
	Status   *string    `json:"status"`
	Priority *string    `json:"priority"`
	DueDate  *time.Time `json:"due_date"`
	Notes    *string    `json:"notes"`
}

type AssignmentService interface {
	CreateAssignment(ctx context.Context, actor *types.User, company *types.Company, input *CreateAssignmentInput) (*types.ElementAssignment, error)
	ListForCompany(ctx context.Context, companyID uuid.UUID) ([]*types.ElementAssignment, error)
	ListForAssignee(ctx context.Context, assigneeID uuid.UUID) ([]*types.ElementAssignment, error)
	UpdateAssignment(ctx context.Context, companyID, assignmentID uuid.UUID, input *UpdateAssignmentInput) (*types.ElementAssignment, error)
	DeleteAssignment(ctx context.Context, companyID, assignmentID uuid.UUID) error
}

type assignmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	assignmentRepo repos.AssignmentRepo
	elementRepo    repos.FrameworkElementRepo
	userRepo       repos.UserRepo
}

func NewAssignmentService(
	db *gorm.DB,
	log *logger.Logger,
	assignmentRepo repos.AssignmentRepo,
	elementRepo repos.FrameworkElementRepo,
	userRepo repos.UserRepo,
) AssignmentService {
	serviceLog := log.With("service", "AssignmentService")
	return &assignmentService{
		db:             db,
		log:            serviceLog,
		assignmentRepo: assignmentRepo,
		elementRepo:    elementRepo,
		userRepo:       userRepo,
	}
}

// CreateAssignment delegates one element or a whole category. Exactly one of
// the two must be given, and re-assigning the same target to the same user is
// rejected rather than duplicated.
func (s *assignmentService) CreateAssignment(ctx context.Context, actor *types.User, company *types.Company, input *CreateAssignmentInput) (*types.ElementAssignment, error) {
	category := strings.ToUpper(strings.TrimSpace(input.Category))
	if (input.ElementID == nil) == (category == "") {
		return nil, apierr.Validation("assignment_target_invalid", fmt.Errorf("exactly one of element_id or category is required"))
	}
	if category != "" && !types.ValidCategory(category) {
		return nil, apierr.Validation("category_invalid", fmt.Errorf("unknown category %q", category))
	}
	if input.ElementID != nil {
		elements, err := s.elementRepo.GetByIDs(ctx, nil, []uuid.UUID{*input.ElementID})
		if err != nil {
			return nil, fmt.Errorf("retrieving element: %w", err)
		}
		if len(elements) == 0 {
			return nil, apierr.NotFound("element_not_found", fmt.Errorf("element %s not found", *input.ElementID))
		}
	}

	assignees, err := s.userRepo.GetByIDs(ctx, nil, []uuid.UUID{input.AssigneeID})
	if err != nil {
		return nil, fmt.Errorf("retrieving assignee: %w", err)
	}
	if len(assignees) == 0 || assignees[0].CompanyID == nil || *assignees[0].CompanyID != company.ID {
		return nil, apierr.NotFound("assignee_not_found", fmt.Errorf("assignee %s not in company", input.AssigneeID))
	}

	exists, err := s.assignmentRepo.Exists(ctx, nil, company.ID, input.ElementID, category, input.AssigneeID)
	if err != nil {
		return nil, fmt.Errorf("checking duplicate assignment: %w", err)
	}
	if exists {
		return nil, apierr.Validation("assignment_exists", fmt.Errorf("assignment already exists for this target and user"))
	}

	priority := input.Priority
	if priority == "" {
		priority = types.PriorityMedium
	}
	if !types.ValidPriority(priority) {
		return nil, apierr.Validation("priority_invalid", fmt.Errorf("unknown priority %q", priority))
	}

	assignment := &types.ElementAssignment{
		ID:           uuid.New(),
		CompanyID:    company.ID,
		ElementID:    input.ElementID,
		Category:     category,
		AssignedToID: input.AssigneeID,
		AssignedByID: actor.ID,
		Status:       types.AssignmentPending,
		Priority:     priority,
		DueDate:      input.DueDate,
		Notes:        input.Notes,
	}
	if _, err := s.assignmentRepo.Create(ctx, nil, []*types.ElementAssignment{assignment}); err != nil {
		return nil, fmt.Errorf("creating assignment: %w", err)
	}
	return assignment, nil
}

func (s *assignmentService) ListForCompany(ctx context.Context, companyID uuid.UUID) ([]*types.ElementAssignment, error) {
	return s.assignmentRepo.GetByCompanyID(ctx, nil, companyID)
}

func (s *assignmentService) ListForAssignee(ctx context.Context, assigneeID uuid.UUID) ([]*types.ElementAssignment, error) {
	return s.assignmentRepo.GetByAssigneeID(ctx, nil, assigneeID)
}

func (s *assignmentService) getOwned(ctx context.Context, companyID, assignmentID uuid.UUID) (*types.ElementAssignment, error) {
	assignments, err := s.assignmentRepo.GetByIDs(ctx, nil, []uuid.UUID{assignmentID})
	if err != nil {
		return nil, fmt.Errorf("retrieving assignment: %w", err)
	}
	if len(assignments) == 0 || assignments[0].CompanyID != companyID {
		return nil, apierr.NotFound("assignment_not_found", fmt.Errorf("assignment %s not found", assignmentID))
	}
	return assignments[0], nil
}

func (s *assignmentService) UpdateAssignment(ctx context.Context, companyID, assignmentID uuid.UUID, input *UpdateAssignmentInput) (*types.ElementAssignment, error) {
	assignment, err := s.getOwned(ctx, companyID, assignmentID)
	if err != nil {
		return nil, err
	}
	if input.Status != nil {
		if !types.ValidAssignmentStatus(*input.Status) {
			return nil, apierr.Validation("status_invalid", fmt.Errorf("unknown status %q", *input.Status))
		}
		assignment.Status = *input.Status
	}
	if input.Priority != nil {
		if !types.ValidPriority(*input.Priority) {
			return nil, apierr.Validation("priority_invalid", fmt.Errorf("unknown priority %q", *input.Priority))
		}
		assignment.Priority = *input.Priority
	}
	if input.DueDate != nil {
		assignment.DueDate = input.DueDate
	}
	if input.Notes != nil {
		assignment.Notes = *input.Notes
	}
	if err := s.assignmentRepo.Update(ctx, nil, assignment); err != nil {
		return nil, fmt.Errorf("updating assignment: %w", err)
	}
	return assignment, nil
}

func (s *assignmentService) DeleteAssignment(ctx context.Context, companyID, assignmentID uuid.UUID) error {
	assignment, err := s.getOwned(ctx, companyID, assignmentID)
	if err != nil {
		return err
	}
	return s.assignmentRepo.Delete(ctx, nil, []uuid.UUID{assignment.ID})
}
