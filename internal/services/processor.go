package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/repos"
	"github.com/emaratgreen/esg-backend/internal/types"
)

// FrameworkProcessor resolves which reporting elements apply to a company:
// candidates are the elements of the company's active frameworks filtered by
// sector; must-have elements are always in, conditional ones go through the
// condition evaluator.
type FrameworkProcessor interface {
	ResolveElements(ctx context.Context, tx *gorm.DB, company *types.Company, siteID *uuid.UUID) ([]*types.FrameworkElement, error)
	BuildProfile(ctx context.Context, tx *gorm.DB, company *types.Company, siteID *uuid.UUID) (*ConditionProfile, error)
}

type frameworkProcessor struct {
	log              *logger.Logger
	evaluator        *ConditionEvaluator
	frameworkService FrameworkService
	elementRepo      repos.FrameworkElementRepo
	activityRepo     repos.ActivityRepo
	profileRepo      repos.ProfileRepo
}

func NewFrameworkProcessor(
	log *logger.Logger,
	evaluator *ConditionEvaluator,
	frameworkService FrameworkService,
	elementRepo repos.FrameworkElementRepo,
	activityRepo repos.ActivityRepo,
	profileRepo repos.ProfileRepo,
) FrameworkProcessor {
	serviceLog := log.With("service", "FrameworkProcessor")
	return &frameworkProcessor{
		log:              serviceLog,
		evaluator:        evaluator,
		frameworkService: frameworkService,
		elementRepo:      elementRepo,
		activityRepo:     activityRepo,
		profileRepo:      profileRepo,
	}
}

// BuildProfile assembles the evaluator's view of a company. Site-scoped wizard
// answers overlay company-wide ones.
func (fp *frameworkProcessor) BuildProfile(ctx context.Context, tx *gorm.DB, company *types.Company, siteID *uuid.UUID) (*ConditionProfile, error) {
	companyActivities, err := fp.activityRepo.GetForCompany(ctx, tx, company.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching company activities: %w", err)
	}
	activities := make([]string, 0, len(companyActivities))
	for _, ca := range companyActivities {
		if ca.Activity != nil {
			activities = append(activities, ca.Activity.Name)
		}
	}

	answerRows, err := fp.profileRepo.GetAnswers(ctx, tx, company.ID, siteID)
	if err != nil {
		return nil, fmt.Errorf("fetching profile answers: %w", err)
	}
	answers := make(map[string]string, len(answerRows))
	for _, row := range answerRows {
		// Rows are ordered company-wide first, so site answers win.
		answers[strings.ToLower(row.QuestionKey)] = row.Answer
	}

	return &ConditionProfile{
		Emirate:    company.Emirate,
		Sector:     company.Sector,
		Activities: activities,
		Answers:    answers,
	}, nil
}

func (fp *frameworkProcessor) ResolveElements(ctx context.Context, tx *gorm.DB, company *types.Company, siteID *uuid.UUID) ([]*types.FrameworkElement, error) {
	frameworkIDs, err := fp.frameworkService.ResolveFrameworkIDs(ctx, tx, company)
	if err != nil {
		return nil, err
	}
	sectors := []string{types.SectorGeneric}
	if s := strings.ToLower(strings.TrimSpace(company.Sector)); s != "" {
		sectors = append(sectors, s)
	}
	candidates, err := fp.elementRepo.GetCandidates(ctx, tx, frameworkIDs, sectors)
	if err != nil {
		return nil, fmt.Errorf("fetching candidate elements: %w", err)
	}

	profile, err := fp.BuildProfile(ctx, tx, company, siteID)
	if err != nil {
		return nil, err
	}

	seen := map[uuid.UUID]struct{}{}
	var resolved []*types.FrameworkElement
	for _, element := range candidates {
		if _, ok := seen[element.ID]; ok {
			continue
		}
		include := element.Type == types.ElementMustHave
		if !include {
			include = fp.evaluator.IsApplicable(element.ConditionLogic, profile)
		}
		if include {
			seen[element.ID] = struct{}{}
			resolved = append(resolved, element)
		}
	}
	fp.log.Debug("Elements resolved",
		"company_id", company.ID, "candidates", len(candidates), "resolved", len(resolved))
	return resolved, nil
}
