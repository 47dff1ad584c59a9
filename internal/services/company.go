package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/apierr"
	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/normalization"
	"github.com/emaratgreen/esg-backend/internal/repos"
	"github.com/emaratgreen/esg-backend/internal/types"
)

type CreateCompanyInput struct {
	Name    string `json:"name"`
	Emirate string `json:"emirate"`
	Sector  string `json:"sector"`
}

type UpdateCompanyInput struct {
	Name    *string `json:"name"`
	Emirate *string `json:"emirate"`
	Sector  *string `json:"sector"`
}

type AnswerInput struct {
	QuestionKey string     `json:"question_key"`
	SiteID      *uuid.UUID `json:"site_id"`
	Answer      string     `json:"answer"`
}

// CompanyService owns the company profile. Any profile change that can shift
// conditional applicability re-runs mandatory assignment, checklist
// generation and meter provisioning for the whole company footprint.
type CompanyService interface {
	CreateCompany(ctx context.Context, owner *types.User, input *CreateCompanyInput) (*types.Company, error)
	GetCompany(ctx context.Context, companyID uuid.UUID) (*types.Company, error)
	UpdateCompany(ctx context.Context, companyID uuid.UUID, input *UpdateCompanyInput) (*types.Company, error)
	ListActivities(ctx context.Context) ([]*types.Activity, error)
	SetCompanyActivities(ctx context.Context, companyID uuid.UUID, names []string) ([]*types.Activity, error)
	GetProfileQuestions(ctx context.Context) ([]*types.ProfileQuestion, error)
	GetProfileAnswers(ctx context.Context, companyID uuid.UUID, siteID *uuid.UUID) ([]*types.CompanyProfileAnswer, error)
	SubmitProfileAnswers(ctx context.Context, companyID uuid.UUID, answers []*AnswerInput) error
	RefreshCompliance(ctx context.Context, companyID uuid.UUID) error
}

type companyService struct {
	db               *gorm.DB
	log              *logger.Logger
	companyRepo      repos.CompanyRepo
	siteRepo         repos.SiteRepo
	activityRepo     repos.ActivityRepo
	profileRepo      repos.ProfileRepo
	userRepo         repos.UserRepo
	frameworkService FrameworkService
	checklistService ChecklistService
	meterService     MeterService
}

func NewCompanyService(
	db *gorm.DB,
	log *logger.Logger,
	companyRepo repos.CompanyRepo,
	siteRepo repos.SiteRepo,
	activityRepo repos.ActivityRepo,
	profileRepo repos.ProfileRepo,
	userRepo repos.UserRepo,
	frameworkService FrameworkService,
	checklistService ChecklistService,
	meterService MeterService,
) CompanyService {
	serviceLog := log.With("service", "CompanyService")
	return &companyService{
		db:               db,
		log:              serviceLog,
		companyRepo:      companyRepo,
		siteRepo:         siteRepo,
		activityRepo:     activityRepo,
		profileRepo:      profileRepo,
		userRepo:         userRepo,
		frameworkService: frameworkService,
		checklistService: checklistService,
		meterService:     meterService,
	}
}

func (cs *companyService) CreateCompany(ctx context.Context, owner *types.User, input *CreateCompanyInput) (*types.Company, error) {
	name := normalization.ParseInputString(input.Name)
	if name == "" {
		return nil, apierr.Validation("name_required", fmt.Errorf("company name is required"))
	}
	exists, err := cs.companyRepo.NameExistsForOwner(ctx, nil, owner.ID, name)
	if err != nil {
		return nil, fmt.Errorf("checking company name: %w", err)
	}
	if exists {
		return nil, apierr.Validation("company_exists", fmt.Errorf("company %q already exists for owner", name))
	}

	company := &types.Company{
		ID:          uuid.New(),
		OwnerUserID: owner.ID,
		Name:        name,
		Emirate:     strings.ToLower(normalization.ParseInputString(input.Emirate)),
		Sector:      strings.ToLower(normalization.ParseInputString(input.Sector)),
	}
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.companyRepo.Create(ctx, tx, []*types.Company{company}); err != nil {
			return fmt.Errorf("creating company: %w", err)
		}
		owner.CompanyID = &company.ID
		if err := cs.userRepo.Update(ctx, tx, owner); err != nil {
			return fmt.Errorf("attaching owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := cs.refreshCompliance(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (cs *companyService) GetCompany(ctx context.Context, companyID uuid.UUID) (*types.Company, error) {
	companies, err := cs.companyRepo.GetByIDs(ctx, nil, []uuid.UUID{companyID})
	if err != nil {
		return nil, fmt.Errorf("retrieving company: %w", err)
	}
	if len(companies) == 0 {
		return nil, apierr.NotFound("company_not_found", fmt.Errorf("company %s not found", companyID))
	}
	return companies[0], nil
}

func (cs *companyService) UpdateCompany(ctx context.Context, companyID uuid.UUID, input *UpdateCompanyInput) (*types.Company, error) {
	company, err := cs.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	conditionsChanged := false
	if input.Name != nil {
		name := normalization.ParseInputString(*input.Name)
		if name == "" {
			return nil, apierr.Validation("name_required", fmt.Errorf("company name is required"))
		}
		company.Name = name
	}
	if input.Emirate != nil {
		emirate := strings.ToLower(normalization.ParseInputString(*input.Emirate))
		if emirate != company.Emirate {
			company.Emirate = emirate
			conditionsChanged = true
		}
	}
	if input.Sector != nil {
		sector := strings.ToLower(normalization.ParseInputString(*input.Sector))
		if sector != company.Sector {
			company.Sector = sector
			conditionsChanged = true
		}
	}

	if err := cs.companyRepo.Update(ctx, nil, company); err != nil {
		return nil, fmt.Errorf("updating company: %w", err)
	}
	if conditionsChanged {
		if err := cs.refreshCompliance(ctx, company); err != nil {
			return nil, err
		}
	}
	return company, nil
}

func (cs *companyService) ListActivities(ctx context.Context) ([]*types.Activity, error) {
	return cs.activityRepo.GetAll(ctx, nil)
}

// SetCompanyActivities replaces the company's activity tags. Unknown names
// are created as custom activities attributed to the company.
func (cs *companyService) SetCompanyActivities(ctx context.Context, companyID uuid.UUID, names []string) ([]*types.Activity, error) {
	company, err := cs.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	normalized := make([]string, 0, len(names))
	seen := map[string]struct{}{}
	for _, name := range names {
		n := strings.ToLower(normalization.ParseInputString(name))
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		normalized = append(normalized, n)
	}

	var result []*types.Activity
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := cs.activityRepo.GetByNames(ctx, tx, normalized)
		if err != nil {
			return fmt.Errorf("fetching activities: %w", err)
		}
		byName := map[string]*types.Activity{}
		for _, a := range existing {
			byName[strings.ToLower(a.Name)] = a
		}

		var toCreate []*types.Activity
		for _, name := range normalized {
			if _, ok := byName[name]; ok {
				continue
			}
			activity := &types.Activity{
				ID:                 uuid.New(),
				Name:               name,
				IsCustom:           true,
				CreatedByCompanyID: &company.ID,
			}
			byName[name] = activity
			toCreate = append(toCreate, activity)
		}
		if len(toCreate) > 0 {
			if _, err := cs.activityRepo.Create(ctx, tx, toCreate); err != nil {
				return fmt.Errorf("creating activities: %w", err)
			}
		}

		ids := make([]uuid.UUID, 0, len(normalized))
		for _, name := range normalized {
			activity := byName[name]
			ids = append(ids, activity.ID)
			result = append(result, activity)
		}
		return cs.activityRepo.ReplaceForCompany(ctx, tx, company.ID, ids)
	})
	if err != nil {
		return nil, err
	}

	if err := cs.refreshCompliance(ctx, company); err != nil {
		return nil, err
	}
	return result, nil
}

func (cs *companyService) GetProfileQuestions(ctx context.Context) ([]*types.ProfileQuestion, error) {
	return cs.profileRepo.GetQuestions(ctx, nil)
}

func (cs *companyService) GetProfileAnswers(ctx context.Context, companyID uuid.UUID, siteID *uuid.UUID) ([]*types.CompanyProfileAnswer, error) {
	return cs.profileRepo.GetAnswers(ctx, nil, companyID, siteID)
}

func (cs *companyService) SubmitProfileAnswers(ctx context.Context, companyID uuid.UUID, answers []*AnswerInput) error {
	company, err := cs.GetCompany(ctx, companyID)
	if err != nil {
		return err
	}
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, input := range answers {
			key := normalization.ParseKey(input.QuestionKey)
			if key == "" {
				return apierr.Validation("question_key_required", fmt.Errorf("answer missing question key"))
			}
			answer := &types.CompanyProfileAnswer{
				ID:          uuid.New(),
				CompanyID:   company.ID,
				QuestionKey: key,
				SiteID:      input.SiteID,
				Answer:      normalization.ParseInputString(input.Answer),
			}
			if _, err := cs.profileRepo.UpsertAnswer(ctx, tx, answer); err != nil {
				return fmt.Errorf("saving answer %q: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return cs.refreshCompliance(ctx, company)
}

func (cs *companyService) RefreshCompliance(ctx context.Context, companyID uuid.UUID) error {
	company, err := cs.GetCompany(ctx, companyID)
	if err != nil {
		return err
	}
	return cs.refreshCompliance(ctx, company)
}

// refreshCompliance re-runs the full derivation pipeline for the company
// scope and every site scope. Mandatory assignment runs once; checklists and
// meters are per scope.
func (cs *companyService) refreshCompliance(ctx context.Context, company *types.Company) error {
	if err := cs.frameworkService.AssignMandatoryFrameworks(ctx, company); err != nil {
		return fmt.Errorf("assigning mandatory frameworks: %w", err)
	}

	scopes := []*uuid.UUID{nil}
	sites, err := cs.siteRepo.GetByCompanyID(ctx, nil, company.ID)
	if err != nil {
		return fmt.Errorf("listing sites: %w", err)
	}
	for _, site := range sites {
		siteID := site.ID
		scopes = append(scopes, &siteID)
	}

	for _, siteID := range scopes {
		if _, err := cs.checklistService.Generate(ctx, company, siteID); err != nil {
			return fmt.Errorf("generating checklist: %w", err)
		}
		if _, err := cs.meterService.ProvisionMeters(ctx, company, siteID); err != nil {
			return fmt.Errorf("provisioning meters: %w", err)
		}
	}
	return nil
}
