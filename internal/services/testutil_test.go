package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/emaratgreen/esg-backend/internal/db"
	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/repos"
	"github.com/emaratgreen/esg-backend/internal/types"
)

// newTestDB opens an isolated in-memory database migrated with the full
// schema. cache=shared keeps the database alive across pooled connections.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	if err := gdb.AutoMigrate(db.Models()...); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return gdb
}

// fixture wires the full service graph over one test database.
type fixture struct {
	db *gorm.DB

	userRepo             repos.UserRepo
	companyRepo          repos.CompanyRepo
	siteRepo             repos.SiteRepo
	activityRepo         repos.ActivityRepo
	frameworkRepo        repos.FrameworkRepo
	elementRepo          repos.FrameworkElementRepo
	companyFrameworkRepo repos.CompanyFrameworkRepo
	profileRepo          repos.ProfileRepo
	checklistRepo        repos.ChecklistRepo
	meterRepo            repos.MeterRepo
	submissionRepo       repos.SubmissionRepo
	assignmentRepo       repos.AssignmentRepo

	evaluator        *ConditionEvaluator
	frameworkService FrameworkService
	processor        FrameworkProcessor
	checklist        ChecklistService
	meters           MeterService
	dataCollection   DataCollectionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := newTestDB(t)
	log := logger.NewNop()

	f := &fixture{
		db:                   gdb,
		userRepo:             repos.NewUserRepo(gdb, log),
		companyRepo:          repos.NewCompanyRepo(gdb, log),
		siteRepo:             repos.NewSiteRepo(gdb, log),
		activityRepo:         repos.NewActivityRepo(gdb, log),
		frameworkRepo:        repos.NewFrameworkRepo(gdb, log),
		elementRepo:          repos.NewFrameworkElementRepo(gdb, log),
		companyFrameworkRepo: repos.NewCompanyFrameworkRepo(gdb, log),
		profileRepo:          repos.NewProfileRepo(gdb, log),
		checklistRepo:        repos.NewChecklistRepo(gdb, log),
		meterRepo:            repos.NewMeterRepo(gdb, log),
		submissionRepo:       repos.NewSubmissionRepo(gdb, log),
		assignmentRepo:       repos.NewAssignmentRepo(gdb, log),
	}
	f.evaluator = NewConditionEvaluator(log)
	f.frameworkService = NewFrameworkService(gdb, log, f.frameworkRepo, f.companyFrameworkRepo)
	f.processor = NewFrameworkProcessor(log, f.evaluator, f.frameworkService, f.elementRepo, f.activityRepo, f.profileRepo)
	f.checklist = NewChecklistService(gdb, log, f.processor, f.checklistRepo)
	f.meters = NewMeterService(gdb, log, f.meterRepo, f.checklistRepo, f.submissionRepo)
	f.dataCollection = NewDataCollectionService(gdb, log, f.checklistRepo, f.meterRepo, f.submissionRepo, f.elementRepo, f.siteRepo)
	return f
}

func (f *fixture) createCompany(t *testing.T, emirate, sector string) *types.Company {
	t.Helper()
	company := &types.Company{
		OwnerUserID: uuid.New(),
		Name:        "Test Hotel Group",
		Emirate:     emirate,
		Sector:      sector,
	}
	if _, err := f.companyRepo.Create(context.Background(), nil, []*types.Company{company}); err != nil {
		t.Fatalf("creating company: %v", err)
	}
	return company
}

func (f *fixture) createFramework(t *testing.T, code, fwType, condEmirate, condSector string) *types.Framework {
	t.Helper()
	framework := &types.Framework{
		Code:             code,
		Name:             code,
		Type:             fwType,
		ConditionEmirate: condEmirate,
		ConditionSector:  condSector,
	}
	saved, err := f.frameworkRepo.UpsertByCode(context.Background(), nil, framework)
	if err != nil {
		t.Fatalf("creating framework %s: %v", code, err)
	}
	return saved
}

func (f *fixture) createElement(t *testing.T, framework *types.Framework, element *types.FrameworkElement) *types.FrameworkElement {
	t.Helper()
	element.FrameworkID = framework.ID
	if element.Code == "" {
		element.Code = strings.ReplaceAll(strings.ToLower(element.Name), " ", "-")
	}
	if element.Type == "" {
		element.Type = types.ElementMustHave
	}
	if element.Category == "" {
		element.Category = types.CategoryEnvironmental
	}
	if element.Sector == "" {
		element.Sector = types.SectorGeneric
	}
	saved, err := f.elementRepo.UpsertByCode(context.Background(), nil, element)
	if err != nil {
		t.Fatalf("creating element %s: %v", element.Name, err)
	}
	return saved
}

func (f *fixture) answer(t *testing.T, companyID uuid.UUID, key, value string) {
	t.Helper()
	answer := &types.CompanyProfileAnswer{
		CompanyID:   companyID,
		QuestionKey: key,
		Answer:      value,
	}
	if _, err := f.profileRepo.UpsertAnswer(context.Background(), nil, answer); err != nil {
		t.Fatalf("saving answer %s: %v", key, err)
	}
}
