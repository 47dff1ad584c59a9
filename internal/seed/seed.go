package seed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/repos"
	"github.com/emaratgreen/esg-backend/internal/types"
)

// File mirrors configs/frameworks.yaml: the framework catalogue, their
// elements and the profile wizard questions. Seeding is an idempotent upsert
// keyed on codes, safe to run on every boot.
type File struct {
	Frameworks []FrameworkSpec `yaml:"frameworks"`
	Questions  []QuestionSpec  `yaml:"profile_questions"`
	Activities []string        `yaml:"activities"`
}

type FrameworkSpec struct {
	Code             string        `yaml:"code"`
	Name             string        `yaml:"name"`
	Type             string        `yaml:"type"`
	Description      string        `yaml:"description"`
	ConditionEmirate string        `yaml:"condition_emirate"`
	ConditionSector  string        `yaml:"condition_sector"`
	Elements         []ElementSpec `yaml:"elements"`
}

type ElementSpec struct {
	Code           string                 `yaml:"code"`
	Name           string                 `yaml:"name"`
	Description    string                 `yaml:"description"`
	Type           string                 `yaml:"type"`
	Category       string                 `yaml:"category"`
	Sector         string                 `yaml:"sector"`
	Cadence        string                 `yaml:"cadence"`
	Unit           string                 `yaml:"unit"`
	IsMetered      bool                   `yaml:"is_metered"`
	MeterType      string                 `yaml:"meter_type"`
	MeterScope     string                 `yaml:"meter_scope"`
	ConditionLogic string                 `yaml:"condition_logic"`
	CarbonSpecs    map[string]interface{} `yaml:"carbon_specs"`
}

type QuestionSpec struct {
	Key        string `yaml:"key"`
	Text       string `yaml:"text"`
	AnswerType string `yaml:"answer_type"`
	SortOrder  int    `yaml:"sort_order"`
}

type Seeder struct {
	db            *gorm.DB
	log           *logger.Logger
	frameworkRepo repos.FrameworkRepo
	elementRepo   repos.FrameworkElementRepo
	profileRepo   repos.ProfileRepo
	activityRepo  repos.ActivityRepo
}

func NewSeeder(
	db *gorm.DB,
	log *logger.Logger,
	frameworkRepo repos.FrameworkRepo,
	elementRepo repos.FrameworkElementRepo,
	profileRepo repos.ProfileRepo,
	activityRepo repos.ActivityRepo,
) *Seeder {
	return &Seeder{
		db:            db,
		log:           log.With("component", "Seeder"),
		frameworkRepo: frameworkRepo,
		elementRepo:   elementRepo,
		profileRepo:   profileRepo,
		activityRepo:  activityRepo,
	}
}

func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	return &file, nil
}

func (s *Seeder) Run(ctx context.Context, file *File) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, fw := range file.Frameworks {
			if err := s.seedFramework(ctx, tx, fw); err != nil {
				return err
			}
		}
		for _, q := range file.Questions {
			question := &types.ProfileQuestion{
				Key:        q.Key,
				Text:       q.Text,
				AnswerType: q.AnswerType,
				SortOrder:  q.SortOrder,
			}
			if _, err := s.profileRepo.UpsertQuestion(ctx, tx, question); err != nil {
				return fmt.Errorf("seeding question %q: %w", q.Key, err)
			}
		}
		if err := s.seedActivities(ctx, tx, file.Activities); err != nil {
			return err
		}
		s.log.Info("Seed complete",
			"frameworks", len(file.Frameworks),
			"questions", len(file.Questions),
			"activities", len(file.Activities),
		)
		return nil
	})
}

func (s *Seeder) seedFramework(ctx context.Context, tx *gorm.DB, spec FrameworkSpec) error {
	framework := &types.Framework{
		Code:             spec.Code,
		Name:             spec.Name,
		Type:             spec.Type,
		Description:      spec.Description,
		ConditionEmirate: spec.ConditionEmirate,
		ConditionSector:  spec.ConditionSector,
	}
	saved, err := s.frameworkRepo.UpsertByCode(ctx, tx, framework)
	if err != nil {
		return fmt.Errorf("seeding framework %q: %w", spec.Code, err)
	}
	for _, el := range spec.Elements {
		sector := el.Sector
		if sector == "" {
			sector = types.SectorGeneric
		}
		elementType := el.Type
		if elementType == "" {
			elementType = types.ElementMustHave
		}
		element := &types.FrameworkElement{
			FrameworkID:    saved.ID,
			Code:           el.Code,
			Name:           el.Name,
			Description:    el.Description,
			Type:           elementType,
			Category:       el.Category,
			Sector:         sector,
			Cadence:        el.Cadence,
			Unit:           el.Unit,
			IsMetered:      el.IsMetered,
			MeterType:      el.MeterType,
			MeterScope:     el.MeterScope,
			ConditionLogic: el.ConditionLogic,
			CarbonSpecs:    datatypes.JSONMap(el.CarbonSpecs),
		}
		if _, err := s.elementRepo.UpsertByCode(ctx, tx, element); err != nil {
			return fmt.Errorf("seeding element %q: %w", el.Code, err)
		}
	}
	return nil
}

func (s *Seeder) seedActivities(ctx context.Context, tx *gorm.DB, names []string) error {
	if len(names) == 0 {
		return nil
	}
	existing, err := s.activityRepo.GetByNames(ctx, tx, names)
	if err != nil {
		return fmt.Errorf("fetching activities: %w", err)
	}
	have := map[string]struct{}{}
	for _, a := range existing {
		have[a.Name] = struct{}{}
	}
	var toCreate []*types.Activity
	for _, name := range names {
		if _, ok := have[name]; ok {
			continue
		}
		toCreate = append(toCreate, &types.Activity{Name: name})
	}
	if len(toCreate) == 0 {
		return nil
	}
	if _, err := s.activityRepo.Create(ctx, tx, toCreate); err != nil {
		return fmt.Errorf("creating activities: %w", err)
	}
	return nil
}
