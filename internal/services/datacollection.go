package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/apierr"
	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/repos"
	"github.com/emaratgreen/esg-backend/internal/types"
)

// Task is one concrete data-collection obligation for a period, backed by a
// find-or-created submission row shared across the company's users.
type Task struct {
	SubmissionID uuid.UUID  `json:"submission_id"`
	ElementID    uuid.UUID  `json:"element_id"`
	ElementName  string     `json:"element_name"`
	Category     string     `json:"category"`
	Unit         string     `json:"unit"`
	Cadence      string     `json:"cadence"`
	IsMetered    bool       `json:"is_metered"`
	MeterID      *uuid.UUID `json:"meter_id"`
	MeterType    string     `json:"meter_type"`
	MeterName    string     `json:"meter_name"`
	Year         int        `json:"year"`
	Period       string     `json:"period"`
	Status       string     `json:"status"`
	Value        string     `json:"value"`
	EvidenceFile string     `json:"evidence_file"`
}

// ProgressSummary reports completion for a period or a year. Inactive-period
// submissions are counted separately and excluded from every percentage.
type ProgressSummary struct {
	TotalTasks        int     `json:"total_tasks"`
	ActiveTasks       int     `json:"active_tasks"`
	InactiveTasks     int     `json:"inactive_tasks"`
	DataComplete      int     `json:"data_complete"`
	EvidenceComplete  int     `json:"evidence_complete"`
	PossiblePoints    int     `json:"possible_points"`
	EarnedPoints      int     `json:"earned_points"`
	CompletionPercent float64 `json:"completion_percent"`
	DataPercent       float64 `json:"data_percent"`
	EvidencePercent   float64 `json:"evidence_percent"`
}

// SubmissionInput carries a value and/or evidence write for one task.
type SubmissionInput struct {
	ElementID    uuid.UUID  `json:"element_id"`
	MeterID      *uuid.UUID `json:"meter_id"`
	SiteID       *uuid.UUID `json:"site_id"`
	Year         int        `json:"year"`
	Period       string     `json:"period"`
	Value        *string    `json:"value"`
	EvidenceFile *string    `json:"evidence_file"`
}

type DataCollectionService interface {
	GetTasks(ctx context.Context, company *types.Company, year, month int, siteID *uuid.UUID) ([]*Task, error)
	MonthProgress(ctx context.Context, company *types.Company, year, month int, siteID *uuid.UUID) (*ProgressSummary, error)
	YearProgress(ctx context.Context, company *types.Company, year int, siteID *uuid.UUID) (*ProgressSummary, error)
	MonthlySeries(ctx context.Context, company *types.Company, year int, siteID *uuid.UUID) ([]*ProgressSummary, error)
	UpsertSubmission(ctx context.Context, company *types.Company, submittedBy uuid.UUID, input *SubmissionInput) (*types.DataSubmission, error)
}

type dataCollectionService struct {
	db             *gorm.DB
	log            *logger.Logger
	checklistRepo  repos.ChecklistRepo
	meterRepo      repos.MeterRepo
	submissionRepo repos.SubmissionRepo
	elementRepo    repos.FrameworkElementRepo
	siteRepo       repos.SiteRepo
}

func NewDataCollectionService(
	db *gorm.DB,
	log *logger.Logger,
	checklistRepo repos.ChecklistRepo,
	meterRepo repos.MeterRepo,
	submissionRepo repos.SubmissionRepo,
	elementRepo repos.FrameworkElementRepo,
	siteRepo repos.SiteRepo,
) DataCollectionService {
	serviceLog := log.With("service", "DataCollectionService")
	return &dataCollectionService{
		db:             db,
		log:            serviceLog,
		checklistRepo:  checklistRepo,
		meterRepo:      meterRepo,
		submissionRepo: submissionRepo,
		elementRepo:    elementRepo,
		siteRepo:       siteRepo,
	}
}

// periodForCadence maps a calendar month onto the element's reporting period.
// The bool reports whether the element is due at all in that month.
func periodForCadence(cadence string, month int) (string, bool) {
	switch strings.ToLower(cadence) {
	case types.CadenceMonthly:
		return strconv.Itoa(month), true
	case types.CadenceQuarterly:
		if month%3 != 0 {
			return "", false
		}
		return "Q" + strconv.Itoa(month/3), true
	default:
		if month != 12 {
			return "", false
		}
		return "annual", true
	}
}

// resolveMetersForElement finds the active meters a metered element reports
// through. Carbon-spec dependency hints take priority; otherwise the type
// derived from the element name is looked up exactly, then fuzzily.
func resolveMetersForElement(element *types.FrameworkElement, activeMeters []*types.Meter) []*types.Meter {
	wantTypes := carbonDependencyHints(element)
	if len(wantTypes) == 0 {
		wantTypes = []string{meterTypeForElement(element)}
	}

	var matched []*types.Meter
	seen := map[uuid.UUID]struct{}{}
	appendMeter := func(m *types.Meter) {
		if _, ok := seen[m.ID]; !ok {
			seen[m.ID] = struct{}{}
			matched = append(matched, m)
		}
	}

	for _, wantType := range wantTypes {
		exactFound := false
		for _, meter := range activeMeters {
			if meter.Type == wantType {
				appendMeter(meter)
				exactFound = true
			}
		}
		if exactFound {
			continue
		}
		for _, meter := range activeMeters {
			if strings.Contains(meter.Type, wantType) || strings.Contains(wantType, meter.Type) {
				appendMeter(meter)
			}
		}
	}
	return matched
}

func (dc *dataCollectionService) findOrCreateSubmission(ctx context.Context, tx *gorm.DB, key types.SubmissionKey) (*types.DataSubmission, error) {
	existing, err := dc.submissionRepo.GetByKey(ctx, tx, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	submission := &types.DataSubmission{
		CompanyID: key.CompanyID,
		SiteID:    key.SiteID,
		ElementID: key.ElementID,
		MeterID:   key.MeterID,
		Year:      key.Year,
		Period:    key.Period,
	}
	if _, err := dc.submissionRepo.Create(ctx, tx, []*types.DataSubmission{submission}); err != nil {
		return nil, err
	}
	return submission, nil
}

func (dc *dataCollectionService) GetTasks(ctx context.Context, company *types.Company, year, month int, siteID *uuid.UUID) ([]*Task, error) {
	if month < 1 || month > 12 {
		return nil, apierr.Validation("month_invalid", fmt.Errorf("month %d out of range", month))
	}
	var tasks []*Task
	err := dc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := dc.checklistRepo.GetForScope(ctx, tx, company.ID, siteID)
		if err != nil {
			return fmt.Errorf("fetching checklist: %w", err)
		}
		activeMeters, err := dc.meterRepo.GetActiveForScope(ctx, tx, company.ID, siteID)
		if err != nil {
			return fmt.Errorf("fetching meters: %w", err)
		}

		for _, item := range items {
			element := item.Element
			if element == nil {
				// Reference data missing; skip the item rather than abort the pass.
				dc.log.Warn("Checklist item has no element, skipping",
					"checklist_id", item.ID, "element_id", item.ElementID)
				continue
			}
			period, due := periodForCadence(item.Cadence, month)
			if !due {
				continue
			}

			if element.IsMetered {
				meters := resolveMetersForElement(element, activeMeters)
				if len(meters) == 0 {
					// Metering required but no meter resolves: skip, never
					// fabricate a task against a nonexistent meter.
					continue
				}
				for _, meter := range meters {
					meterID := meter.ID
					submission, err := dc.findOrCreateSubmission(ctx, tx, types.SubmissionKey{
						CompanyID: company.ID,
						SiteID:    siteID,
						ElementID: element.ID,
						MeterID:   &meterID,
						Year:      year,
						Period:    period,
					})
					if err != nil {
						return err
					}
					tasks = append(tasks, taskFromSubmission(submission, element, item.Cadence, meter))
				}
				continue
			}

			submission, err := dc.findOrCreateSubmission(ctx, tx, types.SubmissionKey{
				CompanyID: company.ID,
				SiteID:    siteID,
				ElementID: element.ID,
				Year:      year,
				Period:    period,
			})
			if err != nil {
				return err
			}
			tasks = append(tasks, taskFromSubmission(submission, element, item.Cadence, nil))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dedupeTasks(tasks), nil
}

func taskFromSubmission(submission *types.DataSubmission, element *types.FrameworkElement, cadence string, meter *types.Meter) *Task {
	task := &Task{
		SubmissionID: submission.ID,
		ElementID:    element.ID,
		ElementName:  element.Name,
		Category:     element.Category,
		Unit:         element.Unit,
		Cadence:      cadence,
		Year:         submission.Year,
		Period:       submission.Period,
		Status:       submission.Status(),
		Value:        submission.Value,
		EvidenceFile: submission.EvidenceFile,
	}
	if meter != nil {
		meterID := meter.ID
		task.IsMetered = true
		task.MeterID = &meterID
		task.MeterType = meter.Type
		task.MeterName = meter.Name
	}
	return task
}

// dedupeTasks collapses tasks representing the same real-world requirement
// reached through different classification paths. Tasks are keyed by
// (element name, unit, cadence, meter identity); when a metered and a
// non-metered task collide on the base key, the metered one wins.
func dedupeTasks(tasks []*Task) []*Task {
	type baseKey struct {
		name    string
		unit    string
		cadence string
	}
	fullSeen := map[string]struct{}{}
	meteredByBase := map[baseKey]bool{}
	for _, task := range tasks {
		if task.IsMetered {
			meteredByBase[baseKey{strings.ToLower(task.ElementName), task.Unit, task.Cadence}] = true
		}
	}

	var result []*Task
	for _, task := range tasks {
		bk := baseKey{strings.ToLower(task.ElementName), task.Unit, task.Cadence}
		meterPart := "non_metered"
		if task.IsMetered {
			meterPart = task.MeterType + ":" + task.MeterID.String()
		}
		full := fmt.Sprintf("%s|%s|%s|%s", bk.name, bk.unit, bk.cadence, meterPart)
		if _, dup := fullSeen[full]; dup {
			continue
		}
		if !task.IsMetered && meteredByBase[bk] {
			continue
		}
		fullSeen[full] = struct{}{}
		result = append(result, task)
	}
	return result
}

func summarizeTasks(tasks []*Task) *ProgressSummary {
	summary := &ProgressSummary{TotalTasks: len(tasks)}
	for _, task := range tasks {
		if task.Status == types.SubmissionInactive {
			summary.InactiveTasks++
			continue
		}
		summary.ActiveTasks++
		summary.PossiblePoints += 2
		if task.Value != "" && task.Value != types.InactivePeriodValue {
			summary.DataComplete++
			summary.EarnedPoints++
		}
		if task.EvidenceFile != "" {
			summary.EvidenceComplete++
			summary.EarnedPoints++
		}
	}
	if summary.PossiblePoints > 0 {
		summary.CompletionPercent = 100 * float64(summary.EarnedPoints) / float64(summary.PossiblePoints)
	}
	if summary.ActiveTasks > 0 {
		summary.DataPercent = 100 * float64(summary.DataComplete) / float64(summary.ActiveTasks)
		summary.EvidencePercent = 100 * float64(summary.EvidenceComplete) / float64(summary.ActiveTasks)
	}
	return summary
}

func (dc *dataCollectionService) MonthProgress(ctx context.Context, company *types.Company, year, month int, siteID *uuid.UUID) (*ProgressSummary, error) {
	tasks, err := dc.GetTasks(ctx, company, year, month, siteID)
	if err != nil {
		return nil, err
	}
	return summarizeTasks(tasks), nil
}

// YearProgress materializes tasks for all 12 months before aggregating, so
// submission rows exist even for months no user has visited yet.
func (dc *dataCollectionService) YearProgress(ctx context.Context, company *types.Company, year int, siteID *uuid.UUID) (*ProgressSummary, error) {
	var all []*Task
	for month := 1; month <= 12; month++ {
		tasks, err := dc.GetTasks(ctx, company, year, month, siteID)
		if err != nil {
			return nil, err
		}
		all = append(all, tasks...)
	}
	return summarizeTasks(all), nil
}

func (dc *dataCollectionService) MonthlySeries(ctx context.Context, company *types.Company, year int, siteID *uuid.UUID) ([]*ProgressSummary, error) {
	series := make([]*ProgressSummary, 0, 12)
	for month := 1; month <= 12; month++ {
		tasks, err := dc.GetTasks(ctx, company, year, month, siteID)
		if err != nil {
			return nil, err
		}
		series = append(series, summarizeTasks(tasks))
	}
	return series, nil
}

func (dc *dataCollectionService) UpsertSubmission(ctx context.Context, company *types.Company, submittedBy uuid.UUID, input *SubmissionInput) (*types.DataSubmission, error) {
	if input == nil {
		return nil, apierr.Validation("submission_required", fmt.Errorf("submission input is required"))
	}
	if input.Year == 0 || input.Period == "" {
		return nil, apierr.Validation("period_required", fmt.Errorf("reporting year and period are required"))
	}
	elements, err := dc.elementRepo.GetByIDs(ctx, nil, []uuid.UUID{input.ElementID})
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, apierr.NotFound("element_not_found", fmt.Errorf("element %s not found", input.ElementID))
	}
	if input.MeterID != nil {
		meters, err := dc.meterRepo.GetByIDs(ctx, nil, []uuid.UUID{*input.MeterID})
		if err != nil {
			return nil, err
		}
		if len(meters) == 0 || meters[0].CompanyID != company.ID {
			return nil, apierr.NotFound("meter_not_found", fmt.Errorf("meter %s not found", *input.MeterID))
		}
	}
	if input.SiteID != nil {
		sites, err := dc.siteRepo.GetByIDs(ctx, nil, []uuid.UUID{*input.SiteID})
		if err != nil {
			return nil, err
		}
		if len(sites) == 0 || sites[0].CompanyID != company.ID {
			return nil, apierr.NotFound("site_not_found", fmt.Errorf("site %s not found", *input.SiteID))
		}
	}

	var result *types.DataSubmission
	err = dc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		submission, err := dc.findOrCreateSubmission(ctx, tx, types.SubmissionKey{
			CompanyID: company.ID,
			SiteID:    input.SiteID,
			ElementID: input.ElementID,
			MeterID:   input.MeterID,
			Year:      input.Year,
			Period:    input.Period,
		})
		if err != nil {
			return err
		}
		if input.Value != nil {
			submission.Value = *input.Value
		}
		if input.EvidenceFile != nil {
			submission.EvidenceFile = *input.EvidenceFile
		}
		submission.SubmittedBy = &submittedBy
		if err := dc.submissionRepo.Update(ctx, tx, submission); err != nil {
			return err
		}
		result = submission
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
