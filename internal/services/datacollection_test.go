package services

import (
	"context"
	"errors"
	"testing"

	"github.com/emaratgreen/esg-backend/internal/apierr"
	"github.com/emaratgreen/esg-backend/internal/types"
)

func TestPeriodForCadence(t *testing.T) {
	cases := []struct {
		cadence string
		month   int
		period  string
		due     bool
	}{
		{types.CadenceMonthly, 1, "1", true},
		{types.CadenceMonthly, 12, "12", true},
		{types.CadenceQuarterly, 2, "", false},
		{types.CadenceQuarterly, 3, "Q1", true},
		{types.CadenceQuarterly, 6, "Q2", true},
		{types.CadenceQuarterly, 9, "Q3", true},
		{types.CadenceQuarterly, 12, "Q4", true},
		{types.CadenceAnnually, 5, "", false},
		{types.CadenceAnnually, 12, "annual", true},
		{"", 12, "annual", true},
	}
	for _, tc := range cases {
		period, due := periodForCadence(tc.cadence, tc.month)
		if period != tc.period || due != tc.due {
			t.Errorf("periodForCadence(%q, %d) = (%q, %v), want (%q, %v)",
				tc.cadence, tc.month, period, due, tc.period, tc.due)
		}
	}
}

// fullPipeline seeds a framework with one metered and one qualitative monthly
// element, generates the checklist and provisions meters.
func fullPipeline(t *testing.T, f *fixture) (*types.Company, *types.FrameworkElement, *types.FrameworkElement) {
	t.Helper()
	ctx := context.Background()

	fw := f.createFramework(t, "baseline", types.FrameworkMandatory, "", "")
	metered := f.createElement(t, fw, &types.FrameworkElement{
		Name:      "Electricity Consumption",
		IsMetered: true,
		Cadence:   types.CadenceMonthly,
		Unit:      "kWh",
	})
	qualitative := f.createElement(t, fw, &types.FrameworkElement{
		Name:     "Waste Segregation Log",
		Cadence:  types.CadenceMonthly,
		Category: types.CategoryEnvironmental,
	})

	company := f.createCompany(t, "dubai", "hospitality")
	if _, err := f.checklist.Generate(ctx, company, nil); err != nil {
		t.Fatalf("generating checklist: %v", err)
	}
	if _, err := f.meters.ProvisionMeters(ctx, company, nil); err != nil {
		t.Fatalf("provisioning meters: %v", err)
	}
	return company, metered, qualitative
}

func TestGetTasksCreatesSubmissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	company, metered, qualitative := fullPipeline(t, f)

	tasks, err := f.dataCollection.GetTasks(ctx, company, 2026, 3, nil)
	if err != nil {
		t.Fatalf("fetching tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	byElement := map[string]*Task{}
	for _, task := range tasks {
		byElement[task.ElementID.String()] = task
		if task.Status != types.SubmissionMissing {
			t.Fatalf("fresh task should be missing, got %q", task.Status)
		}
		if task.Year != 2026 || task.Period != "3" {
			t.Fatalf("unexpected task period %d/%q", task.Year, task.Period)
		}
	}
	meteredTask := byElement[metered.ID.String()]
	if meteredTask == nil || !meteredTask.IsMetered || meteredTask.MeterID == nil {
		t.Fatalf("metered task should carry its provisioned meter, got %+v", meteredTask)
	}
	if qt := byElement[qualitative.ID.String()]; qt == nil || qt.MeterID != nil {
		t.Fatalf("qualitative task should have no meter, got %+v", qt)
	}

	// The same call again reuses the submission rows it created.
	again, err := f.dataCollection.GetTasks(ctx, company, 2026, 3, nil)
	if err != nil {
		t.Fatalf("refetching tasks: %v", err)
	}
	if len(again) != 2 {
		t.Fatalf("expected 2 tasks on refetch, got %d", len(again))
	}
	for _, task := range again {
		prev := byElement[task.ElementID.String()]
		if prev == nil || prev.SubmissionID != task.SubmissionID {
			t.Fatal("refetch must reuse the same submission rows")
		}
	}
}

func TestUpsertSubmissionAndProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	company, metered, qualitative := fullPipeline(t, f)
	submitter := company.OwnerUserID

	tasks, err := f.dataCollection.GetTasks(ctx, company, 2026, 3, nil)
	if err != nil {
		t.Fatalf("fetching tasks: %v", err)
	}
	var meteredTask *Task
	for _, task := range tasks {
		if task.ElementID == metered.ID {
			meteredTask = task
		}
	}
	if meteredTask == nil {
		t.Fatal("no metered task")
	}

	value := "1840.5"
	sub, err := f.dataCollection.UpsertSubmission(ctx, company, submitter, &SubmissionInput{
		ElementID: metered.ID,
		MeterID:   meteredTask.MeterID,
		Year:      2026,
		Period:    "3",
		Value:     &value,
	})
	if err != nil {
		t.Fatalf("submitting value: %v", err)
	}
	if sub.Status() != types.SubmissionPartial {
		t.Fatalf("value without evidence should be partial, got %q", sub.Status())
	}
	if sub.SubmittedBy == nil || *sub.SubmittedBy != submitter {
		t.Fatal("submission must record who submitted it")
	}

	progress, err := f.dataCollection.MonthProgress(ctx, company, 2026, 3, nil)
	if err != nil {
		t.Fatalf("computing progress: %v", err)
	}
	if progress.TotalTasks != 2 || progress.ActiveTasks != 2 {
		t.Fatalf("expected 2 active tasks, got %+v", progress)
	}
	if progress.PossiblePoints != 4 || progress.EarnedPoints != 1 {
		t.Fatalf("expected 1 of 4 points after a value-only submission, got %+v", progress)
	}

	// Evidence on top completes the task: 2 of 4 points.
	evidence := "uploads/electricity-march.pdf"
	if _, err := f.dataCollection.UpsertSubmission(ctx, company, submitter, &SubmissionInput{
		ElementID:    metered.ID,
		MeterID:      meteredTask.MeterID,
		Year:         2026,
		Period:       "3",
		EvidenceFile: &evidence,
	}); err != nil {
		t.Fatalf("submitting evidence: %v", err)
	}
	progress, err = f.dataCollection.MonthProgress(ctx, company, 2026, 3, nil)
	if err != nil {
		t.Fatalf("recomputing progress: %v", err)
	}
	if progress.EarnedPoints != 2 {
		t.Fatalf("expected 2 earned points, got %+v", progress)
	}
	if progress.CompletionPercent != 50 {
		t.Fatalf("expected 50%% completion, got %v", progress.CompletionPercent)
	}

	// Completing the qualitative task too reaches 100%.
	note := "segregation log attached"
	file := "uploads/waste-log.pdf"
	if _, err := f.dataCollection.UpsertSubmission(ctx, company, submitter, &SubmissionInput{
		ElementID:    qualitative.ID,
		Year:         2026,
		Period:       "3",
		Value:        &note,
		EvidenceFile: &file,
	}); err != nil {
		t.Fatalf("submitting qualitative: %v", err)
	}
	progress, err = f.dataCollection.MonthProgress(ctx, company, 2026, 3, nil)
	if err != nil {
		t.Fatalf("final progress: %v", err)
	}
	if progress.CompletionPercent != 100 || progress.EarnedPoints != 4 {
		t.Fatalf("expected full completion, got %+v", progress)
	}
}

func TestInactivePeriodExcludedFromProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	company, metered, qualitative := fullPipeline(t, f)
	submitter := company.OwnerUserID

	tasks, err := f.dataCollection.GetTasks(ctx, company, 2026, 7, nil)
	if err != nil {
		t.Fatalf("fetching tasks: %v", err)
	}
	var meteredTask *Task
	for _, task := range tasks {
		if task.ElementID == metered.ID {
			meteredTask = task
		}
	}

	inactive := types.InactivePeriodValue
	if _, err := f.dataCollection.UpsertSubmission(ctx, company, submitter, &SubmissionInput{
		ElementID: metered.ID,
		MeterID:   meteredTask.MeterID,
		Year:      2026,
		Period:    "7",
		Value:     &inactive,
	}); err != nil {
		t.Fatalf("marking inactive: %v", err)
	}

	progress, err := f.dataCollection.MonthProgress(ctx, company, 2026, 7, nil)
	if err != nil {
		t.Fatalf("computing progress: %v", err)
	}
	if progress.TotalTasks != 2 || progress.InactiveTasks != 1 || progress.ActiveTasks != 1 {
		t.Fatalf("expected one inactive of two tasks, got %+v", progress)
	}
	if progress.PossiblePoints != 2 {
		t.Fatalf("inactive task must not contribute possible points, got %+v", progress)
	}

	// The remaining active task alone drives completion to 100.
	note := "done"
	file := "uploads/log.pdf"
	if _, err := f.dataCollection.UpsertSubmission(ctx, company, submitter, &SubmissionInput{
		ElementID:    qualitative.ID,
		Year:         2026,
		Period:       "7",
		Value:        &note,
		EvidenceFile: &file,
	}); err != nil {
		t.Fatalf("submitting: %v", err)
	}
	progress, err = f.dataCollection.MonthProgress(ctx, company, 2026, 7, nil)
	if err != nil {
		t.Fatalf("recomputing: %v", err)
	}
	if progress.CompletionPercent != 100 {
		t.Fatalf("expected 100%% with the inactive task excluded, got %+v", progress)
	}
}

func TestUpsertSubmissionValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	company, metered, _ := fullPipeline(t, f)
	other := f.createCompany(t, "sharjah", "all")
	submitter := company.OwnerUserID

	value := "10"
	var apiErr *apierr.Error

	_, err := f.dataCollection.UpsertSubmission(ctx, company, submitter, &SubmissionInput{
		ElementID: metered.ID,
		Year:      0,
		Period:    "3",
		Value:     &value,
	})
	if !errors.As(err, &apiErr) || apiErr.Status != 400 {
		t.Fatalf("expected validation error for missing year, got %v", err)
	}

	// A meter owned by another company is invisible.
	foreignMeter, err := f.meters.Create(ctx, &types.Meter{
		CompanyID: other.ID,
		Name:      "other main",
		Type:      types.MeterTypeElectricity,
	})
	if err != nil {
		t.Fatalf("creating foreign meter: %v", err)
	}
	_, err = f.dataCollection.UpsertSubmission(ctx, company, submitter, &SubmissionInput{
		ElementID: metered.ID,
		MeterID:   &foreignMeter.ID,
		Year:      2026,
		Period:    "3",
		Value:     &value,
	})
	if !errors.As(err, &apiErr) || apiErr.Code != "meter_not_found" {
		t.Fatalf("expected meter_not_found, got %v", err)
	}

	// So is a site owned by another company.
	foreignSite := &types.Site{CompanyID: other.ID, Name: "Other HQ"}
	if _, err := f.siteRepo.Create(ctx, nil, []*types.Site{foreignSite}); err != nil {
		t.Fatalf("creating foreign site: %v", err)
	}
	_, err = f.dataCollection.UpsertSubmission(ctx, company, submitter, &SubmissionInput{
		ElementID: metered.ID,
		SiteID:    &foreignSite.ID,
		Year:      2026,
		Period:    "3",
		Value:     &value,
	})
	if !errors.As(err, &apiErr) || apiErr.Code != "site_not_found" {
		t.Fatalf("expected site_not_found, got %v", err)
	}
}

func TestMonthlySeriesCoversYear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	company, _, _ := fullPipeline(t, f)

	series, err := f.dataCollection.MonthlySeries(ctx, company, 2026, nil)
	if err != nil {
		t.Fatalf("computing series: %v", err)
	}
	if len(series) != 12 {
		t.Fatalf("expected 12 monthly summaries, got %d", len(series))
	}
	for i, summary := range series {
		if summary.TotalTasks != 2 {
			t.Fatalf("month %d: expected 2 tasks, got %+v", i+1, summary)
		}
	}
}

func TestMeteredTaskWinsDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Two frameworks demand the same quantity; one tracks it through a meter.
	baseline := f.createFramework(t, "baseline", types.FrameworkMandatory, "", "")
	f.createElement(t, baseline, &types.FrameworkElement{
		Code:      "baseline-electricity",
		Name:      "Electricity Consumption",
		IsMetered: true,
		Cadence:   types.CadenceMonthly,
		Unit:      "kWh",
	})
	dst := f.createFramework(t, "dst", types.FrameworkMandatory, "", "")
	f.createElement(t, dst, &types.FrameworkElement{
		Code:    "dst-electricity",
		Name:    "Electricity Consumption",
		Cadence: types.CadenceMonthly,
		Unit:    "kWh",
	})

	company := f.createCompany(t, "dubai", "hospitality")
	if _, err := f.checklist.Generate(ctx, company, nil); err != nil {
		t.Fatalf("generating checklist: %v", err)
	}
	if _, err := f.meters.ProvisionMeters(ctx, company, nil); err != nil {
		t.Fatalf("provisioning meters: %v", err)
	}

	tasks, err := f.dataCollection.GetTasks(ctx, company, 2026, 3, nil)
	if err != nil {
		t.Fatalf("fetching tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected the duplicate collapsed to one task, got %d", len(tasks))
	}
	if !tasks[0].IsMetered {
		t.Fatal("the metered variant must win the collision")
	}
}
