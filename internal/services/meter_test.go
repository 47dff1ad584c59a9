package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/datatypes"

	"github.com/emaratgreen/esg-backend/internal/apierr"
	"github.com/emaratgreen/esg-backend/internal/types"
)

func TestProvisionMeters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fw := f.createFramework(t, "baseline", types.FrameworkMandatory, "", "")
	f.createElement(t, fw, &types.FrameworkElement{
		Name:      "Electricity Consumption",
		IsMetered: true,
		Cadence:   types.CadenceMonthly,
		Unit:      "kWh",
	})
	f.createElement(t, fw, &types.FrameworkElement{
		Name:      "Water Consumption",
		IsMetered: true,
		Cadence:   types.CadenceMonthly,
		Unit:      "m3",
	})
	// A computed indicator depends on meters but never gets one of its own.
	f.createElement(t, fw, &types.FrameworkElement{
		Name: "Scope 2 GHG Emissions",
		CarbonSpecs: datatypes.JSONMap{
			"dependencies": []interface{}{"grid electricity"},
		},
	})
	// Non-metered qualitative element, no meter either.
	f.createElement(t, fw, &types.FrameworkElement{Name: "Sustainability Policy"})

	company := f.createCompany(t, "dubai", "hospitality")
	if _, err := f.checklist.Generate(ctx, company, nil); err != nil {
		t.Fatalf("generating checklist: %v", err)
	}

	created, err := f.meters.ProvisionMeters(ctx, company, nil)
	if err != nil {
		t.Fatalf("provisioning: %v", err)
	}
	gotTypes := map[string]bool{}
	for _, m := range created {
		if !m.IsAutoCreated {
			t.Fatalf("provisioned meter %s must be flagged auto-created", m.Type)
		}
		gotTypes[m.Type] = true
	}
	if len(created) != 2 || !gotTypes[types.MeterTypeElectricity] || !gotTypes[types.MeterTypeWater] {
		t.Fatalf("expected electricity and water meters, got %v", gotTypes)
	}

	// A second run finds the types already covered and creates nothing.
	again, err := f.meters.ProvisionMeters(ctx, company, nil)
	if err != nil {
		t.Fatalf("re-provisioning: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected idempotent provisioning, got %d new meters", len(again))
	}
	all, err := f.meters.List(ctx, company.ID, nil)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 meters total, got %d", len(all))
	}
}

func TestProvisionMetersExplicitTypeWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fw := f.createFramework(t, "dst", types.FrameworkMandatory, "", "")
	f.createElement(t, fw, &types.FrameworkElement{
		Name:      "Chilled Water Supply",
		IsMetered: true,
		MeterType: types.MeterTypeCooling,
	})
	company := f.createCompany(t, "dubai", "hospitality")
	if _, err := f.checklist.Generate(ctx, company, nil); err != nil {
		t.Fatalf("generating checklist: %v", err)
	}

	created, err := f.meters.ProvisionMeters(ctx, company, nil)
	if err != nil {
		t.Fatalf("provisioning: %v", err)
	}
	if len(created) != 1 || created[0].Type != types.MeterTypeCooling {
		t.Fatalf("expected one cooling meter from the explicit type, got %+v", created)
	}
}

func TestMeterDeleteGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	company := f.createCompany(t, "dubai", "hospitality")
	fw := f.createFramework(t, "baseline", types.FrameworkMandatory, "", "")
	element := f.createElement(t, fw, &types.FrameworkElement{
		Name:      "Electricity Consumption",
		IsMetered: true,
		Cadence:   types.CadenceMonthly,
	})

	meter, err := f.meters.Create(ctx, &types.Meter{
		CompanyID: company.ID,
		Name:      "Tower A main",
		Type:      types.MeterTypeElectricity,
	})
	if err != nil {
		t.Fatalf("creating meter: %v", err)
	}

	submission := &types.DataSubmission{
		CompanyID: company.ID,
		ElementID: element.ID,
		MeterID:   &meter.ID,
		Year:      2026,
		Period:    "3",
		Value:     "1250",
	}
	if _, err := f.submissionRepo.Create(ctx, nil, []*types.DataSubmission{submission}); err != nil {
		t.Fatalf("creating submission: %v", err)
	}

	err = f.meters.Delete(ctx, company.ID, meter.ID)
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Code != "meter_has_data" {
		t.Fatalf("expected meter_has_data guard, got %v", err)
	}

	// Clearing the data makes the meter deletable.
	submission.Value = ""
	if err := f.submissionRepo.Update(ctx, nil, submission); err != nil {
		t.Fatalf("clearing submission: %v", err)
	}
	if err := f.meters.Delete(ctx, company.ID, meter.ID); err != nil {
		t.Fatalf("deleting empty meter: %v", err)
	}
	remaining, err := f.meters.List(ctx, company.ID, nil)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected meter gone, found %d", len(remaining))
	}
}

func TestMeterOwnershipAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.createCompany(t, "dubai", "hospitality")
	stranger := f.createCompany(t, "sharjah", "all")

	meter, err := f.meters.Create(ctx, &types.Meter{
		CompanyID: owner.ID,
		Name:      "Main water",
		Type:      types.MeterTypeWater,
	})
	if err != nil {
		t.Fatalf("creating meter: %v", err)
	}

	var apiErr *apierr.Error
	if _, err := f.meters.UpdateStatus(ctx, stranger.ID, meter.ID, types.MeterStatusInactive); !errors.As(err, &apiErr) || apiErr.Status != 404 {
		t.Fatalf("expected cross-company access to look like a missing meter, got %v", err)
	}
	if _, err := f.meters.UpdateStatus(ctx, owner.ID, meter.ID, "broken"); !errors.As(err, &apiErr) || apiErr.Code != "meter_status_invalid" {
		t.Fatalf("expected invalid status rejection, got %v", err)
	}

	updated, err := f.meters.UpdateStatus(ctx, owner.ID, meter.ID, types.MeterStatusInactive)
	if err != nil {
		t.Fatalf("updating status: %v", err)
	}
	if updated.Status != types.MeterStatusInactive {
		t.Fatalf("expected inactive, got %q", updated.Status)
	}
}
