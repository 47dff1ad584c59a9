package services

import (
	"context"
	"errors"
	"testing"

	"github.com/emaratgreen/esg-backend/internal/apierr"
	"github.com/emaratgreen/esg-backend/internal/types"
)

func TestAssignMandatoryFrameworks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	baseline := f.createFramework(t, "baseline", types.FrameworkMandatory, "", "")
	dst := f.createFramework(t, "dst", types.FrameworkMandatoryConditional, "dubai", "hospitality")
	climate := f.createFramework(t, "climate", types.FrameworkMandatoryConditional, "", "")
	f.createFramework(t, "gri", types.FrameworkVoluntary, "", "")

	t.Run("dubai hotel gets conditional frameworks", func(t *testing.T) {
		company := f.createCompany(t, "dubai", "hospitality")
		if err := f.frameworkService.AssignMandatoryFrameworks(ctx, company); err != nil {
			t.Fatalf("assigning: %v", err)
		}
		adoptions, err := f.frameworkService.ListForCompany(ctx, company.ID)
		if err != nil {
			t.Fatalf("listing: %v", err)
		}
		got := map[string]bool{}
		for _, cf := range adoptions {
			if !cf.IsAutoAssigned {
				t.Fatalf("expected only auto-assigned rows, got voluntary for %s", cf.FrameworkID)
			}
			got[cf.FrameworkID.String()] = true
		}
		for _, want := range []string{baseline.ID.String(), dst.ID.String(), climate.ID.String()} {
			if !got[want] {
				t.Fatalf("expected framework %s assigned, got %v", want, got)
			}
		}
		if len(adoptions) != 3 {
			t.Fatalf("expected 3 assignments, got %d", len(adoptions))
		}
	})

	t.Run("non-dubai generic company skips conditioned framework", func(t *testing.T) {
		company := f.createCompany(t, "sharjah", "all")
		if err := f.frameworkService.AssignMandatoryFrameworks(ctx, company); err != nil {
			t.Fatalf("assigning: %v", err)
		}
		adoptions, err := f.frameworkService.ListForCompany(ctx, company.ID)
		if err != nil {
			t.Fatalf("listing: %v", err)
		}
		for _, cf := range adoptions {
			if cf.FrameworkID == dst.ID {
				t.Fatal("dubai-conditioned framework must not be assigned outside dubai")
			}
		}
		if len(adoptions) != 2 {
			t.Fatalf("expected baseline and climate only, got %d rows", len(adoptions))
		}
	})
}

func TestAssignMandatoryFrameworksIdempotentAndPreservesVoluntary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createFramework(t, "baseline", types.FrameworkMandatory, "", "")
	f.createFramework(t, "gri", types.FrameworkVoluntary, "", "")
	company := f.createCompany(t, "dubai", "hospitality")

	if err := f.frameworkService.AddVoluntaryFramework(ctx, company.ID, "gri"); err != nil {
		t.Fatalf("adopting voluntary: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := f.frameworkService.AssignMandatoryFrameworks(ctx, company); err != nil {
			t.Fatalf("assigning (run %d): %v", i, err)
		}
	}

	adoptions, err := f.frameworkService.ListForCompany(ctx, company.ID)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(adoptions) != 2 {
		t.Fatalf("expected exactly 2 adoptions after repeated runs, got %d", len(adoptions))
	}
	voluntarySeen := false
	for _, cf := range adoptions {
		if !cf.IsAutoAssigned {
			voluntarySeen = true
		}
	}
	if !voluntarySeen {
		t.Fatal("voluntary adoption must survive mandatory reassignment")
	}
}

func TestVoluntaryFrameworkAdoption(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createFramework(t, "gri", types.FrameworkVoluntary, "", "")
	company := f.createCompany(t, "dubai", "hospitality")

	if err := f.frameworkService.AddVoluntaryFramework(ctx, company.ID, "nope"); err == nil {
		t.Fatal("expected unknown code to fail")
	} else {
		var apiErr *apierr.Error
		if !errors.As(err, &apiErr) || apiErr.Status != 404 {
			t.Fatalf("expected 404 for unknown code, got %v", err)
		}
	}

	if err := f.frameworkService.AddVoluntaryFramework(ctx, company.ID, "gri"); err != nil {
		t.Fatalf("adopting: %v", err)
	}
	if err := f.frameworkService.AddVoluntaryFramework(ctx, company.ID, "gri"); err == nil {
		t.Fatal("expected duplicate adoption to fail")
	} else {
		var apiErr *apierr.Error
		if !errors.As(err, &apiErr) || apiErr.Status != 400 {
			t.Fatalf("expected 400 for duplicate adoption, got %v", err)
		}
	}

	if err := f.frameworkService.RemoveVoluntaryFramework(ctx, company.ID, "gri"); err != nil {
		t.Fatalf("removing: %v", err)
	}
	adoptions, err := f.frameworkService.ListForCompany(ctx, company.ID)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(adoptions) != 0 {
		t.Fatalf("expected no adoptions after removal, got %d", len(adoptions))
	}
}
