package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/emaratgreen/esg-backend/internal/types"
)

func TestChecklistGenerate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fw := f.createFramework(t, "baseline", types.FrameworkMandatory, "", "")
	electricity := f.createElement(t, fw, &types.FrameworkElement{
		Name:    "Electricity Consumption",
		Cadence: types.CadenceMonthly,
	})
	generator := f.createElement(t, fw, &types.FrameworkElement{
		Name:           "Generator Fuel",
		Type:           types.ElementConditional,
		ConditionLogic: "operates backup generators",
		Cadence:        types.CadenceMonthly,
	})
	noCadence := f.createElement(t, fw, &types.FrameworkElement{
		Name: "Sustainability Policy",
	})

	company := f.createCompany(t, "dubai", "hospitality")

	items, err := f.checklist.Generate(ctx, company, nil)
	if err != nil {
		t.Fatalf("generating: %v", err)
	}
	byElement := map[uuid.UUID]*types.ChecklistItem{}
	for _, item := range items {
		byElement[item.ElementID] = item
	}
	if _, ok := byElement[electricity.ID]; !ok {
		t.Fatal("must-have element missing from checklist")
	}
	if _, ok := byElement[generator.ID]; ok {
		t.Fatal("conditional element included without a matching profile answer")
	}
	if got := byElement[noCadence.ID].Cadence; got != types.CadenceAnnually {
		t.Fatalf("expected blank cadence to default to annually, got %q", got)
	}

	// Answering the generator question flips the conditional element in.
	f.answer(t, company.ID, "has_backup_generators", "yes")
	items, err = f.checklist.Generate(ctx, company, nil)
	if err != nil {
		t.Fatalf("regenerating: %v", err)
	}
	found := false
	for _, item := range items {
		if item.ElementID == generator.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("conditional element missing after affirmative answer")
	}

	// Flipping the answer back removes it again.
	f.answer(t, company.ID, "has_backup_generators", "no")
	items, err = f.checklist.Generate(ctx, company, nil)
	if err != nil {
		t.Fatalf("regenerating: %v", err)
	}
	for _, item := range items {
		if item.ElementID == generator.ID {
			t.Fatal("conditional element survived a negative answer")
		}
	}
}

func TestChecklistGenerateReplacesRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fw := f.createFramework(t, "baseline", types.FrameworkMandatory, "", "")
	f.createElement(t, fw, &types.FrameworkElement{Name: "Water Consumption", Cadence: types.CadenceMonthly})
	f.createElement(t, fw, &types.FrameworkElement{Name: "Waste Generated", Cadence: types.CadenceMonthly})
	company := f.createCompany(t, "dubai", "hospitality")

	first, err := f.checklist.Generate(ctx, company, nil)
	if err != nil {
		t.Fatalf("generating: %v", err)
	}
	second, err := f.checklist.Generate(ctx, company, nil)
	if err != nil {
		t.Fatalf("regenerating: %v", err)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 rows per run, got %d then %d", len(first), len(second))
	}

	stored, err := f.checklist.Get(ctx, company.ID, nil)
	if err != nil {
		t.Fatalf("reading checklist: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected old rows replaced, found %d rows", len(stored))
	}
	oldIDs := map[uuid.UUID]bool{}
	for _, item := range first {
		oldIDs[item.ID] = true
	}
	for _, item := range stored {
		if oldIDs[item.ID] {
			t.Fatal("regeneration must issue fresh row ids")
		}
	}
}

func TestChecklistSectorFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fw := f.createFramework(t, "baseline", types.FrameworkMandatory, "", "")
	generic := f.createElement(t, fw, &types.FrameworkElement{Name: "Energy Use"})
	hotelOnly := f.createElement(t, fw, &types.FrameworkElement{
		Name:   "Occupied Room Nights",
		Sector: "hospitality",
	})

	office := f.createCompany(t, "sharjah", "all")
	items, err := f.checklist.Generate(ctx, office, nil)
	if err != nil {
		t.Fatalf("generating: %v", err)
	}
	for _, item := range items {
		if item.ElementID == hotelOnly.ID {
			t.Fatal("hospitality-scoped element leaked into a generic-sector checklist")
		}
	}

	hotel := f.createCompany(t, "dubai", "hospitality")
	items, err = f.checklist.Generate(ctx, hotel, nil)
	if err != nil {
		t.Fatalf("generating: %v", err)
	}
	seen := map[uuid.UUID]bool{}
	for _, item := range items {
		seen[item.ElementID] = true
	}
	if !seen[generic.ID] || !seen[hotelOnly.ID] {
		t.Fatal("hospitality company should get both generic and sector elements")
	}
}

func TestChecklistSiteScopeUsesSiteAnswers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fw := f.createFramework(t, "baseline", types.FrameworkMandatory, "", "")
	pool := f.createElement(t, fw, &types.FrameworkElement{
		Name:           "Pool Water Use",
		Type:           types.ElementConditional,
		ConditionLogic: "has a swimming pool",
	})
	company := f.createCompany(t, "dubai", "hospitality")

	site := &types.Site{CompanyID: company.ID, Name: "Marina Branch"}
	if _, err := f.siteRepo.Create(ctx, nil, []*types.Site{site}); err != nil {
		t.Fatalf("creating site: %v", err)
	}

	// Company-wide: no pool. Site: pool.
	f.answer(t, company.ID, "has_swimming_pool", "no")
	siteAnswer := &types.CompanyProfileAnswer{
		CompanyID:   company.ID,
		SiteID:      &site.ID,
		QuestionKey: "has_swimming_pool",
		Answer:      "yes",
	}
	if _, err := f.profileRepo.UpsertAnswer(ctx, nil, siteAnswer); err != nil {
		t.Fatalf("saving site answer: %v", err)
	}

	companyItems, err := f.checklist.Generate(ctx, company, nil)
	if err != nil {
		t.Fatalf("generating company checklist: %v", err)
	}
	for _, item := range companyItems {
		if item.ElementID == pool.ID {
			t.Fatal("pool element should not apply company-wide")
		}
	}

	siteItems, err := f.checklist.Generate(ctx, company, &site.ID)
	if err != nil {
		t.Fatalf("generating site checklist: %v", err)
	}
	found := false
	for _, item := range siteItems {
		if item.ElementID == pool.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("site answer should pull the pool element into the site checklist")
	}
}
