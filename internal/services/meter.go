package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/apierr"
	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/repos"
	"github.com/emaratgreen/esg-backend/internal/types"
)

// computedEmissionTerms mark elements that are dashboard calculations, not
// physically metered quantities. No meter is provisioned for them.
var computedEmissionTerms = []string{"emission", "ghg", "co2", "carbon footprint"}

func isComputedEmissionElement(name string) bool {
	lowered := strings.ToLower(name)
	for _, term := range computedEmissionTerms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// meterTypeKeywords maps name keywords to the fixed meter type vocabulary, in
// match priority order.
var meterTypeKeywords = []struct {
	keywords  []string
	meterType string
}{
	{[]string{"district cooling", "cooling"}, types.MeterTypeCooling},
	{[]string{"renewable", "solar"}, types.MeterTypeRenewable},
	{[]string{"electricity", "electric", "power"}, types.MeterTypeElectricity},
	{[]string{"water"}, types.MeterTypeWater},
	{[]string{"waste"}, types.MeterTypeWaste},
	{[]string{"generator", "diesel"}, types.MeterTypeGenerator},
	{[]string{"vehicle", "fleet", "petrol"}, types.MeterTypeVehicle},
	{[]string{"lpg", "gas"}, types.MeterTypeLPG},
}

// carbonDependencyHints reads the element's carbon-spec dependency list and
// maps known dependencies to meter types. These hints take priority over name
// keywords when matching meters.
func carbonDependencyHints(element *types.FrameworkElement) []string {
	if element == nil || element.CarbonSpecs == nil {
		return nil
	}
	raw, ok := element.CarbonSpecs["dependencies"]
	if !ok {
		return nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	var hints []string
	for _, entry := range list {
		dep, ok := entry.(string)
		if !ok {
			continue
		}
		switch {
		case strings.Contains(dep, "grid") || strings.Contains(dep, "electricity"):
			hints = append(hints, types.MeterTypeElectricity)
		case strings.Contains(dep, "cooling"):
			hints = append(hints, types.MeterTypeCooling)
		case strings.Contains(dep, "water"):
			hints = append(hints, types.MeterTypeWater)
		}
	}
	return hints
}

// meterTypeForElement derives a meter type label from the element. An explicit
// meter type wins; otherwise the display name is matched against the keyword
// vocabulary; unknown names fall back to a normalized form of the name itself.
func meterTypeForElement(element *types.FrameworkElement) string {
	if element.MeterType != "" {
		return strings.ToLower(element.MeterType)
	}
	lowered := strings.ToLower(element.Name)
	for _, entry := range meterTypeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lowered, kw) {
				return entry.meterType
			}
		}
	}
	return strings.ReplaceAll(strings.TrimSpace(lowered), " ", "_")
}

func elementNeedsMeter(element *types.FrameworkElement) bool {
	if element == nil {
		return false
	}
	if isComputedEmissionElement(element.Name) {
		return false
	}
	return element.IsMetered || len(element.CarbonSpecs) > 0
}

type MeterService interface {
	// ProvisionMeters derives required meters from the checklist: one meter per
	// derived type per (company, site), never duplicating an existing type.
	ProvisionMeters(ctx context.Context, company *types.Company, siteID *uuid.UUID) ([]*types.Meter, error)
	Create(ctx context.Context, meter *types.Meter) (*types.Meter, error)
	List(ctx context.Context, companyID uuid.UUID, siteID *uuid.UUID) ([]*types.Meter, error)
	UpdateStatus(ctx context.Context, companyID, meterID uuid.UUID, status string) (*types.Meter, error)
	Delete(ctx context.Context, companyID, meterID uuid.UUID) error
}

type meterService struct {
	db             *gorm.DB
	log            *logger.Logger
	meterRepo      repos.MeterRepo
	checklistRepo  repos.ChecklistRepo
	submissionRepo repos.SubmissionRepo
}

func NewMeterService(db *gorm.DB, log *logger.Logger, meterRepo repos.MeterRepo, checklistRepo repos.ChecklistRepo, submissionRepo repos.SubmissionRepo) MeterService {
	serviceLog := log.With("service", "MeterService")
	return &meterService{
		db:             db,
		log:            serviceLog,
		meterRepo:      meterRepo,
		checklistRepo:  checklistRepo,
		submissionRepo: submissionRepo,
	}
}

func (ms *meterService) ProvisionMeters(ctx context.Context, company *types.Company, siteID *uuid.UUID) ([]*types.Meter, error) {
	var created []*types.Meter
	err := ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := ms.checklistRepo.GetForScope(ctx, tx, company.ID, siteID)
		if err != nil {
			return fmt.Errorf("fetching checklist: %w", err)
		}
		provisioned := map[string]struct{}{}
		for _, item := range items {
			if !elementNeedsMeter(item.Element) {
				continue
			}
			meterType := meterTypeForElement(item.Element)
			if meterType == "" {
				continue
			}
			if _, done := provisioned[meterType]; done {
				continue
			}
			provisioned[meterType] = struct{}{}
			exists, err := ms.meterRepo.TypeExists(ctx, tx, company.ID, siteID, meterType)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			meter := &types.Meter{
				CompanyID:     company.ID,
				SiteID:        siteID,
				Name:          fmt.Sprintf("Main %s meter", strings.ReplaceAll(meterType, "_", " ")),
				Type:          meterType,
				Status:        types.MeterStatusActive,
				IsAutoCreated: true,
			}
			if _, err := ms.meterRepo.Create(ctx, tx, []*types.Meter{meter}); err != nil {
				return fmt.Errorf("creating meter %q: %w", meterType, err)
			}
			created = append(created, meter)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ms.log.Info("Meters provisioned", "company_id", company.ID, "created", len(created))
	return created, nil
}

func (ms *meterService) Create(ctx context.Context, meter *types.Meter) (*types.Meter, error) {
	if meter == nil || meter.Name == "" {
		return nil, apierr.Validation("meter_name_required", fmt.Errorf("meter name is required"))
	}
	if meter.Type == "" {
		return nil, apierr.Validation("meter_type_required", fmt.Errorf("meter type is required"))
	}
	meter.Type = strings.ToLower(meter.Type)
	if meter.Status == "" {
		meter.Status = types.MeterStatusActive
	}
	if meter.Status != types.MeterStatusActive && meter.Status != types.MeterStatusInactive {
		return nil, apierr.Validation("meter_status_invalid", fmt.Errorf("invalid meter status %q", meter.Status))
	}
	if _, err := ms.meterRepo.Create(ctx, nil, []*types.Meter{meter}); err != nil {
		return nil, err
	}
	return meter, nil
}

func (ms *meterService) List(ctx context.Context, companyID uuid.UUID, siteID *uuid.UUID) ([]*types.Meter, error) {
	return ms.meterRepo.GetForScope(ctx, nil, companyID, siteID)
}

func (ms *meterService) getOwnedMeter(ctx context.Context, companyID, meterID uuid.UUID) (*types.Meter, error) {
	meters, err := ms.meterRepo.GetByIDs(ctx, nil, []uuid.UUID{meterID})
	if err != nil {
		return nil, err
	}
	if len(meters) == 0 || meters[0].CompanyID != companyID {
		return nil, apierr.NotFound("meter_not_found", fmt.Errorf("meter %s not found", meterID))
	}
	return meters[0], nil
}

func (ms *meterService) UpdateStatus(ctx context.Context, companyID, meterID uuid.UUID, status string) (*types.Meter, error) {
	if status != types.MeterStatusActive && status != types.MeterStatusInactive {
		return nil, apierr.Validation("meter_status_invalid", fmt.Errorf("invalid meter status %q", status))
	}
	meter, err := ms.getOwnedMeter(ctx, companyID, meterID)
	if err != nil {
		return nil, err
	}
	meter.Status = status
	if err := ms.meterRepo.Update(ctx, nil, meter); err != nil {
		return nil, err
	}
	return meter, nil
}

// Delete refuses to remove a meter that has submission data behind it.
func (ms *meterService) Delete(ctx context.Context, companyID, meterID uuid.UUID) error {
	meter, err := ms.getOwnedMeter(ctx, companyID, meterID)
	if err != nil {
		return err
	}
	hasData, err := ms.submissionRepo.MeterHasData(ctx, nil, meter.ID)
	if err != nil {
		return err
	}
	if hasData {
		return apierr.Validation("meter_has_data", fmt.Errorf("meter %s has submission data and cannot be deleted", meterID))
	}
	return ms.meterRepo.Delete(ctx, nil, []uuid.UUID{meter.ID})
}
