package services

import (
	"testing"

	"github.com/emaratgreen/esg-backend/internal/logger"
)

func TestConditionEvaluator(t *testing.T) {
	evaluator := NewConditionEvaluator(logger.NewNop())

	dubaiHotel := &ConditionProfile{
		Emirate: "dubai",
		Sector:  "hospitality",
		Answers: map[string]string{
			"has_swimming_pool":     "yes",
			"has_spa_facility":      "no",
			"has_backup_generators": "true",
			"number_of_rooms":       "120",
		},
		Activities: []string{"hotel operation", "restaurant"},
	}
	abuDhabiOffice := &ConditionProfile{
		Emirate: "abu dhabi",
		Sector:  "all",
		Answers: map[string]string{
			"has_swimming_pool":     "no",
			"has_backup_generators": "no",
			"number_of_rooms":       "0",
		},
	}

	tests := []struct {
		name      string
		condition string
		profile   *ConditionProfile
		want      bool
	}{
		{"empty condition applies", "", abuDhabiOffice, true},
		{"dubai jurisdiction matches", "Applies to establishments in Dubai", dubaiHotel, true},
		{"dubai jurisdiction excludes other emirates", "Applies to establishments in Dubai", abuDhabiOffice, false},
		{"hospitality sector matches", "Applies to the hospitality sector", dubaiHotel, true},
		{"hospitality sector excludes others", "Applies to the hospitality sector", abuDhabiOffice, false},
		{"hotel counts as hospitality", "Applies to the hospitality sector", &ConditionProfile{Sector: "hotel"}, true},
		{"food service activity matches", "Applies to food service operations such as restaurants", dubaiHotel, true},
		{"food service activity excludes others", "Applies to food service operations such as restaurants", abuDhabiOffice, false},
		{"room threshold met", "Applies to hotels with 50 rooms or more", dubaiHotel, true},
		{"room threshold not met", "Applies to hotels with 50 rooms or more", abuDhabiOffice, false},
		{"pool present", "Applies to properties with a swimming pool", dubaiHotel, true},
		{"pool absent", "Applies to properties with a swimming pool", abuDhabiOffice, false},
		{"spa answered no", "Applies to properties operating a spa or wellness facility", dubaiHotel, false},
		{"generator present", "Applies when the company operates backup generators on site", dubaiHotel, true},
		{"generator absent", "Applies when the company operates backup generators on site", abuDhabiOffice, false},
		{"unrecognized condition fails open", "Applies during leap years only", abuDhabiOffice, true},
		{"nil profile fails open", "Applies to some unknown situation", nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := evaluator.IsApplicable(tc.condition, tc.profile)
			if got != tc.want {
				t.Fatalf("IsApplicable(%q) = %v, want %v", tc.condition, got, tc.want)
			}
		})
	}
}

func TestConditionEvaluatorNonNumericRoomAnswerFailsOpen(t *testing.T) {
	evaluator := NewConditionEvaluator(logger.NewNop())
	profile := &ConditionProfile{
		Answers: map[string]string{"number_of_rooms": "plenty"},
	}
	// A matched rule that cannot evaluate falls through to applicable.
	if !evaluator.IsApplicable("Applies to hotels with 50 rooms or more", profile) {
		t.Fatal("expected unevaluable room threshold to default to applicable")
	}
}

func TestConditionEvaluatorMissingAmenityAnswerExcludes(t *testing.T) {
	evaluator := NewConditionEvaluator(logger.NewNop())
	profile := &ConditionProfile{Answers: map[string]string{}}
	// Amenity elements are activated by an affirmative answer; an unanswered
	// wizard must not pull them in.
	if evaluator.IsApplicable("Applies to properties with a swimming pool", profile) {
		t.Fatal("expected missing pool answer to exclude the element")
	}
	if evaluator.IsApplicable("Applies when the company operates backup generators on site", profile) {
		t.Fatal("expected missing generator answer to exclude the element")
	}
}

func TestConditionEvaluatorFleetRule(t *testing.T) {
	evaluator := NewConditionEvaluator(logger.NewNop())

	withFleet := &ConditionProfile{Answers: map[string]string{"operates_vehicle_fleet": "yes"}}
	if !evaluator.IsApplicable("Applies to companies operating a vehicle fleet", withFleet) {
		t.Fatal("expected fleet=yes to apply")
	}
	countedFleet := &ConditionProfile{Answers: map[string]string{"fleet_size": "12"}}
	if !evaluator.IsApplicable("Applies to companies operating a vehicle fleet", countedFleet) {
		t.Fatal("expected positive fleet count to apply")
	}
	noFleet := &ConditionProfile{Answers: map[string]string{"operates_vehicle_fleet": "no"}}
	if evaluator.IsApplicable("Applies to companies operating a vehicle fleet", noFleet) {
		t.Fatal("expected fleet=no to not apply")
	}
	unanswered := &ConditionProfile{Answers: map[string]string{}}
	if evaluator.IsApplicable("Applies to companies operating a vehicle fleet", unanswered) {
		t.Fatal("expected missing fleet answer to not apply")
	}
}
