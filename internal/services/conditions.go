package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/types"
)

// ConditionProfile is the slice of company state the evaluator consults:
// jurisdiction, sector, activity tags and wizard answers (site answers already
// overlaid onto company-wide ones by the caller).
type ConditionProfile struct {
	Emirate    string
	Sector     string
	Activities []string
	Answers    map[string]string
}

// ConditionEvaluator decides whether a conditional reporting element applies
// to a company. Conditions are free-text; recognition is by keyword, evaluated
// in a fixed priority order, and the first matching rule decides. Anything the
// evaluator cannot understand resolves to applicable: over-reporting is
// recoverable, a silently hidden obligation is not. Every such fallback is
// logged for audit visibility.
type ConditionEvaluator struct {
	log   *logger.Logger
	rules []conditionRule
}

type conditionRule struct {
	name     string
	keywords []string
	// eval returns (applicable, decided). decided=false falls through to the
	// fail-open default.
	eval func(expr string, p *ConditionProfile) (bool, bool)
}

var roomsThresholdRe = regexp.MustCompile(`(\d+)\s*rooms`)

func NewConditionEvaluator(baseLog *logger.Logger) *ConditionEvaluator {
	evalLog := baseLog.With("service", "ConditionEvaluator")
	ce := &ConditionEvaluator{log: evalLog}
	ce.rules = []conditionRule{
		{
			name:     "jurisdiction",
			keywords: []string{"dubai"},
			eval: func(expr string, p *ConditionProfile) (bool, bool) {
				return strings.EqualFold(strings.TrimSpace(p.Emirate), types.EmirateDubai), true
			},
		},
		{
			name:     "sector",
			keywords: []string{"hospitality"},
			eval: func(expr string, p *ConditionProfile) (bool, bool) {
				sector := strings.ToLower(strings.TrimSpace(p.Sector))
				return sector == types.SectorHospitality || sector == "hotel", true
			},
		},
		{
			name:     "activity",
			keywords: []string{"food service", "restaurant"},
			eval: func(expr string, p *ConditionProfile) (bool, bool) {
				terms := []string{"food", "restaurant", "catering", "dining"}
				for _, activity := range p.Activities {
					lowered := strings.ToLower(activity)
					for _, term := range terms {
						if strings.Contains(lowered, term) {
							return true, true
						}
					}
				}
				return false, true
			},
		},
		{
			name:     "rooms_threshold",
			keywords: []string{"rooms"},
			eval: func(expr string, p *ConditionProfile) (bool, bool) {
				m := roomsThresholdRe.FindStringSubmatch(expr)
				if m == nil {
					return false, false
				}
				threshold, err := strconv.Atoi(m[1])
				if err != nil {
					return false, false
				}
				answer, ok := lookupAnswer(p.Answers, "room")
				if !ok {
					return false, false
				}
				count, err := strconv.Atoi(strings.TrimSpace(answer))
				if err != nil {
					// Non-numeric room-count answers skip the rule.
					return false, false
				}
				return count >= threshold, true
			},
		},
		{
			name:     "pool",
			keywords: []string{"pool", "swimming"},
			eval: func(expr string, p *ConditionProfile) (bool, bool) {
				return evalBooleanAmenity(p.Answers, []string{"pool", "swimming"})
			},
		},
		{
			name:     "spa",
			keywords: []string{"spa", "wellness"},
			eval: func(expr string, p *ConditionProfile) (bool, bool) {
				return evalBooleanAmenity(p.Answers, []string{"spa", "wellness"})
			},
		},
		{
			name:     "generator",
			keywords: []string{"generator", "backup"},
			eval: func(expr string, p *ConditionProfile) (bool, bool) {
				return evalBooleanAmenity(p.Answers, []string{"generator", "backup"})
			},
		},
		{
			name:     "fleet",
			keywords: []string{"fleet", "vehicles"},
			eval: func(expr string, p *ConditionProfile) (bool, bool) {
				answer, ok := lookupAnswer(p.Answers, "fleet", "vehicle")
				if !ok {
					// Like the amenity rules: no fleet answer means no fleet.
					return false, true
				}
				if truthyAnswer(answer) {
					return true, true
				}
				if n, err := strconv.Atoi(strings.TrimSpace(answer)); err == nil {
					return n > 0, true
				}
				return false, true
			},
		},
	}
	return ce
}

// IsApplicable evaluates a condition expression against a profile. Empty
// expressions and unrecognized or unevaluable ones are applicable.
func (ce *ConditionEvaluator) IsApplicable(conditionLogic string, profile *ConditionProfile) (applicable bool) {
	expr := strings.ToLower(strings.TrimSpace(conditionLogic))
	if expr == "" {
		return true
	}
	if profile == nil {
		profile = &ConditionProfile{}
	}

	defer func() {
		if r := recover(); r != nil {
			ce.log.Warn("condition evaluation panicked, defaulting to applicable",
				"condition", conditionLogic, "panic", r)
			applicable = true
		}
	}()

	for _, rule := range ce.rules {
		if !matchesKeyword(expr, rule.keywords) {
			continue
		}
		verdict, decided := rule.eval(expr, profile)
		if decided {
			return verdict
		}
		ce.log.Warn("condition rule matched but could not evaluate, defaulting to applicable",
			"rule", rule.name, "condition", conditionLogic)
		return true
	}

	ce.log.Warn("no condition rule recognized, defaulting to applicable",
		"condition", conditionLogic)
	return true
}

func matchesKeyword(expr string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(expr, kw) {
			return true
		}
	}
	return false
}

// lookupAnswer finds the first answer whose question key contains one of the
// given terms.
func lookupAnswer(answers map[string]string, terms ...string) (string, bool) {
	for key, value := range answers {
		lowered := strings.ToLower(key)
		for _, term := range terms {
			if strings.Contains(lowered, term) {
				return value, true
			}
		}
	}
	return "", false
}

func truthyAnswer(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "true", "1", "have", "has":
		return true
	}
	return false
}

// evalBooleanAmenity decides an amenity condition from the wizard answers. A
// recognized amenity with no answer on file decides not-applicable: amenity
// elements are activated by an affirmative answer, never by its absence.
func evalBooleanAmenity(answers map[string]string, terms []string) (bool, bool) {
	answer, ok := lookupAnswer(answers, terms...)
	if !ok {
		return false, true
	}
	return truthyAnswer(answer), true
}
