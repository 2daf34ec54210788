package compliance

import "github.com/hpungsan/slate/internal/deck"

// DefaultMinSlideCount is the slide count below which a deck is flagged as thin.
const DefaultMinSlideCount = 10

// requiredFields lists, per layout, the members that must be present and
// non-empty, in reporting order.
var requiredFields = map[string][]string{
	deck.LayoutCover:                {"title"},
	deck.LayoutSectionDivider:       {"section_title"},
	deck.LayoutThreePillars:         {"title", "pillars"},
	deck.LayoutChart:                {"title", "chart_title"},
	deck.LayoutCompositeThree:       {"title", "components"},
	deck.LayoutCompositeFour:        {"title", "components"},
	deck.LayoutFiveComponentDiagram: {"title", "components"},
	deck.LayoutProcessSteps:         {"title", "components"},
	deck.LayoutStrategyOverview:     {"title", "body"},
	deck.LayoutStrategyTable:        {"title", "columns", "rows"},
	deck.LayoutRiskStatistics:       {"title", "columns", "rows"},
	deck.LayoutUseCases:             {"title", "cases"},
	deck.LayoutThankYou:             {"title"},
	deck.LayoutDisclosures:          {"disclosure_text"},
	deck.LayoutDefinitions:          {"definitions"},
}

// Layouts whose data must carry a disclaimer, footnote or caption.
var performanceLayouts = map[string]bool{
	deck.LayoutStrategyTable:  true,
	deck.LayoutRiskStatistics: true,
	deck.LayoutChart:          true,
}

// Any one of these satisfies the disclaimer rule.
var disclaimerFields = []string{"disclaimer", "footnote", "chart_caption"}

// Fields that brand rules require in upper case.
var titleFields = []string{"title", "section_title", "chart_title"}

// Composite layouts must flag exactly one component as the result.
var compositeLayouts = map[string]bool{
	deck.LayoutCompositeThree: true,
	deck.LayoutCompositeFour:  true,
}

const (
	requiredPillars            = 3
	recommendedDiagramElements = 4
)

// narrativeRule is an info-level check that at least one slide of a kind exists.
type narrativeRule struct {
	id          string
	layouts     []string
	message     string
	description string
	fix         string
}

var narrativeRules = []narrativeRule{
	{
		id:          "no_process_slide",
		layouts:     []string{deck.LayoutProcessSteps, deck.LayoutFiveComponentDiagram},
		message:     "No investment process slide",
		description: "Decks usually explain the investment process with a process_steps or five_component_diagram slide.",
		fix:         "Add a process_steps or five_component_diagram slide.",
	},
	{
		id:          "no_strategy_detail_slide",
		layouts:     []string{deck.LayoutStrategyOverview, deck.LayoutThreePillars, deck.LayoutCompositeThree, deck.LayoutCompositeFour},
		message:     "No strategy detail slide",
		description: "Decks usually describe the strategy with an overview, pillars or composite slide.",
		fix:         "Add a strategy_overview, three_pillars or composite slide.",
	},
	{
		id:          "no_use_cases_slide",
		layouts:     []string{deck.LayoutUseCases},
		message:     "No use cases slide",
		description: "A use_cases slide shows who the strategy is for.",
		fix:         "Add a use_cases slide.",
	},
}
