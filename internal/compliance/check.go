// Package compliance checks finished outlines against layout and brand rules.
package compliance

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/hpungsan/slate/internal/deck"
	"github.com/shopspring/decimal"
)

// Severity classifies an issue. Only errors block export.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one finding.
type Issue struct {
	ID          string   `json:"id"`
	Type        Severity `json:"type"`
	SlideIndex  *int     `json:"slide_index,omitempty"`
	SlideLayout string   `json:"slide_layout,omitempty"`
	Message     string   `json:"message"`
	Description string   `json:"description"`
	Fix         string   `json:"fix,omitempty"`
}

// Summary counts issues by severity.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

// Result is the full outcome of a check.
type Result struct {
	Issues    []Issue `json:"issues"`
	Summary   Summary `json:"summary"`
	Compliant bool    `json:"compliant"`
}

// Options tunes the checker. The zero value uses the defaults.
type Options struct {
	MinSlideCount int
}

// Check runs every rule over o. It never mutates o and never fails; issue
// order is fixed (deck-level rules, then slides in order, then narrative).
func Check(o deck.Outline, opts Options) Result {
	c := &checker{}
	minSlides := opts.MinSlideCount
	if minSlides <= 0 {
		minSlides = DefaultMinSlideCount
	}

	c.checkStructure(o, minSlides)
	for i, s := range o.Slides {
		c.checkSlide(i, s)
	}
	c.checkNarrative(o)

	res := Result{Issues: c.issues}
	if res.Issues == nil {
		res.Issues = []Issue{}
	}
	for _, is := range res.Issues {
		switch is.Type {
		case SeverityError:
			res.Summary.Errors++
		case SeverityWarning:
			res.Summary.Warnings++
		case SeverityInfo:
			res.Summary.Info++
		}
	}
	res.Compliant = res.Summary.Errors == 0
	return res
}

type checker struct {
	issues []Issue
}

func (c *checker) add(is Issue) {
	c.issues = append(c.issues, is)
}

func (c *checker) addSlide(i int, s deck.Slide, is Issue) {
	idx := i
	is.SlideIndex = &idx
	is.SlideLayout = s.Layout
	c.add(is)
}

func (c *checker) checkStructure(o deck.Outline, minSlides int) {
	if len(o.Slides) == 0 || o.Slides[0].Layout != deck.LayoutCover {
		c.add(Issue{
			ID:          "missing_cover",
			Type:        SeverityError,
			Message:     "First slide must be a cover",
			Description: "Every deck opens with a cover slide carrying the deck title.",
			Fix:         "Insert a cover slide at position 1.",
		})
	}

	terminal := []struct {
		layout   string
		severity Severity
		label    string
	}{
		{deck.LayoutThankYou, SeverityError, "thank you"},
		{deck.LayoutDisclosures, SeverityError, "disclosures"},
		{deck.LayoutDefinitions, SeverityWarning, "definitions"},
	}
	for _, t := range terminal {
		if hasLayout(o, t.layout) {
			continue
		}
		c.add(Issue{
			ID:          "missing_" + t.layout,
			Type:        t.severity,
			Message:     fmt.Sprintf("Deck has no %s slide", t.label),
			Description: fmt.Sprintf("A %s slide is required near the end of every deck.", t.layout),
			Fix:         fmt.Sprintf("Add a %s slide.", t.layout),
		})
	}

	if len(o.Slides) < minSlides {
		c.add(Issue{
			ID:          "low_slide_count",
			Type:        SeverityWarning,
			Message:     fmt.Sprintf("Deck has %d slides; at least %d are expected", len(o.Slides), minSlides),
			Description: "Short decks usually omit required narrative sections.",
			Fix:         fmt.Sprintf("Add %d more slide(s).", minSlides-len(o.Slides)),
		})
	}
}

func (c *checker) checkSlide(i int, s deck.Slide) {
	pos := i + 1
	missing := map[string]bool{}
	for _, field := range requiredFields[s.Layout] {
		if s.Present(field) {
			continue
		}
		missing[field] = true
		c.addSlide(i, s, Issue{
			ID:          fmt.Sprintf("slide_%d_missing_%s", i, field),
			Type:        SeverityError,
			Message:     fmt.Sprintf("Slide %d (%s) is missing %s", pos, s.Layout, field),
			Description: fmt.Sprintf("The %s layout requires a non-empty %s.", s.Layout, field),
			Fix:         fmt.Sprintf("Fill in %s on slide %d.", field, pos),
		})
	}

	c.checkCardinality(i, s, missing)

	if performanceLayouts[s.Layout] {
		c.checkDisclaimer(i, s)
		c.checkPercents(i, s)
	}

	for _, field := range titleFields {
		v := s.Field(field)
		if !hasLower(v) {
			continue
		}
		upper := strings.ToUpper(v)
		c.addSlide(i, s, Issue{
			ID:          fmt.Sprintf("slide_%d_uppercase_%s", i, field),
			Type:        SeverityWarning,
			Message:     fmt.Sprintf("Slide %d %s should be upper case", pos, field),
			Description: "Brand guidelines set titles in capitals.",
			Fix:         fmt.Sprintf("Change %s to %q.", field, upper),
		})
	}
}

func (c *checker) checkCardinality(i int, s deck.Slide, missing map[string]bool) {
	pos := i + 1

	if s.Layout == deck.LayoutThreePillars && !missing["pillars"] && len(s.Pillars) != requiredPillars {
		c.addSlide(i, s, Issue{
			ID:          fmt.Sprintf("slide_%d_pillar_count", i),
			Type:        SeverityError,
			Message:     fmt.Sprintf("Slide %d has %d pillars; exactly %d are required", pos, len(s.Pillars), requiredPillars),
			Description: "The three_pillars layout holds exactly three pillars.",
			Fix:         pillarFix(len(s.Pillars)),
		})
	}

	if compositeLayouts[s.Layout] && !missing["components"] {
		results := 0
		for _, comp := range s.Components {
			if comp.IsResult {
				results++
			}
		}
		if results != 1 {
			c.addSlide(i, s, Issue{
				ID:          fmt.Sprintf("slide_%d_result_count", i),
				Type:        SeverityError,
				Message:     fmt.Sprintf("Slide %d has %d result components; exactly one is required", pos, results),
				Description: "Composite layouts show several inputs and exactly one result.",
				Fix:         "Set is_result on exactly one component.",
			})
		}
	}

	if s.Layout == deck.LayoutFiveComponentDiagram && !missing["components"] && len(s.Components) != recommendedDiagramElements {
		c.addSlide(i, s, Issue{
			ID:          fmt.Sprintf("slide_%d_component_count", i),
			Type:        SeverityWarning,
			Message:     fmt.Sprintf("Slide %d has %d components; the diagram expects %d", pos, len(s.Components), recommendedDiagramElements),
			Description: "The five_component_diagram surrounds a centre with four components.",
			Fix:         fmt.Sprintf("Use exactly %d components.", recommendedDiagramElements),
		})
	}
}

func pillarFix(n int) string {
	if n < requiredPillars {
		return fmt.Sprintf("Add %d pillar(s).", requiredPillars-n)
	}
	return fmt.Sprintf("Remove %d pillar(s).", n-requiredPillars)
}

func (c *checker) checkDisclaimer(i int, s deck.Slide) {
	if slices.ContainsFunc(disclaimerFields, s.Present) {
		return
	}
	c.addSlide(i, s, Issue{
		ID:          fmt.Sprintf("slide_%d_missing_disclaimer", i),
		Type:        SeverityWarning,
		Message:     fmt.Sprintf("Slide %d shows performance data without a disclaimer", i+1),
		Description: "Performance figures need a disclaimer, footnote or caption.",
		Fix:         "Add a disclaimer or footnote.",
	})
}

// checkPercents flags bare numbers that look like unformatted percentages,
// in scalar fields (sorted by name) then table cells (row-major).
func (c *checker) checkPercents(i int, s deck.Slide) {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		c.percentIssue(i, s, name, s.Fields[name])
	}
	for r, row := range s.Rows {
		for col, v := range row {
			c.percentIssue(i, s, fmt.Sprintf("cell_%d_%d", r, col), v)
		}
	}
}

func (c *checker) percentIssue(i int, s deck.Slide, field, v string) {
	v = strings.TrimSpace(v)
	if !looksLikeBarePercent(v) {
		return
	}
	c.addSlide(i, s, Issue{
		ID:          fmt.Sprintf("slide_%d_percent_%s", i, field),
		Type:        SeverityInfo,
		Message:     fmt.Sprintf("Slide %d %s %q may be a percentage", i+1, field, v),
		Description: "Numbers up to 100 in performance data are usually percentages.",
		Fix:         fmt.Sprintf("Write %s%%.", v),
	})
}

var hundred = decimal.NewFromInt(100)

// looksLikeBarePercent reports whether v parses as a number no greater
// than 100 and lacks a trailing "%".
func looksLikeBarePercent(v string) bool {
	if v == "" || strings.HasSuffix(v, "%") {
		return false
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return false
	}
	return d.LessThanOrEqual(hundred)
}

func (c *checker) checkNarrative(o deck.Outline) {
	for _, r := range narrativeRules {
		if slices.ContainsFunc(r.layouts, func(l string) bool { return hasLayout(o, l) }) {
			continue
		}
		c.add(Issue{
			ID:          r.id,
			Type:        SeverityInfo,
			Message:     r.message,
			Description: r.description,
			Fix:         r.fix,
		})
	}
}

func hasLayout(o deck.Outline, layout string) bool {
	return slices.ContainsFunc(o.Slides, func(s deck.Slide) bool { return s.Layout == layout })
}

func hasLower(s string) bool {
	return strings.IndexFunc(s, unicode.IsLower) >= 0
}
