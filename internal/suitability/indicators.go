package suitability

import (
	"regexp"
	"strings"
)

// Category is a family of educational indicator keywords.
type Category string

const (
	CategoryAcademic      Category = "academic"
	CategoryInstructional Category = "instructional"
	CategoryScientific    Category = "scientific"
	CategoryAnalytical    Category = "analytical"
	CategoryQuantitative  Category = "quantitative"
)

// Categories lists every indicator category in report order.
func Categories() []Category {
	return []Category{
		CategoryAcademic,
		CategoryInstructional,
		CategoryScientific,
		CategoryAnalytical,
		CategoryQuantitative,
	}
}

// indicatorTerms are regexp fragments; a trailing \w* accepts inflections.
var indicatorTerms = map[Category][]string{
	CategoryAcademic: {
		`defin\w*`, `concept\w*`, `theor\w*`, `principle\w*`, `research\w*`,
		`hypothes\w*`, `evidence`, `framework\w*`, `methodolog\w*`, `scholar\w*`,
		`thes[ie]s`, `studies`, `study`,
	},
	CategoryInstructional: {
		`learn\w*`, `understand\w*`, `explain\w*`, `example\w*`, `for instance`,
		`such as`, `steps?`, `lesson\w*`, `objectives?`, `exercises?`,
		`note that`, `remember`, `important\w*`, `key point\w*`,
	},
	CategoryScientific: {
		`experiment\w*`, `observ\w*`, `data`, `measur\w*`, `results?`,
		`variables?`, `process\w*`, `systems?`, `energy`, `cells?`,
		`molecul\w*`, `reactions?`, `organisms?`, `forces?`,
	},
	CategoryAnalytical: {
		`therefore`, `because`, `consequently`, `however`, `thus`,
		`compar\w*`, `contrast\w*`, `caus\w*`, `effects?`, `implicat\w*`,
		`relationships?`, `factors?`, `in conclusion`, `whereas`,
	},
	CategoryQuantitative: {
		`\d+(?:\.\d+)?`, `percent\w*`, `ratios?`, `equations?`, `formula\w*`,
		`calculat\w*`, `statistic\w*`, `probabilit\w*`, `average`, `rates?`,
		`proportion\w*`,
	},
}

func compileIndicators() map[Category]*regexp.Regexp {
	out := make(map[Category]*regexp.Regexp, len(indicatorTerms))
	for cat, terms := range indicatorTerms {
		out[cat] = regexp.MustCompile(`(?i)\b(?:` + strings.Join(terms, `|`) + `)\b`)
	}
	return out
}
