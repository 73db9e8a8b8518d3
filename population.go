package pedigree

import "sort"

// Population keys understood by the default table.
const (
	EuropeanAncestry = "european_ancestry"
	AfricanAmerican  = "african_american"
	General          = "general"
	Custom1          = "custom1"
	Custom2          = "custom2"
)

// FrequencyTable maps a condition and a population to the frequency q of the
// disease allele used to seed founders. A FrequencyTable is never modified
// after construction, so it can be shared between pedigrees.
type FrequencyTable struct {
	rows map[string]map[string]float64
}

// NewFrequencyTable copies rows (condition -> population -> q) into a new
// table.
func NewFrequencyTable(rows map[string]map[string]float64) *FrequencyTable {
	t := &FrequencyTable{rows: make(map[string]map[string]float64, len(rows))}
	for condition, pops := range rows {
		row := make(map[string]float64, len(pops))
		for pop, q := range pops {
			row[pop] = q
		}
		t.rows[condition] = row
	}

	return t
}

// DefaultFrequencies returns the built-in carrier frequencies for five
// autosomal recessive conditions.
func DefaultFrequencies() *FrequencyTable {
	return NewFrequencyTable(map[string]map[string]float64{
		"cf": {
			EuropeanAncestry: 0.029,
			AfricanAmerican:  0.0067,
			General:          0.025,
			Custom1:          0.0,
			Custom2:          0.0,
		},
		"sma": {
			EuropeanAncestry: 0.017,
			AfricanAmerican:  0.019,
			General:          0.018,
			Custom1:          0.0,
			Custom2:          0.0,
		},
		"tay": {
			EuropeanAncestry: 0.0034, // Ashkenazi proxy is ~0.034
			AfricanAmerican:  0.0013,
			General:          0.002,
			Custom1:          0.0,
			Custom2:          0.0,
		},
		"pku": {
			EuropeanAncestry: 0.02,
			AfricanAmerican:  0.005,
			General:          0.015,
			Custom1:          0.0,
			Custom2:          0.0,
		},
		"hemo": {
			EuropeanAncestry: 0.11,
			AfricanAmerican:  0.014,
			General:          0.08,
			Custom1:          0.0,
			Custom2:          0.0,
		},
	})
}

// Frequency looks up q for a condition and population. The boolean is false
// when either key is unknown.
func (t *FrequencyTable) Frequency(condition, population string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	row, ok := t.rows[condition]
	if !ok {
		return 0, false
	}
	q, ok := row[population]
	return q, ok
}

// Conditions lists the condition keys in sorted order.
func (t *FrequencyTable) Conditions() []string {
	out := make([]string, 0, len(t.rows))
	for condition := range t.rows {
		out = append(out, condition)
	}
	sort.Strings(out)
	return out
}

// Populations lists the population keys known for a condition in sorted
// order.
func (t *FrequencyTable) Populations(condition string) []string {
	row := t.rows[condition]
	out := make([]string, 0, len(row))
	for pop := range row {
		out = append(out, pop)
	}
	sort.Strings(out)
	return out
}

// ConditionName takes a condition code and returns its standard name.
func ConditionName(code string) string {
	name := "NA"
	switch code {
	case "cf":
		name = "Cystic Fibrosis"
	case "sma":
		name = "Spinal Muscular Atrophy"
	case "tay":
		name = "Tay-Sachs Disease"
	case "pku":
		name = "Phenylketonuria"
	case "hemo":
		name = "Hemochromatosis"
	}

	return name
}
