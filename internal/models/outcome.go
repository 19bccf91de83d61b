package models

// Condition identifies when a preference measurement was taken relative to the choice.
type Condition string

const (
	ConditionBefore Condition = "Before Choice" // Ratings before the participant chooses
	ConditionAfter  Condition = "After Choice"  // Ratings after the choice is made
)

// Conditions returns the fixed condition order used by every outcome pair.
func Conditions() []Condition {
	return []Condition{ConditionBefore, ConditionAfter}
}

// OutcomeRecord is one data point: preference scores for both snacks under a condition.
// Records produced by a simulator are never modified after creation.
type OutcomeRecord struct {
	Condition Condition `json:"condition" yaml:"condition"`
	Granola   float64   `json:"granola" yaml:"granola"`
	Chocolate float64   `json:"chocolate" yaml:"chocolate"`
}

// Gap returns the preference gap (granola minus chocolate).
// A positive gap means the healthy option is preferred.
func (o OutcomeRecord) Gap() float64 {
	return o.Granola - o.Chocolate
}

// OutcomePair holds the Before and After records of one run, always in that order.
type OutcomePair [2]OutcomeRecord

// Before returns the Before Choice record.
func (p OutcomePair) Before() OutcomeRecord { return p[0] }

// After returns the After Choice record.
func (p OutcomePair) After() OutcomeRecord { return p[1] }

// ByCondition returns the record for c and whether it was found.
func (p OutcomePair) ByCondition(c Condition) (OutcomeRecord, bool) {
	for _, rec := range p {
		if rec.Condition == c {
			return rec, true
		}
	}
	return OutcomeRecord{}, false
}

// Records returns the pair as a slice for JSON and template consumers.
func (p OutcomePair) Records() []OutcomeRecord {
	return []OutcomeRecord{p[0], p[1]}
}

// referenceDataset holds the published human measurements.
var referenceDataset = OutcomePair{
	{Condition: ConditionBefore, Granola: 92, Chocolate: 114},
	{Condition: ConditionAfter, Granola: 108, Chocolate: 99},
}

// ReferenceDataset returns the fixed human-experiment data. The returned value
// is a copy; callers cannot alter the dataset.
func ReferenceDataset() OutcomePair {
	return referenceDataset
}
