package payroll

import (
	"github.com/warp/household-payroll/generic"
)

// =============================================================================
// WARNING / AWARD EVALUATOR
// =============================================================================

// WarningThreshold is the number of warnings within a period that disqualifies
// the worker from the bonus. Not configurable.
const WarningThreshold = 3

// AwardEvaluation is the live reading of an award period's warnings.
type AwardEvaluation struct {
	WarningsCount int  `json:"warnings_count"`
	Disqualified  bool `json:"disqualified"`
	// NearThreshold is true at exactly one warning below the threshold.
	NearThreshold bool `json:"near_threshold"`
}

// EvaluateAwardPeriod counts notes with IsWarning set and dated within
// [start, end], both ends inclusive. NoteType is not consulted. The evaluator
// reports the condition only; it never changes a stored status.
func EvaluateAwardPeriod(notes []Note, start, end generic.Date) AwardEvaluation {
	period := generic.Period{Start: start, End: end}
	count := 0
	for _, n := range notes {
		if n.IsWarning && period.Contains(n.Date) {
			count++
		}
	}
	return AwardEvaluation{
		WarningsCount: count,
		Disqualified:  count >= WarningThreshold,
		NearThreshold: count == WarningThreshold-1,
	}
}

// EffectiveStatus reconciles the stored status with the live evaluation.
//
// Policy: disqualification is derived. Once the warning condition holds the
// effective status is disqualified whatever was stored. "awarded" is only ever
// set by an administrator and is reported as stored while the condition does
// not hold.
func EffectiveStatus(stored AwardStatus, eval AwardEvaluation) AwardStatus {
	if eval.Disqualified {
		return AwardDisqualified
	}
	if stored == "" {
		return AwardPending
	}
	return stored
}

// CheckTransition validates an administrator's status change against the live
// evaluation. Awarding a period whose condition holds is refused, as is
// clearing a disqualification the warnings still justify.
func CheckTransition(from, to AwardStatus, eval AwardEvaluation) error {
	if !to.Valid() {
		return &generic.ValidationError{Field: "status", Message: "unknown award status " + string(to)}
	}
	if eval.Disqualified && to != AwardDisqualified {
		return &generic.TransitionError{
			From:   string(from),
			To:     string(to),
			Reason: "period has reached the warning threshold",
		}
	}
	return nil
}

// CurrentAwardPeriod returns the period containing today. When several overlap
// the one starting latest wins.
func CurrentAwardPeriod(periods []AwardPeriod, today generic.Date) (AwardPeriod, bool) {
	var (
		current AwardPeriod
		found   bool
	)
	for _, p := range periods {
		if !p.Period().Contains(today) {
			continue
		}
		if !found || p.PeriodStart.After(current.PeriodStart) {
			current = p
			found = true
		}
	}
	return current, found
}
