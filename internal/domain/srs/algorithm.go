package srs

import (
	"time"

	"github.com/homeroomhq/homeroom-api/internal/domain"
)

// calculateNewEaseFactor determines the new ease factor based on the review
// outcome.
//
// The ease factor represents the card's difficulty: higher values mean the
// card is easier and intervals grow faster. "Again" and "hard" apply fixed
// penalties, "good" leaves the factor unchanged, "easy" applies a fixed
// bonus. The result is always clamped to [MinEaseFactor, MaxEaseFactor], so
// no sequence of outcomes can push the factor below the floor.
func calculateNewEaseFactor(
	currentEF float64,
	outcome domain.ReviewOutcome,
	params *Params,
) float64 {
	newEF := currentEF + params.EaseFactorAdjustment[outcome]

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}
	if newEF > params.MaxEaseFactor {
		newEF = params.MaxEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the new interval, in fractional days,
// from the review outcome and the state prior to this review.
//
// Algorithm behavior:
//   - "Again": reset to the minimum interval (the relearn delay), the only
//     transition that shrinks the interval below a day.
//   - Intervals under one day mean the card is in the learning phase (new
//     card, or relearning after "again"): use the per-outcome first-review
//     intervals.
//   - Right after a lapse (repetition count 0 with a graduated interval),
//     "good" respaces by the lapse multiplier instead of the full ease
//     factor.
//   - Normal case: "good" multiplies by the ease factor; "hard" uses the
//     smaller hard multiplier, which stays strictly below the ease factor
//     floor so hard always respaces shorter than good; "easy" multiplies by
//     the ease factor and the easy bonus.
//
// The returned interval is strictly positive for every outcome.
func calculateNewInterval(
	currentInterval float64,
	repetitionCount int,
	easeFactor float64,
	outcome domain.ReviewOutcome,
	params *Params,
) float64 {
	if outcome == domain.ReviewOutcomeAgain {
		return params.MinimumIntervalDays()
	}

	if currentInterval < 1 {
		return params.FirstReviewIntervals[outcome]
	}

	if repetitionCount == 0 && outcome == domain.ReviewOutcomeGood {
		return currentInterval * params.LapseGoodMultiplier
	}

	switch outcome {
	case domain.ReviewOutcomeHard:
		return currentInterval * params.HardIntervalMultiplier
	case domain.ReviewOutcomeEasy:
		return currentInterval * easeFactor * params.EasyBonusMultiplier
	default: // good
		return currentInterval * easeFactor
	}
}

// calculateDueAt converts the interval into the next due timestamp.
// Fractional days resolve to sub-day precision, so an "again" outcome lands
// the card back in the queue within minutes.
func calculateDueAt(intervalDays float64, now time.Time) time.Time {
	return now.Add(time.Duration(intervalDays * 24 * float64(time.Hour)))
}

// calculateNextState creates a new ReviewState with updated values based on
// the review outcome. It follows the immutable update pattern: the input
// state is never modified, a fully populated copy is returned instead.
//
// Ordering matters: the new interval is computed from the PRIOR interval
// and repetition count together with the NEW ease factor, matching the
// SM-2 convention of adjusting difficulty before respacing.
func calculateNextState(
	state *domain.ReviewState,
	outcome domain.ReviewOutcome,
	now time.Time,
	params *Params,
) *domain.ReviewState {
	next := state.Clone()

	next.ReviewCount++
	next.LastReviewedAt = now

	next.EaseFactor = calculateNewEaseFactor(state.EaseFactor, outcome, params)

	if outcome == domain.ReviewOutcomeAgain {
		next.RepetitionCount = 0
	} else {
		next.RepetitionCount = state.RepetitionCount + 1
	}

	next.IntervalDays = calculateNewInterval(
		state.IntervalDays,
		state.RepetitionCount,
		next.EaseFactor,
		outcome,
		params,
	)

	next.DueAt = calculateDueAt(next.IntervalDays, now)
	next.UpdatedAt = now

	return next
}
