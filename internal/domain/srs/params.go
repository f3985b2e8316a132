package srs

import (
	"github.com/homeroomhq/homeroom-api/internal/domain"
)

// minutesPerDay converts the again-review delay into fractional days.
const minutesPerDay = 24 * 60

// Params defines all configurable parameters for the SRS algorithm.
type Params struct {
	// Core limits
	MinEaseFactor     float64
	MaxEaseFactor     float64
	InitialEaseFactor float64

	// Per-outcome ease factor adjustments
	EaseFactorAdjustment map[domain.ReviewOutcome]float64

	// Interval growth
	HardIntervalMultiplier float64 // applied instead of the ease factor on "hard"
	EasyBonusMultiplier    float64 // applied on top of the ease factor on "easy"
	LapseGoodMultiplier    float64 // applied on "good" right after a lapse

	// First graded review of a card (or first after a lapse cycle)
	FirstReviewIntervals map[domain.ReviewOutcome]float64

	// "Again" schedules the card back within the session
	AgainReviewMinutes int
}

// MinimumIntervalDays is the interval assigned on an "again" outcome,
// expressed in fractional days. It is always strictly positive.
func (p *Params) MinimumIntervalDays() float64 {
	return float64(p.AgainReviewMinutes) / minutesPerDay
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values keep the defaults.
type ParamsConfig struct {
	MinEaseFactor     float64
	MaxEaseFactor     float64
	InitialEaseFactor float64

	AgainEaseFactorAdjustment float64
	HardEaseFactorAdjustment  float64
	EasyEaseFactorAdjustment  float64

	HardIntervalMultiplier float64
	EasyBonusMultiplier    float64
	LapseGoodMultiplier    float64

	FirstReviewHardIntervalDays float64
	FirstReviewGoodIntervalDays float64
	FirstReviewEasyIntervalDays float64

	AgainReviewMinutes int
}

// NewDefaultParams creates a new Params instance with standard SM-2 family
// defaults: initial ease 2.5 clamped to [1.3, 2.5], again/hard penalties of
// -0.20/-0.15, an easy bonus of +0.15, and a 10 minute relearn delay.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:     1.3,
		MaxEaseFactor:     2.5,
		InitialEaseFactor: 2.5,

		EaseFactorAdjustment: map[domain.ReviewOutcome]float64{
			domain.ReviewOutcomeAgain: -0.20,
			domain.ReviewOutcomeHard:  -0.15,
			domain.ReviewOutcomeGood:  0.0,
			domain.ReviewOutcomeEasy:  0.15,
		},

		HardIntervalMultiplier: 1.2,
		EasyBonusMultiplier:    1.3,
		LapseGoodMultiplier:    1.5,

		// Hard stays below good, easy above it, so the three graded
		// outcomes keep their relative spacing from the very first review.
		FirstReviewIntervals: map[domain.ReviewOutcome]float64{
			domain.ReviewOutcomeHard: 1,
			domain.ReviewOutcomeGood: 2,
			domain.ReviewOutcomeEasy: 3,
		},

		AgainReviewMinutes: 10,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.MaxEaseFactor > 0 {
		params.MaxEaseFactor = config.MaxEaseFactor
	}
	if config.InitialEaseFactor > 0 {
		params.InitialEaseFactor = config.InitialEaseFactor
	}

	if config.AgainEaseFactorAdjustment != 0 {
		params.EaseFactorAdjustment[domain.ReviewOutcomeAgain] = config.AgainEaseFactorAdjustment
	}
	if config.HardEaseFactorAdjustment != 0 {
		params.EaseFactorAdjustment[domain.ReviewOutcomeHard] = config.HardEaseFactorAdjustment
	}
	if config.EasyEaseFactorAdjustment != 0 {
		params.EaseFactorAdjustment[domain.ReviewOutcomeEasy] = config.EasyEaseFactorAdjustment
	}

	if config.HardIntervalMultiplier > 0 {
		params.HardIntervalMultiplier = config.HardIntervalMultiplier
	}
	if config.EasyBonusMultiplier > 0 {
		params.EasyBonusMultiplier = config.EasyBonusMultiplier
	}
	if config.LapseGoodMultiplier > 0 {
		params.LapseGoodMultiplier = config.LapseGoodMultiplier
	}

	if config.FirstReviewHardIntervalDays > 0 {
		params.FirstReviewIntervals[domain.ReviewOutcomeHard] = config.FirstReviewHardIntervalDays
	}
	if config.FirstReviewGoodIntervalDays > 0 {
		params.FirstReviewIntervals[domain.ReviewOutcomeGood] = config.FirstReviewGoodIntervalDays
	}
	if config.FirstReviewEasyIntervalDays > 0 {
		params.FirstReviewIntervals[domain.ReviewOutcomeEasy] = config.FirstReviewEasyIntervalDays
	}

	if config.AgainReviewMinutes > 0 {
		params.AgainReviewMinutes = config.AgainReviewMinutes
	}

	return params
}
