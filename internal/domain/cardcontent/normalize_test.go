package cardcontent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTrimsCommonFields(t *testing.T) {
	t.Parallel()

	f := Normalize(RawFields{
		CardType: "  basic ",
		Question: "  What is 2+2?  ",
		Answer:   " 4 ",
		Hint:     "  think pairs ",
	})

	assert.Equal(t, CardTypeBasic, f.CardType)
	assert.Equal(t, "What is 2+2?", f.Question)
	assert.Equal(t, "4", f.Answer)
	assert.Equal(t, "think pairs", f.Hint)
}

func TestNormalizeDefaultsDifficultyToMedium(t *testing.T) {
	t.Parallel()

	f := Normalize(RawFields{CardType: "basic", Question: "q", Answer: "a"})
	assert.Equal(t, DifficultyMedium, f.Difficulty)

	f = Normalize(RawFields{CardType: "basic", Difficulty: "hard"})
	assert.Equal(t, DifficultyHard, f.Difficulty)
}

func TestNormalizeTrueFalse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		rawAnswer   string
		wantAnswer  string
		wantCorrect []int
	}{
		{name: "lowercase true", rawAnswer: "true", wantAnswer: "True", wantCorrect: []int{0}},
		{name: "mixed case false", rawAnswer: " FALSE ", wantAnswer: "False", wantCorrect: []int{1}},
		{name: "capitalized true", rawAnswer: "True", wantAnswer: "True", wantCorrect: []int{0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := Normalize(RawFields{
				CardType:        "true_false",
				Question:        "The sky is blue.",
				TrueFalseAnswer: tc.rawAnswer,
			})

			assert.Equal(t, []string{"True", "False"}, f.Choices)
			assert.Equal(t, tc.wantCorrect, f.CorrectChoices)
			assert.Equal(t, tc.wantAnswer, f.Answer)
		})
	}
}

func TestNormalizeTrueFalseLeavesInvalidAnswerForValidation(t *testing.T) {
	t.Parallel()

	f := Normalize(RawFields{
		CardType:        "true_false",
		Question:        "q",
		TrueFalseAnswer: "maybe",
	})

	assert.Equal(t, "maybe", f.TrueFalseAnswer)
	assert.Empty(t, f.CorrectChoices)
}

func TestNormalizeClozeDerivesQuestionAndAnswers(t *testing.T) {
	t.Parallel()

	f := Normalize(RawFields{
		CardType:  "cloze",
		ClozeText: "The capital of France is {{c1::Paris}} on the {{Seine}}.",
	})

	assert.Equal(t, "The capital of France is [...] on the [...].", f.Question)
	assert.Equal(t, "Paris, Seine", f.Answer)
	assert.Equal(t, []string{"Paris", "Seine"}, f.ClozeAnswers)
}

func TestNormalizeClozeRepeatedDeletionDeduplicatesAnswerSet(t *testing.T) {
	t.Parallel()

	f := Normalize(RawFields{
		CardType:  "cloze",
		ClozeText: "{{Paris}} is in France. {{Paris}} has the Louvre.",
	})

	assert.Equal(t, "Paris, Paris", f.Answer)
	assert.Equal(t, []string{"Paris"}, f.ClozeAnswers)
}

func TestNormalizeClozeMalformedMarkupLeftForValidation(t *testing.T) {
	t.Parallel()

	f := Normalize(RawFields{
		CardType:  "cloze",
		ClozeText: "broken {{deletion",
	})

	assert.Equal(t, "broken {{deletion", f.ClozeText)
	assert.Empty(t, f.Question)
	assert.Empty(t, f.ClozeAnswers)
}

func TestNormalizeSplitsTagString(t *testing.T) {
	t.Parallel()

	f := Normalize(RawFields{
		CardType: "basic",
		Tags:     " math, geometry ,, algebra ",
	})

	assert.Equal(t, []string{"math", "geometry", "algebra"}, f.Tags)
}

func TestNormalizePrefersTagList(t *testing.T) {
	t.Parallel()

	f := Normalize(RawFields{
		CardType: "basic",
		Tags:     "ignored",
		TagList:  []string{" history ", ""},
	})

	assert.Equal(t, []string{"history"}, f.Tags)
}

func TestNormalizeClearsForeignVariantFields(t *testing.T) {
	t.Parallel()

	f := Normalize(RawFields{
		CardType:         "basic",
		Question:         "q",
		Answer:           "a",
		Choices:          []string{"x", "y"},
		CorrectChoices:   []int{0},
		ClozeText:        "{{z}}",
		QuestionImageURL: "https://example.com/img.png",
		OcclusionData:    []OcclusionRegion{{X: 0.1, Y: 0.1, Width: 0.2, Height: 0.2}},
	})

	assert.Empty(t, f.Choices)
	assert.Empty(t, f.CorrectChoices)
	assert.Empty(t, f.ClozeText)
	assert.Empty(t, f.QuestionImageURL)
	assert.Empty(t, f.OcclusionData)
}
