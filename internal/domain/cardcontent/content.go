// Package cardcontent defines the flashcard content model: the closed set of
// card types, normalization of raw authored or imported fields, and the
// accumulating field-level validator that produces a type-consistent content
// payload or a structured error set.
package cardcontent

// CardType identifies one of the supported flashcard variants.
type CardType string

// Supported card types.
const (
	CardTypeBasic          CardType = "basic"
	CardTypeTypedAnswer    CardType = "typed_answer"
	CardTypeMultipleChoice CardType = "multiple_choice"
	CardTypeTrueFalse      CardType = "true_false"
	CardTypeCloze          CardType = "cloze"
	CardTypeImageOcclusion CardType = "image_occlusion"
)

// Valid reports whether t is one of the supported card types.
func (t CardType) Valid() bool {
	switch t {
	case CardTypeBasic, CardTypeTypedAnswer, CardTypeMultipleChoice,
		CardTypeTrueFalse, CardTypeCloze, CardTypeImageOcclusion:
		return true
	default:
		return false
	}
}

// Difficulty is the author-assigned difficulty of a card.
type Difficulty string

// Supported difficulty levels.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the supported difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// OcclusionRegion is a masked rectangle over the question image of an
// image-occlusion card. Coordinates are fractions of the image size.
type OcclusionRegion struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Label  string  `json:"label,omitempty"`
}

// RawFields holds card fields exactly as submitted by an authoring form,
// an import record or the draft generator, before normalization. Fields
// belonging to variants other than CardType are ignored and cleared by
// Normalize.
type RawFields struct {
	CardType         string            `json:"card_type"`
	Question         string            `json:"question"`
	Answer           string            `json:"answer"`
	Hint             string            `json:"hint"`
	Choices          []string          `json:"choices"`
	CorrectChoices   []int             `json:"correct_choices"`
	TrueFalseAnswer  string            `json:"true_false_answer"`
	ClozeText        string            `json:"cloze_text"`
	QuestionImageURL string            `json:"question_image_url"`
	AnswerImageURL   string            `json:"answer_image_url"`
	OcclusionData    []OcclusionRegion `json:"occlusion_data"`
	Difficulty       string            `json:"difficulty_level"`
	Tags             string            `json:"tags"`
	TagList          []string          `json:"tag_list"`
}

// Fields holds the normalized, type-consistent card fields. Only the fields
// belonging to the card's variant are populated; everything else is zeroed.
type Fields struct {
	CardType         CardType          `json:"card_type"`
	Question         string            `json:"question"`
	Answer           string            `json:"answer"`
	Hint             string            `json:"hint,omitempty"`
	Choices          []string          `json:"choices,omitempty"`
	CorrectChoices   []int             `json:"correct_choices,omitempty"`
	TrueFalseAnswer  string            `json:"true_false_answer,omitempty"`
	ClozeText        string            `json:"cloze_text,omitempty"`
	ClozeAnswers     []string          `json:"cloze_answers,omitempty"`
	QuestionImageURL string            `json:"question_image_url,omitempty"`
	AnswerImageURL   string            `json:"answer_image_url,omitempty"`
	OcclusionData    []OcclusionRegion `json:"occlusion_data,omitempty"`
	Difficulty       Difficulty        `json:"difficulty_level"`
	Tags             []string          `json:"tags,omitempty"`
}

// Content is the tagged union of validated card payloads. Exactly one
// concrete variant exists per card type; each carries only its own fields.
type Content interface {
	// Type returns the card type tag of this payload.
	Type() CardType
}

// Basic is a plain front/back card.
type Basic struct {
	Question string
	Answer   string
	Hint     string
}

// Type implements Content.
func (Basic) Type() CardType { return CardTypeBasic }

// TypedAnswer is a front/back card whose answer the learner must type.
type TypedAnswer struct {
	Question string
	Answer   string
	Hint     string
}

// Type implements Content.
func (TypedAnswer) Type() CardType { return CardTypeTypedAnswer }

// MultipleChoice is a card with 2-6 choices and at least one correct index.
type MultipleChoice struct {
	Question       string
	Answer         string
	Hint           string
	Choices        []string
	CorrectChoices []int
}

// Type implements Content.
func (MultipleChoice) Type() CardType { return CardTypeMultipleChoice }

// TrueFalse is a fixed two-choice card.
type TrueFalse struct {
	Question string
	// Answer is true for "True", false for "False".
	Answer bool
	Hint   string
}

// Type implements Content.
func (TrueFalse) Type() CardType { return CardTypeTrueFalse }

// Cloze is a fill-in-the-blank card derived from deletion markup.
type Cloze struct {
	// Text is the raw cloze markup with {{...}} deletions.
	Text string
	// Question is Text with every deletion replaced by a placeholder.
	Question string
	// Answer is the deletion contents joined with ", ".
	Answer string
	// Answers is the unique, order-preserving set of deletion contents.
	Answers []string
	Hint    string
}

// Type implements Content.
func (Cloze) Type() CardType { return CardTypeCloze }

// ImageOcclusion is a card whose question is an image with masked regions.
type ImageOcclusion struct {
	Question         string
	Answer           string
	Hint             string
	QuestionImageURL string
	AnswerImageURL   string
	Regions          []OcclusionRegion
}

// Type implements Content.
func (ImageOcclusion) Type() CardType { return CardTypeImageOcclusion }
