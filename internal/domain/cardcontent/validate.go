package cardcontent

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Field size limits shared by all card types.
const (
	MaxQuestionLen = 2000
	MaxAnswerLen   = 2000
	MaxHintLen     = 500
	MaxTagLen      = 100

	MinChoices = 2
	MaxChoices = 6
)

// imageExtensions is the closed set of accepted question/answer image file
// extensions, compared case-insensitively.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

// Validate applies the structural and type-specific semantic rules to
// normalized fields. Every rule is evaluated; failures accumulate per field.
// On success it returns the validated payload as the variant matching the
// card type. Validate is pure: calling it twice on the same input yields an
// identical error set.
func Validate(f Fields) (Content, FieldErrors) {
	errs := FieldErrors{}

	if !f.CardType.Valid() {
		errs.Add("card_type", KindInvalidValue, "unsupported card type %q", string(f.CardType))
		return nil, errs
	}

	validateCommon(f, errs)

	switch f.CardType {
	case CardTypeBasic, CardTypeTypedAnswer:
		validateQuestionAnswer(f, errs)
	case CardTypeMultipleChoice:
		validateMultipleChoice(f, errs)
	case CardTypeTrueFalse:
		validateTrueFalse(f, errs)
	case CardTypeCloze:
		validateCloze(f, errs)
	case CardTypeImageOcclusion:
		validateImageOcclusion(f, errs)
	}

	if !errs.Empty() {
		return nil, errs
	}
	return buildContent(f), nil
}

// validateCommon applies the rules shared by every card type.
func validateCommon(f Fields, errs FieldErrors) {
	if !f.Difficulty.Valid() {
		errs.Add("difficulty_level", KindInvalidValue,
			"difficulty level must be one of easy, medium, hard")
	}
	if len(f.Hint) > MaxHintLen {
		errs.Add("hint", KindLengthExceeded, "hint must be at most %d characters", MaxHintLen)
	}
	for i, tag := range f.Tags {
		if len(tag) > MaxTagLen {
			errs.Add(fmt.Sprintf("tags.%d", i), KindLengthExceeded,
				"tag must be at most %d characters", MaxTagLen)
		}
	}
}

func validateQuestionAnswer(f Fields, errs FieldErrors) {
	if f.Question == "" {
		errs.Add("question", KindMissingField, "question is required")
	} else if len(f.Question) > MaxQuestionLen {
		errs.Add("question", KindLengthExceeded,
			"question must be at most %d characters", MaxQuestionLen)
	}
	if f.Answer == "" {
		errs.Add("answer", KindMissingField, "answer is required")
	} else if len(f.Answer) > MaxAnswerLen {
		errs.Add("answer", KindLengthExceeded,
			"answer must be at most %d characters", MaxAnswerLen)
	}
}

func validateMultipleChoice(f Fields, errs FieldErrors) {
	validateQuestionAnswer(f, errs)

	if len(f.Choices) < MinChoices || len(f.Choices) > MaxChoices {
		errs.Add("choices", KindInvalidValue,
			"multiple choice cards need between %d and %d choices", MinChoices, MaxChoices)
	}

	// Choices must be pairwise distinct, compared exactly.
	seen := make(map[string]int, len(f.Choices))
	for i, c := range f.Choices {
		if c == "" {
			errs.Add(fmt.Sprintf("choices.%d", i), KindMissingField, "choice cannot be empty")
			continue
		}
		if first, dup := seen[c]; dup {
			errs.Add(fmt.Sprintf("choices.%d", i), KindDuplicateChoice,
				"choice duplicates entry %d", first)
			continue
		}
		seen[c] = i
	}

	if len(f.CorrectChoices) == 0 {
		errs.Add("correct_choices", KindMissingField,
			"at least one correct choice is required")
	}
	for i, idx := range f.CorrectChoices {
		if idx < 0 || idx >= len(f.Choices) {
			errs.Add(fmt.Sprintf("correct_choices.%d", i), KindInvalidReference,
				"index %d does not address an existing choice", idx)
		}
	}
}

func validateTrueFalse(f Fields, errs FieldErrors) {
	if f.Question == "" {
		errs.Add("question", KindMissingField, "question is required")
	} else if len(f.Question) > MaxQuestionLen {
		errs.Add("question", KindLengthExceeded,
			"question must be at most %d characters", MaxQuestionLen)
	}
	if f.TrueFalseAnswer != "true" && f.TrueFalseAnswer != "false" {
		errs.Add("true_false_answer", KindInvalidValue,
			"true/false answer must be \"true\" or \"false\"")
	}
}

func validateCloze(f Fields, errs FieldErrors) {
	if f.ClozeText == "" {
		errs.Add("cloze_text", KindMissingField, "cloze text is required")
		return
	}

	spans, ferr := parseClozeSpans(f.ClozeText)
	if ferr != nil {
		errs["cloze_text"] = append(errs["cloze_text"], *ferr)
		return
	}
	if len(spans) == 0 {
		errs.Add("cloze_text", KindMalformedClozeSyntax,
			"cloze text must contain at least one {{...}} deletion")
		return
	}
	for i, s := range spans {
		if s.content == "" {
			errs.Add("cloze_text", KindEmptyClozeDeletion,
				"deletion %d is empty or whitespace only", i+1)
		}
	}
}

func validateImageOcclusion(f Fields, errs FieldErrors) {
	validateQuestionAnswer(f, errs)

	if f.QuestionImageURL == "" {
		errs.Add("question_image_url", KindMissingField, "question image URL is required")
	} else if !hasImageExtension(f.QuestionImageURL) {
		errs.Add("question_image_url", KindUnsupportedImageExtension,
			"question image must be a jpg, jpeg, png, gif, webp or svg file")
	}

	if f.AnswerImageURL != "" && !hasImageExtension(f.AnswerImageURL) {
		errs.Add("answer_image_url", KindUnsupportedImageExtension,
			"answer image must be a jpg, jpeg, png, gif, webp or svg file")
	}

	if len(f.OcclusionData) == 0 {
		errs.Add("occlusion_data", KindMissingField,
			"at least one occlusion region is required")
	}
}

// hasImageExtension checks the URL path's file extension, case-insensitively,
// against the accepted image extensions. Query strings and fragments are
// ignored.
func hasImageExtension(rawURL string) bool {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	return imageExtensions[strings.ToLower(path.Ext(p))]
}

// buildContent assembles the typed payload for fields that passed validation.
func buildContent(f Fields) Content {
	switch f.CardType {
	case CardTypeBasic:
		return Basic{Question: f.Question, Answer: f.Answer, Hint: f.Hint}
	case CardTypeTypedAnswer:
		return TypedAnswer{Question: f.Question, Answer: f.Answer, Hint: f.Hint}
	case CardTypeMultipleChoice:
		return MultipleChoice{
			Question:       f.Question,
			Answer:         f.Answer,
			Hint:           f.Hint,
			Choices:        f.Choices,
			CorrectChoices: f.CorrectChoices,
		}
	case CardTypeTrueFalse:
		return TrueFalse{Question: f.Question, Answer: f.TrueFalseAnswer == "true", Hint: f.Hint}
	case CardTypeCloze:
		return Cloze{
			Text:     f.ClozeText,
			Question: f.Question,
			Answer:   f.Answer,
			Answers:  f.ClozeAnswers,
			Hint:     f.Hint,
		}
	case CardTypeImageOcclusion:
		return ImageOcclusion{
			Question:         f.Question,
			Answer:           f.Answer,
			Hint:             f.Hint,
			QuestionImageURL: f.QuestionImageURL,
			AnswerImageURL:   f.AnswerImageURL,
			Regions:          f.OcclusionData,
		}
	}
	return nil
}
