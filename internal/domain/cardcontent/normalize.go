package cardcontent

import "strings"

// Normalize transforms raw submitted fields into a type-consistent Fields
// value ahead of validation. It canonicalizes the true/false variant, derives
// the cloze question, answer and answer set from the cloze markup, splits a
// comma-separated tag string into a list, and clears every field that does
// not belong to the declared card type. Normalize never fails; defects it
// cannot repair (malformed cloze markup, an unknown card type) are left in
// place for Validate to report.
func Normalize(raw RawFields) Fields {
	f := Fields{
		CardType:   CardType(strings.TrimSpace(raw.CardType)),
		Question:   strings.TrimSpace(raw.Question),
		Answer:     strings.TrimSpace(raw.Answer),
		Hint:       strings.TrimSpace(raw.Hint),
		Difficulty: Difficulty(strings.TrimSpace(raw.Difficulty)),
		Tags:       normalizeTags(raw),
	}

	// An unassigned difficulty defaults to medium.
	if f.Difficulty == "" {
		f.Difficulty = DifficultyMedium
	}

	switch f.CardType {
	case CardTypeBasic, CardTypeTypedAnswer:
		// Nothing variant-specific to derive.

	case CardTypeMultipleChoice:
		f.Choices = trimAll(raw.Choices)
		f.CorrectChoices = append([]int(nil), raw.CorrectChoices...)

	case CardTypeTrueFalse:
		f.TrueFalseAnswer = strings.ToLower(strings.TrimSpace(raw.TrueFalseAnswer))
		f.Choices = []string{"True", "False"}
		switch f.TrueFalseAnswer {
		case "true":
			f.CorrectChoices = []int{0}
			f.Answer = "True"
		case "false":
			f.CorrectChoices = []int{1}
			f.Answer = "False"
		}

	case CardTypeCloze:
		f.Question = ""
		f.Answer = ""
		f.ClozeText = strings.TrimSpace(raw.ClozeText)
		if spans, ferr := parseClozeSpans(f.ClozeText); ferr == nil && len(spans) > 0 {
			f.Question = renderClozeQuestion(f.ClozeText, spans)
			f.Answer, f.ClozeAnswers = clozeAnswers(spans)
		}

	case CardTypeImageOcclusion:
		f.QuestionImageURL = strings.TrimSpace(raw.QuestionImageURL)
		f.AnswerImageURL = strings.TrimSpace(raw.AnswerImageURL)
		f.OcclusionData = append([]OcclusionRegion(nil), raw.OcclusionData...)
	}

	return f
}

// normalizeTags prefers an already-split tag list; otherwise it splits the
// comma-separated string, trimming entries and dropping empties. Duplicates
// are preserved and order is kept.
func normalizeTags(raw RawFields) []string {
	if len(raw.TagList) > 0 {
		return trimNonEmpty(raw.TagList)
	}
	if strings.TrimSpace(raw.Tags) == "" {
		return nil
	}
	return trimNonEmpty(strings.Split(raw.Tags, ","))
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func trimNonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
