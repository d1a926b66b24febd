package formatter

import (
	"fmt"
	"strings"

	"github.com/owlingo/console-backend/internal/entity"
)

// RenderWorksheet renders saved content as a printable worksheet body. The
// output is plain text with light markdown markup; the per-format formatters
// only wrap it with the document chrome.
func RenderWorksheet(saved *entity.SavedContent) string {
	var b strings.Builder

	if saved.SkillName != "" || saved.FormatName != "" {
		fmt.Fprintf(&b, "%s", strings.TrimSpace(saved.SkillName+" / "+saved.FormatName))
		b.WriteString("\n\n")
	}
	if saved.Description != "" {
		b.WriteString(saved.Description)
		b.WriteString("\n\n")
	}

	content := saved.Content
	if content == nil {
		return b.String()
	}

	switch content.Kind {
	case entity.ContentKindQuiz, entity.ContentKindListeningQuiz, entity.ContentKindTrueFalse:
		renderQuestions(&b, content.Questions, 1)

	case entity.ContentKindFillBlank, entity.ContentKindListeningFillBlank:
		for i, item := range content.Items {
			fmt.Fprintf(&b, "%d. %s\n", i+1, item.DisplaySentence)
			if len(item.WordBank) > 0 {
				fmt.Fprintf(&b, "   Word bank: %s\n", strings.Join(item.WordBank, ", "))
			}
			b.WriteString("\n")
		}

	case entity.ContentKindSentenceBuilder, entity.ContentKindListeningSentence:
		for i, s := range content.Sentences {
			fmt.Fprintf(&b, "%d. %s\n", i+1, strings.Join(s.ShuffledWords, " / "))
			if s.Translation != "" {
				fmt.Fprintf(&b, "   (%s)\n", s.Translation)
			}
			b.WriteString("\n")
		}

	case entity.ContentKindWordBuilder, entity.ContentKindListeningWordBuilder:
		for i, w := range content.Words {
			fmt.Fprintf(&b, "%d. %s\n", i+1, strings.Join(w.ScrambledLetters, " "))
			if w.Hint != "" {
				fmt.Fprintf(&b, "   Hint: %s\n", w.Hint)
			}
			b.WriteString("\n")
		}

	case entity.ContentKindPassage, entity.ContentKindReading:
		for _, p := range content.Passages {
			fmt.Fprintf(&b, "## %s\n\n%s\n\n", p.Title, p.Text)
			renderQuestions(&b, p.Questions, 1)
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func renderQuestions(b *strings.Builder, questions []entity.QuizQuestion, start int) {
	letters := "abcdefghij"
	for i, q := range questions {
		fmt.Fprintf(b, "%d. %s\n", start+i, q.Question)
		for j, opt := range q.Options {
			marker := "?"
			if j < len(letters) {
				marker = string(letters[j])
			}
			fmt.Fprintf(b, "   %s) %s\n", marker, opt)
		}
		b.WriteString("\n")
	}
}

// RenderAnswerKey renders the answer section appended to teacher copies.
func RenderAnswerKey(saved *entity.SavedContent) string {
	content := saved.Content
	if content == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Answer Key\n\n")

	switch content.Kind {
	case entity.ContentKindQuiz, entity.ContentKindListeningQuiz, entity.ContentKindTrueFalse:
		answerKeyQuestions(&b, content.Questions)

	case entity.ContentKindFillBlank, entity.ContentKindListeningFillBlank:
		for i, item := range content.Items {
			fmt.Fprintf(&b, "%d. %s\n", i+1, strings.Join(item.AcceptedAnswers, ", "))
		}

	case entity.ContentKindSentenceBuilder, entity.ContentKindListeningSentence:
		for i, s := range content.Sentences {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s.FullSentence)
		}

	case entity.ContentKindWordBuilder, entity.ContentKindListeningWordBuilder:
		for i, w := range content.Words {
			fmt.Fprintf(&b, "%d. %s\n", i+1, w.CorrectWord)
		}

	case entity.ContentKindPassage, entity.ContentKindReading:
		for _, p := range content.Passages {
			if len(p.Questions) == 0 {
				continue
			}
			fmt.Fprintf(&b, "%s\n", p.Title)
			answerKeyQuestions(&b, p.Questions)
		}

	default:
		return ""
	}

	return b.String()
}

func answerKeyQuestions(b *strings.Builder, questions []entity.QuizQuestion) {
	letters := "abcdefghij"
	for i, q := range questions {
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			continue
		}
		marker := "?"
		if q.CorrectIndex < len(letters) {
			marker = string(letters[q.CorrectIndex])
		}
		fmt.Fprintf(b, "%d. %s) %s\n", i+1, marker, q.Options[q.CorrectIndex])
	}
}
