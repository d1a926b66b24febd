package wizard

import (
	"math/rand/v2"
	"strings"
	"unicode"

	"github.com/owlingo/console-backend/internal/entity"
)

// Derived-field computation for the editable content kinds. Every commit
// recomputes the full derived set from the new source text; derived fields
// are never patched incrementally.

const shuffleAttempts = 8

// TokenizeWords splits a sentence into words with surrounding punctuation
// stripped, the form in which blank words are matched.
func TokenizeWords(sentence string) []string {
	fields := strings.Fields(sentence)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if w := trimPunct(f); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

// blankOut renders the display form of a fill-blank sentence: every word
// selected as a blank is replaced by underscores of the same length,
// punctuation kept in place.
func blankOut(sentence string, missing []string) string {
	if len(missing) == 0 {
		return sentence
	}

	missingSet := make(map[string]struct{}, len(missing))
	for _, m := range missing {
		missingSet[strings.ToLower(m)] = struct{}{}
	}

	fields := strings.Fields(sentence)
	for i, f := range fields {
		core := trimPunct(f)
		if core == "" {
			continue
		}
		if _, ok := missingSet[strings.ToLower(core)]; ok {
			fields[i] = strings.Replace(f, core, strings.Repeat("_", len([]rune(core))), 1)
		}
	}
	return strings.Join(fields, " ")
}

// shuffleDistinct shuffles tokens, re-rolling until the order differs from
// the source whenever there are two or more tokens. A shuffle that keeps
// landing on the source order is resolved by forcing one swap.
func shuffleDistinct(tokens []string) []string {
	out := append([]string(nil), tokens...)
	if len(out) < 2 {
		return out
	}

	for attempt := 0; attempt < shuffleAttempts; attempt++ {
		rand.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
		if !equalStrings(out, tokens) {
			return out
		}
	}

	out[0], out[1] = out[1], out[0]
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// deriveFillBlank recomputes all fields derived from the item's sentence:
// blank words no longer present in the text are dropped, and the display
// sentence, accepted answers and word bank are rebuilt from scratch.
func deriveFillBlank(item *entity.FillBlankItem) {
	present := make(map[string]struct{})
	for _, w := range TokenizeWords(item.FullSentence) {
		present[strings.ToLower(w)] = struct{}{}
	}

	keep := make([]string, 0, len(item.MissingWords))
	for _, m := range item.MissingWords {
		if _, ok := present[strings.ToLower(m)]; ok {
			keep = append(keep, m)
		}
	}

	item.MissingWords = keep
	item.DisplaySentence = blankOut(item.FullSentence, keep)
	item.AcceptedAnswers = append([]string(nil), keep...)

	bank := make([]string, 0, len(keep)+len(item.Distractors))
	bank = append(bank, keep...)
	bank = append(bank, item.Distractors...)
	rand.Shuffle(len(bank), func(i, j int) {
		bank[i], bank[j] = bank[j], bank[i]
	})
	item.WordBank = bank
}

// deriveSentence recomputes the token list and the shuffled word order.
func deriveSentence(s *entity.BuilderSentence) {
	s.Words = strings.Fields(s.FullSentence)
	s.ShuffledWords = shuffleDistinct(s.Words)
}

// deriveWord recomputes the scrambled letter order.
func deriveWord(w *entity.BuilderWord) {
	letters := make([]string, 0, len(w.CorrectWord))
	for _, r := range w.CorrectWord {
		letters = append(letters, string(r))
	}
	w.ScrambledLetters = shuffleDistinct(letters)
}
