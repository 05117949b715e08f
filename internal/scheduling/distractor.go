package scheduling

import (
	"strings"
	"unicode/utf8"

	"github.com/example/studylock/pkg/models"
)

// OptionSet is a shuffled multiple-choice option list with the index of the
// correct answer after shuffling.
type OptionSet struct {
	Options      []string
	CorrectIndex int
}

// StandardOptions builds the option set for the regular multiple-choice
// modes. Distractors come from a three-tier waterfall restricted to the
// correct item's grade: shared topic tag first, then shared category tag,
// then the rest of the grade; when the grade has no other items at all the
// whole pool is used. Options are the items' meanings.
func (e *Engine) StandardOptions(correct models.Question, pool []models.Question, count int) OptionSet {
	candidates := excludeConfusable(correct, pool)

	var sameGrade []models.Question
	for _, q := range candidates {
		if q.Grade == correct.Grade {
			sameGrade = append(sameGrade, q)
		}
	}

	var picked []models.Question
	if len(sameGrade) == 0 {
		picked = e.takeShuffled(candidates, count)
	} else {
		var topic, category, rest []models.Question
		for _, q := range sameGrade {
			switch {
			case q.Topic != "" && q.Topic == correct.Topic:
				topic = append(topic, q)
			case q.Category != "" && q.Category == correct.Category:
				category = append(category, q)
			default:
				rest = append(rest, q)
			}
		}
		tiers := append(e.shuffled(topic), e.shuffled(category)...)
		tiers = append(tiers, e.shuffled(rest)...)
		if len(tiers) > count {
			tiers = tiers[:count]
		}
		picked = tiers
	}

	answers := make([]string, 0, len(picked))
	for _, q := range picked {
		answers = append(answers, q.Meaning)
	}
	return e.shuffleWithCorrect(answers, correct.Meaning)
}

// ListeningOptions builds the option set for the listening modes, where
// phonetic and visual confusability matter more than category. Preferred
// distractors are items at the correct item's grade or above with a similar
// surface length (within three characters), ranked by shared prefix and
// length closeness; random leftovers pad the set when the preferred pool
// runs short. Options are the items' surface forms.
func (e *Engine) ListeningOptions(correct models.Question, pool []models.Question, count int) OptionSet {
	candidates := excludeConfusable(correct, pool)
	correctLen := utf8.RuneCountInString(correct.Surface)

	var preferred, leftover []models.Question
	for _, q := range candidates {
		lenDiff := utf8.RuneCountInString(q.Surface) - correctLen
		if lenDiff < 0 {
			lenDiff = -lenDiff
		}
		if q.Grade >= correct.Grade && lenDiff <= 3 {
			preferred = append(preferred, q)
		} else {
			leftover = append(leftover, q)
		}
	}

	// Shuffle before the stable sort so equally-ranked items vary between
	// sessions.
	preferred = e.shuffled(preferred)
	ranked := make([]models.Question, len(preferred))
	copy(ranked, preferred)
	stableSortByRank(ranked, correct, correctLen)

	picked := ranked
	if len(picked) > count {
		picked = picked[:count]
	}
	if len(picked) < count {
		for _, q := range e.shuffled(leftover) {
			if len(picked) == count {
				break
			}
			picked = append(picked, q)
		}
	}

	answers := make([]string, 0, len(picked))
	for _, q := range picked {
		answers = append(answers, q.Surface)
	}
	return e.shuffleWithCorrect(answers, correct.Surface)
}

// confusabilityRank scores how strongly a candidate competes with the
// correct surface: shared two-character prefix beats a one-character prefix
// beats near-equal length beats everything else.
func confusabilityRank(q models.Question, correct models.Question, correctLen int) int {
	if sharesPrefix(q.Surface, correct.Surface, 2) {
		return 0
	}
	if sharesPrefix(q.Surface, correct.Surface, 1) {
		return 1
	}
	lenDiff := utf8.RuneCountInString(q.Surface) - correctLen
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff <= 1 {
		return 2
	}
	return 3
}

func stableSortByRank(qs []models.Question, correct models.Question, correctLen int) {
	// Insertion sort keeps the pre-shuffle order within equal ranks.
	for i := 1; i < len(qs); i++ {
		for j := i; j > 0; j-- {
			if confusabilityRank(qs[j], correct, correctLen) < confusabilityRank(qs[j-1], correct, correctLen) {
				qs[j], qs[j-1] = qs[j-1], qs[j]
			} else {
				break
			}
		}
	}
}

// sharesPrefix reports whether both surfaces start with the same n runes,
// ignoring case.
func sharesPrefix(a, b string, n int) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < n || len(rb) < n {
		return false
	}
	return strings.EqualFold(string(ra[:n]), string(rb[:n]))
}

// excludeConfusable drops the correct item itself and anything identical to
// it in surface form or meaning.
func excludeConfusable(correct models.Question, pool []models.Question) []models.Question {
	out := make([]models.Question, 0, len(pool))
	for _, q := range pool {
		if q.ID == correct.ID || q.Surface == correct.Surface || q.Meaning == correct.Meaning {
			continue
		}
		out = append(out, q)
	}
	return out
}

func (e *Engine) shuffled(qs []models.Question) []models.Question {
	out := make([]models.Question, len(qs))
	copy(out, qs)
	e.rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

func (e *Engine) takeShuffled(qs []models.Question, count int) []models.Question {
	out := e.shuffled(qs)
	if len(out) > count {
		out = out[:count]
	}
	return out
}

// shuffleWithCorrect appends the correct answer, shuffles and tracks where
// the correct answer ends up.
func (e *Engine) shuffleWithCorrect(distractors []string, correct string) OptionSet {
	options := append(distractors, correct)
	correctIndex := len(options) - 1
	e.rnd.Shuffle(len(options), func(i, j int) {
		if i == correctIndex {
			correctIndex = j
		} else if j == correctIndex {
			correctIndex = i
		}
		options[i], options[j] = options[j], options[i]
	})
	return OptionSet{Options: options, CorrectIndex: correctIndex}
}
