package flashcards

import "time"

// Review intervals by consecutive-correct count. A miss sends the card back
// ten minutes out.
var reviewLadder = []time.Duration{
	24 * time.Hour,
	3 * 24 * time.Hour,
	7 * 24 * time.Hour,
	14 * 24 * time.Hour,
	30 * 24 * time.Hour,
	60 * 24 * time.Hour,
}

const missedReviewDelay = 10 * time.Minute

// NextReviewAt schedules the next review after an answer. correctCount is
// the card's correct count after the answer was recorded.
func NextReviewAt(correctCount int, correct bool, now time.Time) time.Time {
	if !correct {
		return now.Add(missedReviewDelay)
	}
	idx := correctCount - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(reviewLadder) {
		idx = len(reviewLadder) - 1
	}
	return now.Add(reviewLadder[idx])
}

// ExamPassThreshold is the share of correct answers needed to pass a module
// exam and mark the module completed.
const ExamPassThreshold = 0.8

// ExamScore computes the share of exam cards answered correctly. Ids not in
// the exam set are ignored, and repeats count once.
func ExamScore(cardIDs, correctIDs []string) float64 {
	if len(cardIDs) == 0 {
		return 0
	}
	inExam := make(map[string]bool, len(cardIDs))
	for _, id := range cardIDs {
		inExam[id] = true
	}
	counted := make(map[string]bool, len(correctIDs))
	correct := 0
	for _, id := range correctIDs {
		if inExam[id] && !counted[id] {
			counted[id] = true
			correct++
		}
	}
	return float64(correct) / float64(len(cardIDs))
}
