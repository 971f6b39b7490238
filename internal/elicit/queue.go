package elicit

import (
	"github.com/britt/llpm/internal/questionbank"
	"github.com/britt/llpm/internal/session"
)

// EffectiveQueue computes the ordered, deduplicated question ids a section
// must ask: the bank's static order with triggered follow-ups spliced in
// immediately after their trigger. It is a pure function of the static list
// and the answers recorded so far, recomputed from scratch on every call, so
// re-answering a trigger (even with different text) never duplicates
// follow-ups and reopen/re-answer flows need no incremental bookkeeping.
func EffectiveQueue(sec *questionbank.Section, answers []session.Answer) []string {
	queue := sec.StaticIDs()

	// Answers are chronological, so a follow-up's own trigger answer is
	// always processed after the answer that spliced the follow-up in.
	// Chained conditions therefore resolve in a single pass.
	for _, ans := range answers {
		q, ok := sec.Question(ans.QuestionID)
		if !ok || q.FollowUp == nil {
			continue
		}
		if !q.FollowUp.Matches(ans.AnswerText) {
			continue
		}
		queue = spliceAfter(queue, ans.QuestionID, q.FollowUp.FollowUpQuestionIDs)
	}

	return queue
}

// spliceAfter inserts ids immediately after the trigger's position in queue,
// preserving their relative order and skipping any id already present.
func spliceAfter(queue []string, trigger string, ids []string) []string {
	pos := -1
	present := make(map[string]bool, len(queue))
	for i, id := range queue {
		present[id] = true
		if id == trigger {
			pos = i
		}
	}
	if pos == -1 {
		return queue
	}

	var fresh []string
	for _, id := range ids {
		if !present[id] {
			fresh = append(fresh, id)
		}
	}
	if len(fresh) == 0 {
		return queue
	}

	out := make([]string, 0, len(queue)+len(fresh))
	out = append(out, queue[:pos+1]...)
	out = append(out, fresh...)
	out = append(out, queue[pos+1:]...)
	return out
}

// firstUnanswered returns the first queue entry with no recorded answer, or
// "" when the section is fully answered.
func firstUnanswered(queue []string, sec *session.Section) string {
	for _, id := range queue {
		if !sec.Answered(id) {
			return id
		}
	}
	return ""
}

// answeredIndex returns the index of the first unanswered question in queue,
// or len(queue) when everything is answered. Used to keep the section's
// cursor meaningful as follow-ups are spliced in.
func answeredIndex(queue []string, sec *session.Section) int {
	for i, id := range queue {
		if !sec.Answered(id) {
			return i
		}
	}
	return len(queue)
}
