package chat

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Role repair for threads written before roles were always set explicitly.
// Used on read paths only; writers always store the correct role.

const trailingQuestionMaxLen = 60

var trailingQuestion = regexp.MustCompile(`(?:[?？]|알려\s*줘|주세요|인가요|나요|까요|할까|습니까|뭐야|어때)\s*$`)

// NormalizeRoles relabels turns without reordering them:
// any role other than "user" becomes "assistant"; an opening assistant turn
// that repeats the post body is the question itself; a short trailing
// assistant turn phrased as a question is an unanswered user turn.
func NormalizeRoles(post Post, msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = Message{Role: normalizeRole(m.Role), Content: m.Content}
	}
	if len(out) == 0 {
		return out
	}

	if out[0].Role == RoleAssistant && collapseSpace(out[0].Content) == collapseSpace(post.Body) {
		out[0].Role = RoleUser
	}

	last := &out[len(out)-1]
	if last.Role == RoleAssistant && looksLikeQuestion(last.Content) {
		last.Role = RoleUser
	}
	return out
}

func normalizeRole(r string) string {
	if strings.EqualFold(strings.TrimSpace(r), RoleUser) {
		return RoleUser
	}
	return RoleAssistant
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func looksLikeQuestion(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > trailingQuestionMaxLen {
		return false
	}
	return trailingQuestion.MatchString(s)
}
