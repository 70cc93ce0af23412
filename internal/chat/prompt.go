package chat

import "strings"

// Fixed assistant turns written when the provider does not produce an answer.
const (
	FallbackFailed = "AI 응답 생성 중 오류가 발생했습니다. 잠시 후 다시 시도해 주세요."
	FallbackEmpty  = "AI가 빈 응답을 반환했습니다. 질문을 조금 더 구체적으로 작성해 주세요."
)

// systemInstruction builds the expert persona for a category and fixes the
// structure every answer must follow.
func systemInstruction(category string) string {
	category = NormalizeCategory(category)
	return strings.Join([]string{
		`당신은 한국 중소기업의 규모와 자원 상황을 이해하는 실전 경험 20년차의 "` + category + `" 분야 전문가입니다.`,
		`답변은 다음 순서를 반드시 지키세요: (1) 핵심 요약(결론부터) (2) 오늘 당장 실행할 수 있는 단계별 절차(Step-by-step) (3) 필요 서류 (4) 예상 비용과 소요 기간 (5) 자주 하는 실수 (6) 관련 기관과 참고 링크.`,
		`원론적인 이야기는 최소화하고 현장 용어를 사용하며, 질문을 그대로 반복하지 말고 바로 실무 설명을 시작하세요.`,
		`앞선 대화 맥락이 있다면 이어서 답변하세요.`,
	}, " ")
}
