package constant

// User-facing messages. The product surface is Korean.

const (
	DisclaimerMessage = "⚠️ 이 답변은 검색된 정보가 충분하지 않아 정확성이 보장되지 않습니다. 중요한 결정에는 추가 확인을 권장합니다."

	WebSearchDisclaimer = "ℹ️ 내부 문서에서 관련 정보를 찾지 못하여 웹 검색 결과를 포함합니다."

	SubAnswerNotFound = "정보를 찾을 수 없습니다."
)

// Error messages keyed by failure class.
const (
	ErrMsgNoResults       = "관련 문서를 찾을 수 없습니다."
	ErrMsgAPIError        = "API 호출 중 오류가 발생했습니다."
	ErrMsgTimeout         = "요청 시간이 초과되었습니다."
	ErrMsgInvalidQuery    = "질문을 이해할 수 없습니다. 다시 입력해주세요."
	ErrMsgConnectionError = "서버 연결에 실패했습니다."
	ErrMsgUnknownError    = "알 수 없는 오류가 발생했습니다."
)

// Progress status messages streamed over the websocket channel.
const (
	StatusAnalyzing  = "질문을 분석하고 있습니다..."
	StatusSearching  = "관련 문서를 검색하고 있습니다..."
	StatusEvaluating = "검색 결과를 평가하고 있습니다..."
	StatusGenerating = "답변을 생성하고 있습니다..."
	StatusComplete   = "완료되었습니다."
)

// Clarification fallbacks used when the LLM cannot produce a structured
// clarification. Keyed by ambiguity type; the generic entries cover unknown
// types.
const (
	ClarifyQuestionMultipleInterpretation = "질문을 어떤 측면에서 답변해 드릴까요?"
	ClarifyQuestionMissingContext         = "추가 정보가 필요합니다. 어떤 상황인가요?"
	ClarifyQuestionVagueTerm              = "좀 더 구체적으로 알려주시겠어요?"
	ClarifyQuestionGeneric                = "질문을 좀 더 구체적으로 알려주시겠어요?"
)

var (
	ClarifyOptionsMultipleInterpretation = []string{"개념 설명이 필요해요", "사용 방법을 알고 싶어요", "문제 해결이 필요해요"}
	ClarifyOptionsMissingContext         = []string{"설정 관련", "개발 관련", "배포 관련"}
	ClarifyOptionsVagueTerm              = []string{"기본 개념", "고급 기능", "실제 예시"}
	ClarifyOptionsGeneric                = []string{"자세한 설명", "간단한 요약", "예시 코드"}
)
