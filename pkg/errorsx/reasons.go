package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	ReasonConfig ReasonCode = "config"

	ReasonLLMGenerate  ReasonCode = "llm_generate"
	ReasonLLMRateLimit ReasonCode = "llm_rate_limit"

	ReasonToolUnknown      ReasonCode = "tool_unknown"
	ReasonToolArgs         ReasonCode = "tool_args"
	ReasonToolDuplicate    ReasonCode = "tool_duplicate"
	ReasonToolLoopExceeded ReasonCode = "tool_loop_exceeded"

	ReasonAmadeusAuth    ReasonCode = "amadeus_auth"
	ReasonAmadeusRequest ReasonCode = "amadeus_request"

	ReasonTransportSend ReasonCode = "transport_send"
)
