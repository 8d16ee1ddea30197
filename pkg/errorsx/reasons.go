package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	ReasonScriptMalformed ReasonCode = "script_malformed"
	ReasonScriptEmpty     ReasonCode = "script_empty"

	ReasonVoiceUnknown ReasonCode = "voice_unknown"

	ReasonTTSRateLimit   ReasonCode = "tts_rate_limit"
	ReasonTTSTimeout     ReasonCode = "tts_timeout"
	ReasonTTSAuth        ReasonCode = "tts_auth"
	ReasonTTSRequest     ReasonCode = "tts_request"
	ReasonTTSUnavailable ReasonCode = "tts_unavailable"
	ReasonTTSRetry       ReasonCode = "tts_retry"
	ReasonTTSCircuitOpen ReasonCode = "tts_circuit_open"

	ReasonScriptGen  ReasonCode = "scriptgen_generate"
	ReasonResearch   ReasonCode = "research_fetch"
	ReasonJoinFailed ReasonCode = "join_failed"
)
