package synth

import "context"

// Request is one synthesis call. Text is passed through verbatim,
// bracketed delivery tags included; the model interprets them natively.
// PreviousRequestIDs carries up to three prior generation IDs for the same
// voice, oldest first, so the provider can stitch prosody across turns.
type Request struct {
	Text               string
	VoiceID            string
	Model              string
	OutputFormat       string
	PreviousRequestIDs []string
}

// Result is the provider's response: the encoded audio buffer and the
// generation ID to feed into future requests for the same voice.
type Result struct {
	Audio        []byte
	GenerationID string
}

// Synthesizer defines the contract for any TTS vendor implementation.
type Synthesizer interface {
	// Name returns the adapter name for logging/metrics.
	Name() string
	// Synthesize performs one text-to-speech call.
	Synthesize(ctx context.Context, req Request) (Result, error)
}
