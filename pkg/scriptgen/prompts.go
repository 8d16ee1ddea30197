package scriptgen

import "github.com/harunnryd/newsroom/pkg/voices"

// Length guides the generated script's spoken duration.
type Length string

const (
	LengthShort  Length = "short"  // ~2 min, ~300 words
	LengthMedium Length = "medium" // ~5 min, ~750 words
	LengthLong   Length = "long"   // ~10 min, ~1500 words
)

func (l Length) wordGuidance() string {
	switch l {
	case LengthShort:
		return "Keep it under 300 words (~2 minutes spoken)."
	case LengthLong:
		return "Write approximately 1500 words (~10 minutes spoken)."
	default:
		return "Aim for roughly 750 words (~5 minutes spoken)."
	}
}

// Audio-only guardrail shared by every format prompt.
const noTV = "This is AUDIO ONLY, not television. Never use TV-isms like " +
	"'thanks for watching', 'you're watching X', 'tune in next time', " +
	"'good evening I'm X', or any visual references. " +
	"Jump straight into the content. No show names, no sign-offs, no self-introductions."

var systemPrompts = map[voices.FormatKind]string{
	voices.FormatNews: "You are a professional news anchor scriptwriter. " +
		"Write a broadcast script for a single ANCHOR. " +
		"Be professional, concise, and informative. " +
		noTV + " " +
		"Use audio tags inline to control delivery: " +
		"[serious], [excited], [whisper], [sigh], [thoughtful], etc. " +
		"Format each line as: ANCHOR: [tag] text... with tags woven into the dialogue naturally.",
	voices.FormatPodcast: "You are a professional podcast producer. " +
		"Write a script for two hosts: HOST and CO-HOST. " +
		"Include natural banter, interruptions, and diverse intonation. " +
		noTV + " " +
		"Use audio tags inline to control delivery: " +
		"[laughing], [surprised], [excited], [whisper], [sigh], [thoughtful], etc. " +
		"Tags can appear anywhere in the text, not just at the start. " +
		"Format each line as: SPEAKER: text with [tags] woven in naturally.",
	voices.FormatDebate: "You are a debate show producer. " +
		"Write a script for MODERATOR and two debaters SIDE-A and SIDE-B. " +
		"Arguments should be sharp but civil with clear opposing viewpoints. " +
		noTV + " " +
		"Use audio tags inline to control delivery: " +
		"[angry], [sarcastic], [thoughtful], [excited], [annoyed], [surprised], etc. " +
		"Tags can appear anywhere in the text. " +
		"Format each line as: SPEAKER: text with [tags] woven in naturally.",
	voices.FormatNarrative: "You are a documentary scriptwriter. " +
		"Write a script for a single NARRATOR. " +
		"The style is cinematic and gripping, building tension and atmosphere. " +
		noTV + " " +
		"Use audio tags inline to control delivery: " +
		"[whisper], [excited], [sad], [sigh], [long pause], [dramatic], etc. " +
		"Tags can appear anywhere in the text for natural pacing. " +
		"Format each line as: NARRATOR: text with [tags] woven in naturally.",
}
