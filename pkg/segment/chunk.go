package segment

import "strings"

// DefaultChunkLimit caps the characters sent per synthesis request,
// leaving headroom under the provider's 5000-character request limit.
const DefaultChunkLimit = 4000

// splitChunks breaks turn text into request-sized chunks at sentence
// boundaries. A single sentence longer than the limit is hard-split at
// the last word boundary that fits. Text at or under the limit passes
// through as one chunk.
func splitChunks(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}
	var chunks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
	}
	for _, sentence := range splitSentences(text) {
		for len(sentence) > limit {
			flush()
			cut := strings.LastIndexByte(sentence[:limit], ' ')
			if cut <= 0 {
				cut = limit
			}
			chunks = append(chunks, strings.TrimSpace(sentence[:cut]))
			sentence = strings.TrimSpace(sentence[cut:])
		}
		if sentence == "" {
			continue
		}
		if cur.Len() > 0 && cur.Len()+1+len(sentence) > limit {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(sentence)
	}
	flush()
	return chunks
}

// splitSentences splits on terminal punctuation followed by whitespace,
// keeping the punctuation with its sentence. Bracketed delivery tags
// carry no terminal punctuation, so they stay inside their sentence.
func splitSentences(text string) []string {
	var out []string
	start := 0
	i := 0
	for i < len(text) {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			i++
			continue
		}
		j := i + 1
		for j < len(text) && (text[j] == '.' || text[j] == '!' || text[j] == '?') {
			j++
		}
		if j < len(text) && text[j] != ' ' && text[j] != '\n' && text[j] != '\t' {
			// Punctuation inside a token, like "3.5" or "example.com".
			i = j
			continue
		}
		if s := strings.TrimSpace(text[start:j]); s != "" {
			out = append(out, s)
		}
		for j < len(text) && (text[j] == ' ' || text[j] == '\n' || text[j] == '\t') {
			j++
		}
		start = j
		i = j
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
