package audio

import (
	"bytes"
	"time"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// MP3Duration decodes an MP3 buffer and reports its play length. Used for
// per-segment logging only, so callers should treat errors as advisory.
func MP3Duration(data []byte) (time.Duration, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	// Length is in bytes of 16-bit stereo PCM at the decoder's sample rate.
	samples := dec.Length() / 4
	rate := int64(dec.SampleRate())
	if rate == 0 {
		return 0, nil
	}
	return time.Duration(samples) * time.Second / time.Duration(rate), nil
}
