package elevenlabs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/harunnryd/newsroom/pkg/configutil"
	"github.com/harunnryd/newsroom/pkg/errorsx"
	"github.com/harunnryd/newsroom/pkg/resilience"
	"github.com/harunnryd/newsroom/pkg/synth"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// requestIDHeader carries the generation ID used for request stitching.
const requestIDHeader = "request-id"

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client is a TTS client for the ElevenLabs convert endpoint. Unlike the
// websocket streaming surface, the HTTP endpoint returns the request-id
// header required for prosody stitching via previous_request_ids.
type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) (*Client, error) {
	if err := configutil.RequireString(cfg.APIKey, "tts.settings.api_key"); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *Client) Name() string { return "elevenlabs_tts" }

type convertRequest struct {
	Text               string   `json:"text"`
	ModelID            string   `json:"model_id,omitempty"`
	PreviousRequestIDs []string `json:"previous_request_ids,omitempty"`
}

type apiError struct {
	Detail struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"detail"`
}

func (c *Client) Synthesize(ctx context.Context, req synth.Request) (synth.Result, error) {
	body, err := sonic.Marshal(convertRequest{
		Text:               req.Text,
		ModelID:            req.Model,
		PreviousRequestIDs: req.PreviousRequestIDs,
	})
	if err != nil {
		return synth.Result{}, errorsx.Wrap(err, errorsx.ReasonTTSRequest)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", c.cfg.BaseURL, url.PathEscape(req.VoiceID))
	if req.OutputFormat != "" {
		endpoint += "?output_format=" + url.QueryEscape(req.OutputFormat)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return synth.Result{}, errorsx.Wrap(err, errorsx.ReasonTTSRequest)
	}
	httpReq.Header.Set("xi-api-key", c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return synth.Result{}, errorsx.Wrap(err, errorsx.ReasonTTSTimeout)
		}
		return synth.Result{}, errorsx.Wrap(err, errorsx.ReasonTTSUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return synth.Result{}, c.classifyStatus(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return synth.Result{}, errorsx.Wrap(err, errorsx.ReasonTTSUnavailable)
	}

	generationID := resp.Header.Get(requestIDHeader)
	slog.Debug("tts segment synthesized",
		slog.String("voice_id", req.VoiceID),
		slog.Int("size_bytes", len(audio)),
		slog.String("generation_id", generationID),
		slog.Int("stitch_depth", len(req.PreviousRequestIDs)))

	return synth.Result{Audio: audio, GenerationID: generationID}, nil
}

func (c *Client) classifyStatus(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	detail := resp.Status
	var ae apiError
	if err := sonic.Unmarshal(raw, &ae); err == nil && ae.Detail.Message != "" {
		detail = fmt.Sprintf("%s: %s", ae.Detail.Status, ae.Detail.Message)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		slog.Warn("elevenlabs rate limit", slog.String("status", resp.Status))
		return errorsx.Wrap(
			resilience.RateLimitError{Provider: "elevenlabs", Message: detail},
			errorsx.ReasonTTSRateLimit,
		)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errorsx.Wrap(fmt.Errorf("elevenlabs auth: %s", detail), errorsx.ReasonTTSAuth)
	case resp.StatusCode >= 500:
		return errorsx.Wrap(fmt.Errorf("elevenlabs server error: %s", detail), errorsx.ReasonTTSUnavailable)
	default:
		return errorsx.Wrap(fmt.Errorf("elevenlabs rejected request: %s", detail), errorsx.ReasonTTSRequest)
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

var _ synth.Synthesizer = (*Client)(nil)
