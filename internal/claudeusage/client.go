// Package claudeusage fetches Claude Code plan usage from the Anthropic
// OAuth usage endpoint and folds every outcome into a Result.
package claudeusage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/zsprackett/usagetray/internal/httpclient"
)

const (
	APIHost   = "api.anthropic.com"
	APIPort   = 443
	UsagePath = "/api/oauth/usage"
	betaFlag  = "oauth-2025-04-20"
)

// Getter is the part of httpclient.Client the fetcher needs.
type Getter interface {
	Get(ctx context.Context, host string, port int, path string, headers http.Header) httpclient.Response
}

type Client struct {
	http   Getter
	host   string
	port   int
	logger *slog.Logger
}

type Option func(*Client)

// WithEndpoint overrides the API host and port.
func WithEndpoint(host string, port int) Option {
	return func(c *Client) {
		c.host = host
		c.port = port
	}
}

func New(g Getter, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{http: g, host: APIHost, port: APIPort, logger: logger}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchUsage makes a single attempt. There is no retry; the poll interval
// is the retry.
func (c *Client) FetchUsage(ctx context.Context, accessToken string) Result {
	if accessToken == "" {
		return Failed{Kind: KindNoToken, Message: "No access token found"}
	}

	h := http.Header{}
	h.Set("Authorization", "Bearer "+accessToken)
	h.Set("anthropic-beta", betaFlag)
	h.Set("Accept", "application/json")

	resp := c.http.Get(ctx, c.host, c.port, UsagePath, h)
	if resp.Code == httpclient.CodeTooLarge {
		c.logger.Debug("usage response too large", "status", resp.StatusCode, "err", resp.Err)
		if resp.StatusCode != http.StatusOK {
			return classify(resp.StatusCode, nil)
		}
		return Failed{Kind: KindServer, Message: "Response too large"}
	}
	if resp.Code != httpclient.CodeNone {
		c.logger.Debug("usage request failed", "code", int(resp.Code), "err", resp.Err)
		return Failed{Kind: KindNetwork, Message: c.transportMessage(resp.Code)}
	}
	c.logger.Debug("usage response", "status", resp.StatusCode, "body", humanize.Bytes(uint64(len(resp.Body))))
	return classify(resp.StatusCode, resp.Body)
}

func (c *Client) transportMessage(code httpclient.ErrorCode) string {
	switch code {
	case httpclient.CodeCannotConnect:
		return "Cannot connect to " + c.host
	case httpclient.CodeTimeout:
		return "Request timed out"
	case httpclient.CodeNameNotResolved:
		return "DNS resolution failed"
	default:
		return fmt.Sprintf("Network error (code %d)", int(code))
	}
}

// classify checks status and body before anything is parsed.
func classify(status int, body []byte) Result {
	switch {
	case status == http.StatusUnauthorized:
		return Failed{Kind: KindAuth, Message: "Token expired - reopen Claude Code"}
	case status == http.StatusForbidden:
		return Failed{Kind: KindAuth, Message: "Access denied"}
	case status != http.StatusOK:
		return Failed{Kind: KindServer, Message: fmt.Sprintf("API error (HTTP %d)", status)}
	case len(body) == 0:
		return Failed{Kind: KindServer, Message: "Empty response"}
	}

	u, err := Parse(body)
	if err != nil {
		return Failed{Kind: KindParse, Message: "JSON parse error"}
	}
	return Valid{Usage: u}
}

// Parse decodes a usage body. Only a body that is not a JSON object (or
// null) is an error; each window and the extra-usage block degrade to
// absent independently when missing, null or malformed.
func Parse(body []byte) (Usage, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		return Usage{}, fmt.Errorf("parse usage: %w", err)
	}
	u := NewUsage()
	u.FiveHour = parseWindow(root["five_hour"])
	u.SevenDay = parseWindow(root["seven_day"])
	u.SevenDayOpus = parseWindow(root["seven_day_opus"])
	u.SevenDaySonnet = parseWindow(root["seven_day_sonnet"])
	u.Extra = parseExtra(root["extra_usage"])
	return u, nil
}

// parseWindow treats a nil, null or non-object value identically.
func parseWindow(raw json.RawMessage) Window {
	w := absentWindow()
	fields, ok := object(raw)
	if !ok {
		return w
	}
	var util float64
	if decode(fields["utilization"], &util) {
		w.Utilization = util
	}
	var resets string
	if decode(fields["resets_at"], &resets) {
		w.ResetsAt = resets
	}
	return w
}

func parseExtra(raw json.RawMessage) *ExtraUsage {
	fields, ok := object(raw)
	if !ok {
		return nil
	}
	var e ExtraUsage
	decode(fields["is_enabled"], &e.Enabled)
	var limit, used float64
	if decode(fields["monthly_limit"], &limit) {
		e.MonthlyLimit = Cents(limit)
	}
	if decode(fields["used_credits"], &used) {
		e.UsedCredits = Cents(used)
	}
	var util float64
	if decode(fields["utilization"], &util) {
		e.Utilization = &util
	}
	return &e
}

func object(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

// decode reports whether raw held a non-null value of v's type.
func decode(raw json.RawMessage, v any) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}
