// REST API client for BingX USDT-M perpetual swaps.
// RESTY + HMAC-SHA256 request signing.
package connectors

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

const apiKeyHeader = "X-BX-APIKEY"

// ErrMissingCredentials is returned before any network I/O when a private
// request is attempted without a configured key/secret pair.
var ErrMissingCredentials = errors.New("missing API credentials for private request")

// APIError carries the exchange-reported message, HTTP status and exchange
// error code for a failed transport call.
type APIError struct {
	Msg    string
	Status int
	Code   int64
}

func (e *APIError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "no message"
	}
	return fmt.Sprintf("BingX API error: %s | status: %d | code: %s", msg, e.Status, DescribeErrorCode(e.Code))
}

// Response is the normalized exchange envelope. Success is derived from
// the presence of the data field in the raw body; the exchange's own code
// is inconsistent across endpoints and cannot be trusted for this.
type Response struct {
	Code    int64           `json:"code"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
}

// BingXClient performs signed and public requests against the BingX REST
// API. The credential configuration is read-only after construction; the
// client holds no other state and is safe for concurrent use.
type BingXClient struct {
	apiKey    string
	apiSecret string
	http      *resty.Client
}

func NewClient(cfg Config) *BingXClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &BingXClient{
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		http:      httpClient,
	}
}

type requestOptions struct {
	method  string
	path    string
	params  map[string]interface{} // query parameters (GET/DELETE)
	data    map[string]interface{} // body fields (POST/PUT)
	private bool
}

// sign computes the hex HMAC-SHA256 of the canonical parameter string.
func (c *BingXClient) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// buildQueryString serializes parameters deterministically for signing:
// keys sorted ascending, values percent-encoded, slice values repeated as
// key=v1&key=v2. The exchange computes the same string server-side, so
// the encoding must not vary with map iteration order.
func buildQueryString(params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		for _, v := range expandValues(params[k]) {
			if buf.Len() > 0 {
				buf.WriteByte('&')
			}
			buf.WriteString(k)
			buf.WriteByte('=')
			buf.WriteString(encodeComponent(v))
		}
	}
	return buf.String()
}

// expandValues formats a parameter value into its wire strings; slices
// expand into one entry per element, in element order.
func expandValues(v interface{}) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, formatValue(e))
		}
		return out
	default:
		return []string{formatValue(v)}
	}
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// encodeComponent percent-encodes a value the way encodeURIComponent
// does: spaces become %20, never '+'.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// request executes one HTTP call, signing it when private, and returns
// the normalized response envelope.
func (c *BingXClient) request(opts requestOptions) (*Response, error) {
	req := c.http.R()

	if opts.private {
		if c.apiKey == "" || c.apiSecret == "" {
			return nil, ErrMissingCredentials
		}

		// Timestamp is generated at send time, not at plan time.
		signed := make(map[string]interface{})
		source := opts.params
		if opts.method != http.MethodGet && opts.method != http.MethodDelete {
			source = opts.data
		}
		for k, v := range source {
			signed[k] = v
		}
		signed["timestamp"] = time.Now().UnixMilli()

		canonical := buildQueryString(signed)
		signature := c.sign(canonical)

		req.SetHeader(apiKeyHeader, c.apiKey)

		if opts.method == http.MethodGet || opts.method == http.MethodDelete {
			req.SetQueryParamsFromValues(toURLValues(signed))
			req.SetQueryParam("signature", signature)
		} else {
			// The signature is appended to the serialized body verbatim;
			// the exchange re-derives it from the form fields.
			req.SetHeader("Content-Type", "application/x-www-form-urlencoded")
			req.SetBody(canonical + "&signature=" + encodeComponent(signature))
		}
	} else {
		if opts.method == http.MethodGet || opts.method == http.MethodDelete {
			req.SetQueryParamsFromValues(toURLValues(opts.params))
		} else if opts.data != nil {
			req.SetBody(opts.data)
		}
	}

	logger.WithFields(logger.Fields{
		"method":  opts.method,
		"path":    opts.path,
		"private": opts.private,
	}).Debug("BingX HTTP request")

	resp, err := req.Execute(opts.method, opts.path)
	if err != nil {
		logger.WithError(err).Error("BingX HTTP request failed")
		return nil, fmt.Errorf("bingx %s %s: %w", opts.method, opts.path, err)
	}

	raw := resp.Body()

	logger.WithFields(logger.Fields{
		"status": resp.StatusCode(),
		"body":   string(raw),
	}).Debug("BingX HTTP response")

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, newAPIError(resp.StatusCode(), raw)
	}

	return normalizeResponse(raw), nil
}

// newAPIError extracts the exchange message and error code from a non-2xx
// body when it is parseable JSON.
func newAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status, Msg: string(raw)}

	var body struct {
		Code json.Number `json:"code"`
		Msg  string      `json:"msg"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Msg != "" {
			apiErr.Msg = body.Msg
		}
		if code, err := body.Code.Int64(); err == nil {
			apiErr.Code = code
		}
	}
	return apiErr
}

// normalizeResponse maps a raw exchange body onto the {code, msg, data,
// success} envelope. Data stays raw so large integer identifiers keep
// full precision until decoded into json.Number fields.
func normalizeResponse(raw []byte) *Response {
	var envelope struct {
		Code json.Number     `json:"code"`
		Msg  string          `json:"msg"`
		Data json.RawMessage `json:"data"`
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&envelope); err != nil {
		logger.WithError(err).Warn("BingX response body is not valid JSON")
		return &Response{Code: -1, Msg: "response parsing failed", Success: false}
	}

	code, _ := envelope.Code.Int64()
	return &Response{
		Code:    code,
		Msg:     envelope.Msg,
		Data:    envelope.Data,
		Success: envelope.Data != nil,
	}
}

func toURLValues(params map[string]interface{}) url.Values {
	values := url.Values{}
	for k, v := range params {
		for _, s := range expandValues(v) {
			values.Add(k, s)
		}
	}
	return values
}

// ---- HTTP helper methods ----

func (c *BingXClient) Get(path string, params map[string]interface{}, private bool) (*Response, error) {
	return c.request(requestOptions{method: http.MethodGet, path: path, params: params, private: private})
}

func (c *BingXClient) Post(path string, data map[string]interface{}, private bool) (*Response, error) {
	return c.request(requestOptions{method: http.MethodPost, path: path, data: data, private: private})
}

func (c *BingXClient) Put(path string, data map[string]interface{}, private bool) (*Response, error) {
	return c.request(requestOptions{method: http.MethodPut, path: path, data: data, private: private})
}

func (c *BingXClient) Delete(path string, params map[string]interface{}, private bool) (*Response, error) {
	return c.request(requestOptions{method: http.MethodDelete, path: path, params: params, private: private})
}
