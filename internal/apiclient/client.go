// internal/apiclient/client.go
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	maxResponseBytes = 8 << 20
	maxDownloadBytes = 64 << 20
)

// Envelope is the response shape shared by every endpoint of the API.
type Envelope[T any] struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    T        `json:"data,omitempty"`
	Error   string   `json:"error,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// rawEnvelope defers decoding of data and tolerates error/errors fields
// that are objects instead of strings.
type rawEnvelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

// Client talks to the insurance operations REST API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxDownload int64
	log         *logrus.Entry
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		maxDownload: maxDownloadBytes,
		log:         logrus.WithField("component", "apiclient"),
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, token string, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	fields := logrus.Fields{
		"method":   req.Method,
		"path":     req.URL.Path,
		"duration": time.Since(start).Milliseconds(),
	}
	if err != nil {
		c.log.WithFields(fields).WithError(err).Warn("Upstream request failed")
		return nil, &Error{Kind: KindNetwork, Message: "falha de comunicação com a API", Err: err}
	}
	fields["status"] = resp.StatusCode
	c.log.WithFields(fields).Debug("Upstream request completed")
	return resp, nil
}

// call performs a JSON request and decodes the envelope's data into out.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, token string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, query, token, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.roundTrip(req, out)
}

func (c *Client) roundTrip(req *http.Request, out interface{}) error {
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: "falha ao ler resposta da API", Err: err}
	}

	return decodeEnvelope(resp.StatusCode, raw, out)
}

// decodeEnvelope checks the HTTP status and the success flag independently:
// some endpoints answer 200 with success:false.
func decodeEnvelope(status int, raw []byte, out interface{}) error {
	var env rawEnvelope
	parseErr := json.Unmarshal(raw, &env)

	if status >= 400 {
		apiErr := &Error{Kind: kindForStatus(status), Status: status}
		if parseErr == nil {
			apiErr.Message = envelopeMessage(&env)
			apiErr.Errors = errorList(env.Errors)
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}

	if parseErr != nil {
		return &Error{Kind: KindServer, Status: status, Message: "resposta inválida da API", Err: parseErr}
	}

	if env.Success != nil && !*env.Success {
		return &Error{
			Kind:    KindBusiness,
			Status:  status,
			Message: envelopeMessage(&env),
			Errors:  errorList(env.Errors),
		}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{Kind: KindServer, Status: status, Message: "formato de dados inesperado", Err: err}
	}
	return nil
}

func envelopeMessage(env *rawEnvelope) string {
	if msg := stringOrMessage(env.Error); msg != "" {
		if env.Message != "" && env.Message != msg {
			return env.Message + ": " + msg
		}
		return msg
	}
	return env.Message
}

func stringOrMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Message
	}
	return ""
}

func errorList(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var objs []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &objs); err == nil {
		out := make([]string, 0, len(objs))
		for _, o := range objs {
			if o.Field != "" {
				out = append(out, o.Field+": "+o.Message)
			} else {
				out = append(out, o.Message)
			}
		}
		return out
	}
	return nil
}
