package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/agencyflow/agencyflow/pkg/expressions"

	"github.com/clbanning/mxj/v2"
	"github.com/rs/zerolog/log"
)

const maxResponseBytes = 10 << 20

type ContentType string

const (
	ContentType_Application_JSON ContentType = "application/json"
	ContentType_Application_XML  ContentType = "application/xml"
	ContentType_Text_XML         ContentType = "text/xml"
	ContentType_Text_Plain       ContentType = "text/plain"
)

// HTTPHandler serves both the api and http node types.
type HTTPHandler struct {
	binder domain.ParameterBinder
	client *http.Client
}

func NewHTTPHandler(deps domain.HandlerDeps) domain.NodeHandler {
	client := deps.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	return &HTTPHandler{
		binder: deps.ParameterBinder,
		client: client,
	}
}

type HTTPRequestParams struct {
	URL          string            `json:"url"`
	Method       string            `json:"method"`
	Headers      map[string]string `json:"headers"`
	Query        map[string]string `json:"query"`
	Body         any               `json:"body"`
	FailOnStatus bool              `json:"failOnStatus"`
}

func (h *HTTPHandler) Validate(config map[string]any) error {
	if err := domain.RequireFields(config, "url"); err != nil {
		return err
	}

	if method, ok := config["method"].(string); ok && method != "" {
		switch strings.ToUpper(method) {
		case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead:
		default:
			return domain.NewInvalidFieldError("method", fmt.Sprintf("unsupported method %q", method))
		}
	}

	return nil
}

func (h *HTTPHandler) Execute(ctx context.Context, input domain.NodeInput) (domain.Payload, error) {
	config := expressions.BindConfig(h.binder, input.Config, input.Context.Scope(input.Input))

	var p HTTPRequestParams
	if err := bindParams(config, &p); err != nil {
		return nil, err
	}

	p.Method = strings.ToUpper(p.Method)
	if p.Method == "" {
		p.Method = http.MethodGet
	}

	if input.Context.TestMode {
		return domain.Simulated(map[string]any{
			"status": float64(http.StatusOK),
			"method": p.Method,
			"url":    p.URL,
			"data":   map[string]any{"message": "simulated response"},
		}), nil
	}

	req, err := h.newRequest(ctx, p)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("node_id", input.Node.ID).
		Str("method", p.Method).
		Str("url", req.URL.String()).
		Msg("Sending HTTP request")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := readResponseBody(resp)
	if err != nil {
		return nil, err
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok && p.FailOnStatus {
		return nil, fmt.Errorf("http request returned status %d", resp.StatusCode)
	}

	headers := make(map[string]any, len(resp.Header))
	for key := range resp.Header {
		headers[key] = resp.Header.Get(key)
	}

	return domain.Payload{
		"status":     float64(resp.StatusCode),
		"statusText": http.StatusText(resp.StatusCode),
		"ok":         ok,
		"method":     p.Method,
		"url":        p.URL,
		"headers":    headers,
		"data":       data,
	}, nil
}

func (h *HTTPHandler) newRequest(ctx context.Context, p HTTPRequestParams) (*http.Request, error) {
	target, err := url.Parse(p.URL)
	if err != nil {
		return nil, domain.NewInvalidFieldError("url", err.Error())
	}

	if len(p.Query) > 0 {
		query := target.Query()
		for key, value := range p.Query {
			query.Set(key, value)
		}
		target.RawQuery = query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)

	switch b := p.Body.(type) {
	case nil:
	case string:
		body = strings.NewReader(b)
		contentType = string(ContentType_Text_Plain)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = string(ContentType_Application_JSON)
	}

	req, err := http.NewRequestWithContext(ctx, p.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range p.Headers {
		req.Header.Set(key, value)
	}

	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}

	return req, nil
}

// readResponseBody decodes JSON and XML bodies, anything else is returned as
// text.
func readResponseBody(resp *http.Response) (any, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))

	switch {
	case mediaType == string(ContentType_Application_JSON) || strings.HasSuffix(mediaType, "+json"):
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err == nil {
			return decoded, nil
		}
	case mediaType == string(ContentType_Application_XML) || mediaType == string(ContentType_Text_XML):
		mv, err := mxj.NewMapXml(raw)
		if err == nil {
			return map[string]any(mv), nil
		}
	}

	return string(raw), nil
}

// bindParams decodes config, accepting headers and query values of any
// scalar type.
func bindParams(config map[string]any, p *HTTPRequestParams) error {
	normalized := make(map[string]any, len(config))
	for key, value := range config {
		normalized[key] = value
	}

	for _, field := range []string{"headers", "query"} {
		if object := domain.MapValue(config, field); object != nil {
			values := make(map[string]any, len(object))
			for key, value := range object {
				values[key] = domain.ToString(value)
			}
			normalized[field] = values
		} else {
			delete(normalized, field)
		}
	}

	return domain.BindConfig(normalized, p)
}
