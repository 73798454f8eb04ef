package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/lestrrat-go/ocisig"
	"github.com/lestrrat-go/ocisig/ocr"
	"github.com/sirupsen/logrus"
)

// maxProxyRequestSize bounds the JSON envelope accepted by Proxy.
const maxProxyRequestSize = 32 << 20

// ProxyRequest is the JSON body accepted by Proxy.
type ProxyRequest struct {
	Method string          `json:"method"`
	Path   string          `json:"path"`
	Body   json.RawMessage `json:"body,omitempty"`

	// Service, Region and Domain override the proxy's endpoint defaults.
	// The domain is carried in the "host" field, as in
	// "<service>.<region>.<host>".
	Service string `json:"service,omitempty"`
	Region  string `json:"region,omitempty"`
	Domain  string `json:"host,omitempty"`

	// FullHost, when set, is used instead of the derived host.
	FullHost string `json:"fullHost,omitempty"`

	// ExtractText asks for the upstream response to be treated as an
	// AnalyzeDocument result and its text reconstructed into rawText.
	ExtractText bool `json:"extractText,omitempty"`
}

// ProxyResponse is the JSON body written by Proxy after an upstream call.
type ProxyResponse struct {
	Status     int     `json:"status"`
	StatusText string  `json:"statusText"`
	Data       any     `json:"data"`
	RawText    *string `json:"rawText"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Proxy is an http.Handler that signs and forwards calls described by a
// ProxyRequest, so that callers never hold OCI credentials.
type Proxy struct {
	client        *http.Client
	endpoint      ocisig.Endpoint
	scheme        string
	reconstructor *ocr.Reconstructor
	logger        logrus.FieldLogger
}

// NewProxy creates a Proxy that signs with creds.
func NewProxy(creds *ocisig.Credentials, options ...ProxyOption) *Proxy {
	p := &Proxy{
		endpoint:      ocisig.DefaultEndpoint(),
		scheme:        "https",
		reconstructor: ocr.NewReconstructor(),
		logger:        discardLogger(),
	}

	var timeout time.Duration
	var transportOptions []TransportOption
	for _, option := range options {
		switch option.Ident() {
		case identEndpoint{}:
			p.endpoint = option.Value().(ocisig.Endpoint)
		case identScheme{}:
			if s, _ := option.Value().(string); s != "" {
				p.scheme = s
			}
		case identReconstructor{}:
			if r, ok := option.Value().(*ocr.Reconstructor); ok && r != nil {
				p.reconstructor = r
			}
		case identLogger{}:
			if l, ok := option.Value().(logrus.FieldLogger); ok && l != nil {
				p.logger = l
			}
		case identTimeout{}:
			timeout = option.Value().(time.Duration)
		}
		if to, ok := option.(TransportOption); ok {
			transportOptions = append(transportOptions, to)
		}
	}

	p.client = NewClient(creds, transportOptions...)
	p.client.Timeout = timeout
	return p
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		p.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	var preq ProxyRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxProxyRequestSize))
	if err := dec.Decode(&preq); err != nil {
		p.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body", Message: err.Error()})
		return
	}

	if preq.Method == "" || preq.Path == "" {
		p.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing required fields: method and path"})
		return
	}

	res, err := p.Do(r.Context(), &preq)
	if err != nil {
		if ocisig.IsValidationError(err) {
			p.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		p.logger.WithError(err).WithFields(logrus.Fields{
			"method":     preq.Method,
			"path":       preq.Path,
			"request_id": RequestIDFromContext(r.Context()),
		}).Error("proxy request failed")
		p.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Request failed", Message: err.Error()})
		return
	}

	p.writeJSON(w, res.Status, res)
}

// Do signs and sends the call described by preq, and returns the decoded
// upstream response. Upstream error statuses are not errors; they are
// reported in Status. Invalid input is reported as a *ocisig.ValidationError.
func (p *Proxy) Do(ctx context.Context, preq *ProxyRequest) (*ProxyResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(preq.Method))
	sreq := &ocisig.Request{Method: method, Path: preq.Path}
	if err := sreq.Validate(); err != nil {
		return nil, err
	}

	ep := p.endpoint.Merge(ocisig.Endpoint{
		Service: preq.Service,
		Region:  preq.Region,
		Domain:  preq.Domain,
	})
	host, err := ocisig.ResolveHost(preq.FullHost, ep)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if ocisig.HasBody(method) && len(preq.Body) > 0 {
		var buf bytes.Buffer
		if err := json.Compact(&buf, preq.Body); err != nil {
			return nil, &ocisig.ValidationError{Field: "body", Message: err.Error()}
		}
		serialized, err := ocisig.SerializeBody(buf.Bytes())
		if err != nil {
			return nil, err
		}
		if serialized != nil {
			body = bytes.NewReader(serialized)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, p.scheme+"://"+host+preq.Path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}
	req.Header.Set("Accept", ocisig.JSONContentType)

	p.logger.WithFields(logrus.Fields{
		"method": method,
		"url":    req.URL.String(),
	}).Info("forwarding request")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	out := &ProxyResponse{
		Status:     res.StatusCode,
		StatusText: statusText(res),
		Data:       string(raw),
	}

	isJSON := strings.Contains(res.Header.Get("Content-Type"), ocisig.JSONContentType)
	if !isJSON || !json.Valid(raw) {
		return out, nil
	}
	out.Data = json.RawMessage(raw)

	if preq.ExtractText {
		doc, err := ocr.ParseDocument(raw)
		if err != nil {
			p.logger.WithError(err).Debug("response is not an OCR document")
			return out, nil
		}
		if doc.Pages != nil {
			text := p.reconstructor.Reconstruct(doc)
			out.RawText = &text
		}
	}
	return out, nil
}

// statusText returns the reason phrase of res, "OK" for "200 OK".
func statusText(res *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(res.Status, strconv.Itoa(res.StatusCode)))
	if text == "" {
		text = http.StatusText(res.StatusCode)
	}
	return text
}

func (p *Proxy) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", ocisig.JSONContentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		p.logger.WithError(err).Warn("failed to write response")
	}
}

