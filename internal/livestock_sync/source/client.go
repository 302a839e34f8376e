package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// DefaultTimeout bounds every upstream call.
const DefaultTimeout = 10 * time.Second

// Method 요청 방식
type Method string

const (
	MethodGet      Method = "GET"       // params go to the query string
	MethodPostJSON Method = "POST/JSON" // params go to a JSON body
)

// Request describes one upstream call.
type Request struct {
	Endpoint string // short name used in logs and failures
	URL      string
	Method   Method
	Params   map[string]string
	Headers  map[string]string
}

// Client performs single-attempt HTTP calls and turns every problem into a *Failure.
type Client struct {
	Log        *zap.Logger
	HTTPClient *http.Client
}

// NewClient 클라이언트 생성. timeout <= 0 uses DefaultTimeout.
func NewClient(log *zap.Logger, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		Log:        log,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Do sends the request once and returns the response body of a 2xx answer.
func (c *Client) Do(ctx context.Context, r Request) ([]byte, error) {
	req, err := buildHTTPRequest(ctx, r)
	if err != nil {
		return nil, &Failure{Kind: FailureRequest, Endpoint: r.Endpoint, Err: err}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, transientFailure(r.Endpoint, 0, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.Log.Warn("Failed to close response body", zap.String("endpoint", r.Endpoint), zap.Error(err))
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, transientFailure(r.Endpoint, resp.StatusCode,
			fmt.Errorf("unexpected status: %s", errorSummary(resp.Header.Get("Content-Type"), raw)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transientFailure(r.Endpoint, resp.StatusCode, fmt.Errorf("read body: %w", err))
	}

	c.Log.Debug("Fetched upstream response",
		zap.String("endpoint", r.Endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Int("bodySize", len(body)),
	)
	return body, nil
}

func buildHTTPRequest(ctx context.Context, r Request) (*http.Request, error) {
	var req *http.Request
	var err error

	switch Method(strings.ToUpper(string(r.Method))) {
	case MethodGet, "":
		u, perr := url.Parse(r.URL)
		if perr != nil {
			return nil, fmt.Errorf("parse url: %w", perr)
		}
		q := u.Query()
		for k, v := range r.Params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)

	case MethodPostJSON:
		jsonData, merr := json.Marshal(r.Params)
		if merr != nil {
			return nil, fmt.Errorf("marshal params: %w", merr)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(jsonData))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}

	default:
		return nil, fmt.Errorf("unsupported method: %s", r.Method)
	}

	if err != nil {
		return nil, err
	}
	if req.URL.Host == "" {
		return nil, errors.New("url has no host")
	}

	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

const (
	errorBodyLimit   = 8 << 10
	errorSummaryRune = 256
)

// errorSummary 오류 응답 본문 요약. 공공 API 앞단 게이트웨이는 HTML 페이지로 응답하므로
// 제목과 보이는 텍스트만 남긴다.
func errorSummary(contentType string, raw []byte) string {
	text := string(raw)
	if strings.Contains(strings.ToLower(contentType), "html") {
		if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw)); err == nil {
			doc.Find("script, style").Remove()
			title := strings.TrimSpace(doc.Find("title").First().Text())
			doc.Find("title").Remove()
			text = strings.Join(strings.Fields(title+" "+doc.Text()), " ")
		}
	}
	text = strings.TrimSpace(text)
	if runes := []rune(text); len(runes) > errorSummaryRune {
		text = string(runes[:errorSummaryRune])
	}
	return text
}
