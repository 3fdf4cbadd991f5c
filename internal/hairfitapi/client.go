// Package hairfitapi is the HTTP client for the hairfit backend. It
// implements the collaborator interfaces the workflow engine consumes.
package hairfitapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"hairfit/internal/domain"
	"hairfit/internal/infra"
)

const (
	defaultBaseURL        = "http://127.0.0.1:8000"
	defaultRequestTimeout = 30 * time.Second
	memberPageSize        = 100
	historyPageSize       = 100
	maxImageBytes         = 20 << 20
)

// Options configures the backend client. RequestTimeout bounds every call
// except Synthesize, which runs until the caller's context ends.
type Options struct {
	BaseURL        string
	Token          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client talks to the hairfit backend over HTTP.
type Client struct {
	baseURL        string
	token          string
	httpClient     *http.Client
	logger         *infra.Logger
	requestTimeout time.Duration
}

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("hairfit api: %d %s: %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("hairfit api: %d: %s", e.Status, msg)
}

// Unwrap lets errors.Is(err, domain.ErrNotFound) match 404 responses.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

type stylesResponse struct {
	Styles []domain.Style `json:"styles"`
}

type synthesizeResponse struct {
	ResultImage string `json:"result_image"`
}

type uploadResponse struct {
	PhotoPath string `json:"photo_path"`
}

// NewClient constructs a client with defaults.
func NewClient(opts Options) *Client {
	// No http.Client.Timeout: it would cap synthesis below the session bound.
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:        baseURL,
		token:          strings.TrimSpace(opts.Token),
		httpClient:     httpClient,
		logger:         infra.OrNop(opts.Logger),
		requestTimeout: timeout,
	}
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string { return c.baseURL }

// ListStyles fetches the full style catalog.
func (c *Client) ListStyles(ctx context.Context) ([]domain.Style, error) {
	var out stylesResponse
	if err := c.getJSON(ctx, "/styles", &out); err != nil {
		return nil, err
	}
	for i := range out.Styles {
		out.Styles[i].Gender = domain.ParseGender(string(out.Styles[i].Gender))
	}
	return out.Styles, nil
}

// ListMembers pages through every member.
func (c *Client) ListMembers(ctx context.Context) ([]domain.Member, error) {
	var all []domain.Member
	for skip := 0; ; skip += memberPageSize {
		var page []domain.Member
		q := url.Values{}
		q.Set("skip", strconv.Itoa(skip))
		q.Set("limit", strconv.Itoa(memberPageSize))
		if err := c.getJSON(ctx, "/members?"+q.Encode(), &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < memberPageSize {
			return all, nil
		}
	}
}

// GetMember fetches one member.
func (c *Client) GetMember(ctx context.Context, id string) (*domain.Member, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty member id", domain.ErrNotFound)
	}
	var m domain.Member
	if err := c.getJSON(ctx, "/members/"+url.PathEscape(id), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// FetchImage downloads an image by absolute URL.
func (c *Client) FetchImage(ctx context.Context, rawURL string) (domain.RawBinary, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.RawBinary{}, fmt.Errorf("hairfit api: build image request: %w", err)
	}
	if c.sameOrigin(rawURL) {
		c.authorize(req)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RawBinary{}, fmt.Errorf("hairfit api: fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return domain.RawBinary{}, decodeError(resp)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return domain.RawBinary{}, fmt.Errorf("hairfit api: read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return domain.RawBinary{}, fmt.Errorf("hairfit api: image exceeds %d bytes", maxImageBytes)
	}
	mime := mimetype.Detect(data).String()
	if !strings.HasPrefix(mime, "image/") {
		if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "image/") {
			mime = ct
		}
	}
	return domain.RawBinary{Data: data, MIMEType: mime}, nil
}

// Synthesize posts the client photo and style id and returns the base64
// composite. Only ctx bounds the call; the session supplies the deadline.
func (c *Client) Synthesize(ctx context.Context, image domain.RawBinary, styleID string) (string, error) {
	if image.Empty() {
		return "", errors.New("hairfit api: synthesize: empty image")
	}
	body, contentType, err := multipartImage(image, "client_photo", map[string]string{"style_id": styleID})
	if err != nil {
		return "", err
	}
	var out synthesizeResponse
	if err := c.send(ctx, http.MethodPost, "/synthesize", contentType, body, &out); err != nil {
		return "", err
	}
	return out.ResultImage, nil
}

// UploadImage stores image under kind and returns the server-relative path.
func (c *Client) UploadImage(ctx context.Context, kind domain.UploadKind, image domain.RawBinary) (string, error) {
	if image.Empty() {
		return "", errors.New("hairfit api: upload: empty image")
	}
	body, contentType, err := multipartImage(image, strings.TrimSuffix(string(kind), "-photo"), nil)
	if err != nil {
		return "", err
	}
	var out uploadResponse
	if err := c.doJSON(ctx, http.MethodPost, "/upload/"+string(kind), contentType, body, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.PhotoPath) == "" {
		return "", errors.New("hairfit api: upload response has no photo_path")
	}
	return out.PhotoPath, nil
}

// CreateRecord writes a synthesis history record.
func (c *Client) CreateRecord(ctx context.Context, rec domain.NewHistoryRecord) (*domain.HistoryRecord, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("hairfit api: encode history record: %w", err)
	}
	var out domain.HistoryRecord
	if err := c.doJSON(ctx, http.MethodPost, "/synthesis-history", "application/json", bytes.NewReader(payload), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRecords pages through every history record, newest first as ordered
// by the backend.
func (c *Client) ListRecords(ctx context.Context) ([]domain.HistoryRecord, error) {
	var all []domain.HistoryRecord
	for skip := 0; ; skip += historyPageSize {
		var page []domain.HistoryRecord
		q := url.Values{}
		q.Set("skip", strconv.Itoa(skip))
		q.Set("limit", strconv.Itoa(historyPageSize))
		if err := c.getJSON(ctx, "/synthesis-history?"+q.Encode(), &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < historyPageSize {
			return all, nil
		}
	}
}

// GetRecord fetches one history record.
func (c *Client) GetRecord(ctx context.Context, id string) (*domain.HistoryRecord, error) {
	var out domain.HistoryRecord
	if err := c.getJSON(ctx, "/synthesis-history/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRecord removes one history record.
func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/synthesis-history/"+url.PathEscape(id), "", nil, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, "", nil, out)
}

// doJSON is send bounded by the per-request timeout.
func (c *Client) doJSON(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()
	return c.send(ctx, method, path, contentType, body, out)
}

func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("hairfit api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.authorize(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("hairfit api request failed")
		return fmt.Errorf("hairfit api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("hairfit api request")

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("hairfit api: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) sameOrigin(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, base.Scheme) && strings.EqualFold(u.Host, base.Host)
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode}
	var payload errorResponse
	if err := json.Unmarshal(raw, &payload); err == nil {
		apiErr.Code = payload.Error
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Detail
		}
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

func multipartImage(image domain.RawBinary, name string, fields map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("hairfit api: write field %s: %w", k, err)
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s.%s"`, name, image.Extension()))
	h.Set("Content-Type", image.MIME())
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("hairfit api: create file part: %w", err)
	}
	if _, err := part.Write(image.Data); err != nil {
		return nil, "", fmt.Errorf("hairfit api: write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("hairfit api: close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var (
	_ domain.MemberDirectory = (*Client)(nil)
	_ domain.StyleLister     = (*Client)(nil)
	_ domain.PhotoFetcher    = (*Client)(nil)
	_ domain.Synthesizer     = (*Client)(nil)
	_ domain.AssetUploader   = (*Client)(nil)
	_ domain.HistoryStore    = (*Client)(nil)
)
