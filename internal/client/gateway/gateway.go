// Package gateway issues authenticated HTTP calls to the storage backend and
// normalizes every non-2xx response into a *RequestError.
//
// Calls marked as authenticated read the credential immediately before the
// request is built; when it is missing the call fails with ErrNoCredential
// and nothing is sent.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/storeit/internal/common"
	"github.com/dmitrijs2005/storeit/internal/logging"
	"github.com/google/uuid"
)

// Credentials supplies the bearer token. *session.Session satisfies it.
type Credentials interface {
	Token() (string, error)
}

// Observer is told about every completed round trip.
type Observer interface {
	ObserveRequest(method, path string, status int, elapsed time.Duration)
}

// Field is one text part of a form body.
type Field struct {
	Name  string
	Value string
}

// FilePart is the file part of a multipart body. Content is streamed.
type FilePart struct {
	FieldName string
	FileName  string
	Content   io.Reader
}

type Options struct {
	// Timeout bounds each call. Zero leaves the transport default (no limit).
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logging.Logger
	Observer   Observer
}

type Gateway struct {
	base     *url.URL
	http     *http.Client
	creds    Credentials
	log      logging.Logger
	observer Observer
}

func New(baseURL string, creds Credentials, opts Options) (*Gateway, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	return &Gateway{
		base:     base,
		http:     hc,
		creds:    creds,
		log:      log.With("component", "gateway"),
		observer: opts.Observer,
	}, nil
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	auth        bool
}

// Get issues an authenticated GET.
func (g *Gateway) Get(ctx context.Context, path string, query url.Values, out any) error {
	return g.do(ctx, request{method: http.MethodGet, path: path, query: query, auth: true}, out)
}

// GetPublic issues a GET without a credential.
func (g *Gateway) GetPublic(ctx context.Context, path string, out any) error {
	return g.do(ctx, request{method: http.MethodGet, path: path}, out)
}

// PostJSON sends body as JSON. Sign-in and sign-up use it with auth=false.
func (g *Gateway) PostJSON(ctx context.Context, path string, body any, auth bool, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return g.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        bytes.NewReader(b),
		contentType: "application/json",
		auth:        auth,
	}, out)
}

// PostForm sends an authenticated form post made only of text fields.
func (g *Gateway) PostForm(ctx context.Context, path string, fields []Field, out any) error {
	return g.PostMultipart(ctx, path, fields, nil, out)
}

// PostMultipart sends an authenticated multipart post. When file is set its
// content is streamed after the text fields.
func (g *Gateway) PostMultipart(ctx context.Context, path string, fields []Field, file *FilePart, out any) error {
	if _, err := g.token(); err != nil {
		return err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeMultipart(mw, fields, file))
	}()

	err := g.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        pr,
		contentType: mw.FormDataContentType(),
		auth:        true,
	}, out)
	// unblock the writer if the request never drained the body
	pr.CloseWithError(errors.New("request finished"))
	return err
}

func writeMultipart(mw *multipart.Writer, fields []Field, file *FilePart) error {
	for _, f := range fields {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return err
		}
	}
	if file != nil {
		part, err := mw.CreateFormFile(file.FieldName, file.FileName)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return err
		}
	}
	return mw.Close()
}

func (g *Gateway) token() (string, error) {
	if g.creds == nil {
		return "", ErrNoCredential
	}
	return g.creds.Token()
}

func (g *Gateway) do(ctx context.Context, r request, out any) error {
	var token string
	if r.auth {
		t, err := g.token()
		if err != nil {
			return err
		}
		token = t
	}

	u := g.base.JoinPath(strings.TrimPrefix(r.path, "/"))
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), r.body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	start := time.Now()
	resp, err := g.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		g.observe(r.method, r.path, 0, elapsed)
		g.log.Debug(ctx, "request failed", "method", r.method, "path", r.path, "error", err)
		return fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	g.observe(r.method, r.path, resp.StatusCode, elapsed)
	g.log.Debug(ctx, "request done", "method", r.method, "path", r.path,
		"status", resp.StatusCode, "elapsed", elapsed)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{Status: resp.StatusCode, Message: backendMessage(body)}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (g *Gateway) observe(method, path string, status int, elapsed time.Duration) {
	if g.observer != nil {
		g.observer.ObserveRequest(method, path, status, elapsed)
	}
}

func backendMessage(body []byte) string {
	var m struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	return m.Message
}
