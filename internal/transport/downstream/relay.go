// Package downstream forwards multipart ranking requests to another ranking service.
package downstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/domain/document"
	"github.com/kailas-cloud/resumatch/internal/metrics"
)

const (
	// FieldJobDescription is the multipart form field carrying the job description.
	FieldJobDescription = "job_description"
	// FieldResumes is the multipart form field carrying resume files.
	FieldResumes = "resumes"

	defaultContentType = "application/json"
	maxResponseBytes   = 32 << 20
)

// Response is a downstream reply relayed to the caller unchanged.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Submission is an inbound ranking form as received. The Has flags record which keys
// were present, so an absent key and an empty one are forwarded differently.
type Submission struct {
	JobDescription    string
	HasJobDescription bool
	Files             []document.Document
	// HasResumes is set when the resumes key was sent, even with no files attached.
	HasResumes bool
}

// Config holds relay settings.
type Config struct {
	TargetURL string
	Timeout   time.Duration // zero means no timeout
	Client    *http.Client
	Logger    *zap.Logger
}

// Relay re-encodes form submissions and POSTs them to one fixed endpoint.
type Relay struct {
	target *url.URL
	client *http.Client
	logger *zap.Logger
}

// NewRelay validates the target and builds a relay.
func NewRelay(cfg *Config) (*Relay, error) {
	target, err := url.Parse(cfg.TargetURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("proxy target %q must be an absolute URL", cfg.TargetURL)
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Relay{target: target, client: client, logger: log}, nil
}

// Target returns the configured downstream URL.
func (r *Relay) Target() string { return r.target.String() }

// Forward sends the submission downstream. A 2xx reply is returned as is;
// network failures and non-2xx replies wrap domain.ErrDownstreamUnavailable.
func (r *Relay) Forward(ctx context.Context, sub Submission) (Response, error) {
	body, contentType, err := encodeForm(sub)
	if err != nil {
		return Response{}, r.fail(fmt.Errorf("encode form: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.target.String(), body)
	if err != nil {
		return Response{}, r.fail(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)

	r.logger.Debug("Forwarding ranking request",
		zap.String("target", r.target.String()),
		zap.Int("job_description_chars", len(sub.JobDescription)),
		zap.Int("files", len(sub.Files)),
	)

	resp, err := r.client.Do(req)
	if err != nil {
		return Response{}, r.fail(fmt.Errorf("post %s: %w", r.target.Redacted(), err))
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Response{}, r.fail(fmt.Errorf("read downstream response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, r.fail(fmt.Errorf("downstream returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(payload))))
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = defaultContentType
	}

	metrics.ProxyForwardsTotal.WithLabelValues("relayed").Inc()
	return Response{Status: resp.StatusCode, ContentType: ct, Body: payload}, nil
}

// HealthCheck probes the downstream service's /test route.
func (r *Relay) HealthCheck(ctx context.Context) error {
	probe := *r.target
	probe.Path = "/test"
	probe.RawQuery = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probe.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("downstream health: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downstream health: status %d", resp.StatusCode)
	}
	return nil
}

func (r *Relay) fail(err error) error {
	metrics.ProxyForwardsTotal.WithLabelValues("error").Inc()
	return fmt.Errorf("%w: %w", domain.ErrDownstreamUnavailable, err)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeForm builds a multipart body keeping each file's name and content type.
// A resumes key sent without files is re-emitted as one empty unnamed part, the way
// browsers submit an empty file input.
func encodeForm(sub Submission) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if sub.HasJobDescription {
		if err := w.WriteField(FieldJobDescription, sub.JobDescription); err != nil {
			return nil, "", err
		}
	}

	for i := range sub.Files {
		f := &sub.Files[i]
		if err := writeFilePart(w, f.Filename(), f.ContentType(), f.Payload()); err != nil {
			return nil, "", err
		}
	}
	if sub.HasResumes && len(sub.Files) == 0 {
		if err := writeFilePart(w, "", "", nil); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, filename, contentType string, payload []byte) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		FieldResumes, quoteEscaper.Replace(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(payload)
	return err
}
