package circleci

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ethpandaops/reportoor/pkg/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const requestTimeout = 30 * time.Second

// Job is one job of a workflow as returned by the CircleCI v2 API.
type Job struct {
	Name        string `json:"name"`
	JobNumber   int64  `json:"job_number"`
	ProjectSlug string `json:"project_slug"`
	Status      string `json:"status"`
}

// Artifact is one artifact produced by a job. NodeIndex identifies the
// parallel execution shard that wrote it.
type Artifact struct {
	Path      string `json:"path"`
	NodeIndex int    `json:"node_index"`
	URL       string `json:"url"`
}

// Client talks to the CircleCI v2 API. All requests carry the configured
// token and pass through a shared rate limiter.
type Client struct {
	log        logrus.FieldLogger
	cfg        *config.CircleCIConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a CircleCI API client from the given configuration.
func NewClient(log logrus.FieldLogger, cfg *config.CircleCIConfig) *Client {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	}

	return &Client{
		log:        log.WithField("component", "circleci"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// pagedResponse is the common shape of CircleCI list endpoints.
type pagedResponse[T any] struct {
	Items         []T    `json:"items"`
	NextPageToken string `json:"next_page_token"`
}

// ListWorkflowJobs returns all jobs of a workflow, following pagination.
func (c *Client) ListWorkflowJobs(
	ctx context.Context, workflowID string,
) ([]Job, error) {
	endpoint := fmt.Sprintf("%s/workflow/%s/job",
		c.cfg.APIURL, url.PathEscape(workflowID))

	jobs, err := listPaged[Job](ctx, c, endpoint)
	if err != nil {
		return nil, fmt.Errorf("listing workflow jobs: %w", err)
	}

	return jobs, nil
}

// ListJobArtifacts returns all artifacts of a job, following pagination.
func (c *Client) ListJobArtifacts(
	ctx context.Context, projectSlug string, jobNumber int64,
) ([]Artifact, error) {
	endpoint := fmt.Sprintf("%s/project/%s/%d/artifacts",
		c.cfg.APIURL, projectSlug, jobNumber)

	artifacts, err := listPaged[Artifact](ctx, c, endpoint)
	if err != nil {
		return nil, fmt.Errorf("listing job artifacts: %w", err)
	}

	return artifacts, nil
}

// FetchArtifactText downloads an artifact and returns its body as text.
func (c *Client) FetchArtifactText(
	ctx context.Context, artifactURL string,
) (string, error) {
	body, err := c.get(ctx, artifactURL)
	if err != nil {
		return "", fmt.Errorf("fetching artifact: %w", err)
	}

	return string(body), nil
}

// listPaged collects items from a CircleCI list endpoint across pages.
func listPaged[T any](
	ctx context.Context, c *Client, endpoint string,
) ([]T, error) {
	var (
		items     []T
		pageToken string
	)

	for {
		reqURL := endpoint
		if pageToken != "" {
			reqURL = endpoint + "?page-token=" + url.QueryEscape(pageToken)
		}

		body, err := c.get(ctx, reqURL)
		if err != nil {
			return nil, err
		}

		var page pagedResponse[T]
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("parsing response: %w", err)
		}

		items = append(items, page.Items...)

		if page.NextPageToken == "" {
			return items, nil
		}

		pageToken = page.NextPageToken
	}
}

// get performs a rate-limited GET with the token header and returns the
// response body. Non-2xx responses are errors.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	if token := c.cfg.ResolveToken(); token != "" {
		req.Header.Set("Circle-Token", token)
	}

	c.log.WithField("url", reqURL).Debug("GET")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", reqURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: unexpected status %d",
			reqURL, resp.StatusCode)
	}

	return body, nil
}
