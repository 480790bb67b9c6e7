package circleci

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethpandaops/reportoor/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	client := NewClient(log, &config.CircleCIConfig{
		APIURL: srv.URL,
		Token:  "test-token",
	})

	return client, srv
}

func TestListWorkflowJobs(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/workflow/wf-123/job", r.URL.Path)
			assert.Equal(t, "test-token", r.Header.Get("Circle-Token"))

			fmt.Fprint(w, `{
				"items": [
					{
						"name": "tests_torch",
						"job_number": 42,
						"project_slug": "gh/org/repo",
						"status": "failed"
					}
				],
				"next_page_token": ""
			}`)
		},
	))

	jobs, err := client.ListWorkflowJobs(context.Background(), "wf-123")
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	assert.Equal(t, "tests_torch", jobs[0].Name)
	assert.Equal(t, int64(42), jobs[0].JobNumber)
	assert.Equal(t, "gh/org/repo", jobs[0].ProjectSlug)
}

func TestListWorkflowJobsPaginated(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page-token") == "" {
				fmt.Fprint(w, `{
					"items": [{"name": "tests_a"}],
					"next_page_token": "page2"
				}`)

				return
			}

			assert.Equal(t, "page2", r.URL.Query().Get("page-token"))
			fmt.Fprint(w, `{
				"items": [{"name": "tests_b"}],
				"next_page_token": ""
			}`)
		},
	))

	jobs, err := client.ListWorkflowJobs(context.Background(), "wf-123")
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "tests_a", jobs[0].Name)
	assert.Equal(t, "tests_b", jobs[1].Name)
}

func TestListJobArtifacts(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/project/gh/org/repo/42/artifacts", r.URL.Path)

			fmt.Fprint(w, `{
				"items": [
					{
						"path": "reports/tests_torch/summary_short.txt",
						"node_index": 1,
						"url": "https://example.com/artifact.txt"
					}
				],
				"next_page_token": ""
			}`)
		},
	))

	artifacts, err := client.ListJobArtifacts(
		context.Background(), "gh/org/repo", 42,
	)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)

	assert.Equal(t, "reports/tests_torch/summary_short.txt", artifacts[0].Path)
	assert.Equal(t, 1, artifacts[0].NodeIndex)
}

func TestFetchArtifactText(t *testing.T) {
	client, srv := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "PASSED a::b\nFAILED c::d - E\n")
		},
	))

	text, err := client.FetchArtifactText(context.Background(), srv.URL+"/artifact")
	require.NoError(t, err)
	assert.Equal(t, "PASSED a::b\nFAILED c::d - E\n", text)
}

func TestErrorStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
	))

	_, err := client.ListWorkflowJobs(context.Background(), "wf-123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
