package upload

import (
	"testing"

	"github.com/ethpandaops/reportoor/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestResolvePrefix(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		workflowID string
		want       string
	}{
		{
			name:       "default prefix",
			prefix:     "",
			workflowID: "b8e63ef4-7b04-4b5f-8aa6-5a6c2c2c7b5e",
			want:       "reports/workflows/b8e63ef4-7b04-4b5f-8aa6-5a6c2c2c7b5e",
		},
		{
			name:       "custom prefix",
			prefix:     "my-project/ci",
			workflowID: "wf-123",
			want:       "my-project/ci/wf-123",
		},
		{
			name:       "trailing slash stripped",
			prefix:     "my-prefix/",
			workflowID: "wf-123",
			want:       "my-prefix/wf-123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &s3Uploader{
				cfg: &config.S3UploadConfig{Prefix: tt.prefix},
			}
			got := u.resolvePrefix(tt.workflowID)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantPrefix string
	}{
		{
			name:       "json file",
			path:       "outputs/test_summary.json",
			wantPrefix: "application/json",
		},
		{
			name:       "no extension",
			path:       "outputs/Makefile",
			wantPrefix: "application/octet-stream",
		},
		{
			name:       "txt file",
			path:       "outputs/notes.txt",
			wantPrefix: "text/plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectContentType(tt.path)
			assert.Contains(t, got, tt.wantPrefix)
		})
	}
}
