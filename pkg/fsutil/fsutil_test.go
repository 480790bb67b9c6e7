package fsutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOwner(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *OwnerConfig
		wantErr bool
	}{
		{
			name:  "empty returns nil",
			input: "",
			want:  nil,
		},
		{
			name:  "valid",
			input: "1000:1000",
			want:  &OwnerConfig{UID: 1000, GID: 1000},
		},
		{
			name:    "missing separator",
			input:   "1000",
			wantErr: true,
		},
		{
			name:    "non-numeric uid",
			input:   "root:0",
			wantErr: true,
		},
		{
			name:    "non-numeric gid",
			input:   "0:wheel",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOwner(tt.input)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
