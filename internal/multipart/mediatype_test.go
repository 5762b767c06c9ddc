package multipart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContentType(t *testing.T) {
	tests := []struct {
		name         string
		contentType  string
		wantBoundary string
		wantCharset  string
		wantErr      bool
	}{
		{
			name:         "boundary only",
			contentType:  "multipart/form-data; boundary=XYZ",
			wantBoundary: "XYZ",
			wantCharset:  "utf-8",
		},
		{
			name:         "boundary and charset",
			contentType:  "multipart/form-data; boundary=abc123; charset=iso-8859-1",
			wantBoundary: "abc123",
			wantCharset:  "iso-8859-1",
		},
		{
			name:         "quoted boundary",
			contentType:  `multipart/form-data; boundary="with spaces ok"`,
			wantBoundary: "with spaces ok",
			wantCharset:  "utf-8",
		},
		{
			name:         "case-insensitive media type",
			contentType:  "Multipart/Form-Data; boundary=XYZ",
			wantBoundary: "XYZ",
			wantCharset:  "utf-8",
		},
		{
			name:        "wrong media type",
			contentType: "application/json",
			wantErr:     true,
		},
		{
			name:        "multipart but not form-data",
			contentType: "multipart/mixed; boundary=XYZ",
			wantErr:     true,
		},
		{
			name:        "missing boundary",
			contentType: "multipart/form-data",
			wantErr:     true,
		},
		{
			name:        "empty boundary",
			contentType: `multipart/form-data; boundary=""`,
			wantErr:     true,
		},
		{
			name:        "empty header",
			contentType: "",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boundary, charset, err := ParseContentType(tt.contentType)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidContentType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBoundary, string(boundary))
			assert.Equal(t, tt.wantCharset, charset)
		})
	}
}
