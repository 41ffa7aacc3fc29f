package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalReturnURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/?tab=courses", "/?tab=courses"},
		{"//evil.example.com/", "/"},
		{"/\\evil.example.com", "/"},
		{"https://evil.example.com/", "/"},
		{"relative", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, localReturnURL(tt.in))
		})
	}
}
