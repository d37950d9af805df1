package stringutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakePathPrefixer(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"", "/", "/"},
		{"", "/config", "/config"},
		{"/", "/api/", "/api/"},
		{"mailman", "/", "/mailman/"},
		{"/mailman/", "/public/", "/mailman/public/"},
		{"/a/b", "config", "/a/b/config"},
		{"/a/b", "", "/a/b/"},
	}
	for _, tc := range tests {
		t.Run(tc.base+"+"+tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, MakePathPrefixer(tc.base)(tc.path))
		})
	}
}
