package helper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"结题报告.pdf", "结题报告.pdf"},
		{"report v2.pdf", "report_v2.pdf"},
		{"../../etc/passwd", "passwd"},
		{"a/b/c.txt", "c.txt"},
		{"  spaced.doc  ", "spaced.doc"},
		{"<script>.js", "script_.js"},
		{"///", "file"},
		{"", "file"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}
}

func TestStoredNameNoCollision(t *testing.T) {
	got := StoredName("报告.pdf", func(string) bool { return false })
	assert.Equal(t, "报告.pdf", got)

	got = StoredName("报告.pdf", nil)
	assert.Equal(t, "报告.pdf", got)
}

func TestStoredNameCollisionSuffix(t *testing.T) {
	got := StoredName("报告.pdf", func(name string) bool { return name == "报告.pdf" })
	assert.NotEqual(t, "报告.pdf", got)
	assert.True(t, strings.HasPrefix(got, "报告_"))
	assert.True(t, strings.HasSuffix(got, ".pdf"))
}

func TestTimestampedName(t *testing.T) {
	got := TimestampedName("abc", "照片.PNG")
	assert.True(t, strings.HasPrefix(got, "abc_"))
	assert.True(t, strings.HasSuffix(got, ".png"))
}
