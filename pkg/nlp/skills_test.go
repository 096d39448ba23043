package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Go ", "go"},
		{"Node.js", "node.js"},
		{"C++", "c++"},
		{"C#", "c#"},
		{"REST / gRPC", "rest grpc"},
		{"machine\tlearning", "machine learning"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeText(tt.in), "input %q", tt.in)
	}
}

func TestCanonicalSkills(t *testing.T) {
	got := CanonicalSkills([]string{"Go", "golang", "  ", "PostgreSQL", "postgres", "Node.js", "nodejs", "C++"})

	// First surface form wins; aliases and case variants fold away.
	assert.Equal(t, []string{"Go", "PostgreSQL", "Node.js", "C++"}, got)
}

func TestCanonicalSkillsCaseInsensitive(t *testing.T) {
	got := CanonicalSkills([]string{"Docker", "docker", "DOCKER"})

	assert.Equal(t, []string{"Docker"}, got)
}

func TestCanonicalSkillsEmpty(t *testing.T) {
	assert.Equal(t, []string{}, CanonicalSkills(nil))
	assert.Equal(t, []string{}, CanonicalSkills([]string{"", "   "}))
}
