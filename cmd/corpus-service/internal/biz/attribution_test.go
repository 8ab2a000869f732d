package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeCorpusDisplayName(t *testing.T) {
	assert.Equal(t, "corpus-u42-notes", EncodeCorpusDisplayName("42", "notes"))
	assert.Equal(t, "corpus-uu_1-my-corpus", EncodeCorpusDisplayName("u_1", "my-corpus"))
}

func TestOwnerAttributor(t *testing.T) {
	attributor := NewOwnerAttributor()

	tests := []struct {
		name        string
		displayName string
		description string
		want        *Attribution
	}{
		{
			name:        "current convention",
			displayName: "corpus-u42-research-notes",
			want:        &Attribution{OwnerID: "42", Name: "research-notes"},
		},
		{
			name:        "legacy name convention",
			displayName: "u42_old-notes",
			want:        &Attribution{OwnerID: "42", Name: "old-notes"},
		},
		{
			name:        "legacy description convention",
			displayName: "free-form corpus",
			description: "imported data; owner=alice",
			want:        &Attribution{OwnerID: "alice", Name: "free-form corpus"},
		},
		{
			name:        "description convention at start",
			displayName: "misc",
			description: "owner=bob",
			want:        &Attribution{OwnerID: "bob", Name: "misc"},
		},
		{
			name:        "unattributable",
			displayName: "random corpus",
			description: "no convention here",
			want:        nil,
		},
		{
			name:        "empty",
			displayName: "",
			description: "",
			want:        nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := attributor.Attribute(tt.displayName, tt.description)
			assert.Equal(t, tt.want, got)
		})
	}
}

// 当前约定优先于历史约定：描述中的owner=不覆盖显示名解析出的所有者
func TestOwnerAttributorPrecedence(t *testing.T) {
	attributor := NewOwnerAttributor()

	got := attributor.Attribute("corpus-u42-notes", "owner=intruder")
	assert.NotNil(t, got)
	assert.Equal(t, "42", got.OwnerID)
	assert.Equal(t, "notes", got.Name)
}

// 创建时编码的显示名必须能被当前解析器还原
func TestAttributionRoundTrip(t *testing.T) {
	attributor := NewOwnerAttributor()

	displayName := EncodeCorpusDisplayName("user_7", "weekly-report")
	got := attributor.Attribute(displayName, "")

	assert.NotNil(t, got)
	assert.Equal(t, "user_7", got.OwnerID)
	assert.Equal(t, "weekly-report", got.Name)
}
