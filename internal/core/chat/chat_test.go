package chat

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		conv    string
		role    Role
		content string
		wantErr error
	}{
		{name: "valid user", conv: "c1", role: RoleUser, content: "mark all tasks as complete"},
		{name: "valid assistant", conv: "c1", role: RoleAssistant, content: "No action taken."},
		{name: "no conversation", role: RoleUser, content: "hi", wantErr: ErrEmptyConversation},
		{name: "blank content", conv: "c1", role: RoleUser, content: "  \n", wantErr: ErrEmptyContent},
		{name: "too large", conv: "c1", role: RoleUser, content: strings.Repeat("a", MaxContentSize+1), wantErr: ErrContentTooLarge},
		{name: "bad role", conv: "c1", role: "system", content: "hi", wantErr: ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMessage(tt.conv, "owner", tt.role, tt.content)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.content, m.Content)
			assert.Equal(t, "owner", m.OwnerID)
		})
	}
}

func TestTruncateContent(t *testing.T) {
	t.Run("short content is unchanged", func(t *testing.T) {
		assert.Equal(t, "mark all tasks as complete", TruncateContent("mark all tasks as complete"))
	})

	t.Run("cuts at the size limit", func(t *testing.T) {
		got := TruncateContent(strings.Repeat("a", MaxContentSize+10))
		assert.Len(t, got, MaxContentSize)
	})

	t.Run("never splits a multi-byte rune", func(t *testing.T) {
		// "é" is two bytes, so the limit lands in the middle of one.
		in := strings.Repeat("a", MaxContentSize-1) + "éé"
		got := TruncateContent(in)
		assert.True(t, utf8.ValidString(got))
		assert.Len(t, got, MaxContentSize-1)
	})
}
