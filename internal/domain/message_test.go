package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeMessageKind(t *testing.T) {
	req := require.New(t)

	req.Equal(MessageKindChat, NormalizeMessageKind(""))
	req.Equal(MessageKindChat, NormalizeMessageKind("chat"))
	req.Equal(MessageKindChat, NormalizeMessageKind("something-else"))
	req.Equal(MessageKindCarePoint, NormalizeMessageKind("care-point"))
	req.Equal(MessageKindCarePoint, NormalizeMessageKind(" CARE-POINT "))
}

func TestTruncateMessageText(t *testing.T) {
	req := require.New(t)

	short := "take medication twice daily"
	req.Equal(short, TruncateMessageText(short))

	long := strings.Repeat("a", MaxMessageLength+500)
	truncated := TruncateMessageText(long)
	req.Len([]rune(truncated), MaxMessageLength)
}

func TestCanCreateCarePoint(t *testing.T) {
	req := require.New(t)

	req.False(NewIdentity("p@example.com", RoleUser, 0).CanCreateCarePoint())
	req.True(NewIdentity("d@example.com", RoleDoctor, 7).CanCreateCarePoint())
	req.True(NewIdentity("a@example.com", RoleAdmin, 0).CanCreateCarePoint())
}

func TestNewIdentityNormalizesEmail(t *testing.T) {
	req := require.New(t)

	identity := NewIdentity("  Patient@Example.COM ", "", 0)
	req.Equal("patient@example.com", identity.Email)
	req.Equal(RoleUser, identity.Role)
}
