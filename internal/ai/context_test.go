package ai

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationContextAddAndGet(t *testing.T) {
	c := NewConversationContext()

	c.AddMessage(RoleUser, "send an email to pat")
	c.AddMessage(RoleAssistant, "here is the draft")

	msgs := c.GetMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, 2, c.Len())
}

func TestConversationContextTrimsKeepingFirst(t *testing.T) {
	c := NewConversationContext()

	for i := 0; i < 30; i++ {
		c.AddMessage(RoleUser, fmt.Sprintf("message %d", i))
	}

	msgs := c.GetMessages()
	require.Len(t, msgs, 20)

	// The initial request survives trimming; the tail is the most
	// recent messages.
	assert.Equal(t, "message 0", msgs[0].Content)
	assert.Equal(t, "message 29", msgs[len(msgs)-1].Content)
}

func TestConversationContextReset(t *testing.T) {
	c := NewConversationContext()
	c.AddMessage(RoleUser, "hello")

	c.Reset()

	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.GetMessages())
}
