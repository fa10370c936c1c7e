package gmailclient

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMessage(t *testing.T) {
	raw := encodeMessage("elves@example.org", "pat@example.org", "Gift Details - Sub-for-Santa", "Item: Bike\nDeliver to: Hall")

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)

	assert.Equal(t,
		"From: elves@example.org\r\n"+
			"To: pat@example.org\r\n"+
			"Subject: Gift Details - Sub-for-Santa\r\n"+
			"Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n"+
			"Item: Bike\r\nDeliver to: Hall",
		string(decoded))
}

func TestEncodeMessage_NoSender(t *testing.T) {
	raw := encodeMessage("", "pat@example.org", "Hi", "Body")

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.NotContains(t, string(decoded), "From:")
}
