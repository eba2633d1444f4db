package whatsapp

import (
	"context"
	"fmt"

	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"
)

// SendText delivers a plain text message to the given address. The address
// is a full JID string as captured on the inbound message.
func (c *Client) SendText(ctx context.Context, address, text string) error {
	jid, err := types.ParseJID(address)
	if err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", address, err)
	}

	_, err = c.WAClient.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: proto.String(text),
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}
