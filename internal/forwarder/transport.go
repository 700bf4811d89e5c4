package forwarder

import (
	"context"

	"github.com/edgard/relaybot/internal/tenant"
)

// Transport is the messaging platform capability consumed by the
// dispatcher and the command handlers. Implementations live outside the
// engine (internal/telegram).
type Transport interface {
	// SendText sends text to a channel.
	SendText(ctx context.Context, channelID int64, text string) error

	// SendDocument sends a document (by platform file reference) with the
	// given filename and caption.
	SendDocument(ctx context.Context, channelID int64, fileID, filename, caption string) error

	// CopyMessage relays a message verbatim from one channel to another.
	CopyMessage(ctx context.Context, toChannelID, fromChannelID int64, messageID int) error

	// ListJoinedChannels enumerates the channels available to the tenant
	// for source/destination binding.
	ListJoinedChannels(ctx context.Context, tenantID int64) ([]tenant.ChannelRef, error)
}
