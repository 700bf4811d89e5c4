// Package forwarder implements the dispatch loop that relays inbound
// channel messages to every tenant bound to their origin.
package forwarder

// Kind classifies an inbound message for relay path selection.
type Kind int

const (
	// KindText is a plain text message with no attachment.
	KindText Kind = iota
	// KindDocument is a message carrying a document attachment.
	KindDocument
	// KindGeneric is anything else; relayed verbatim via the copy path.
	KindGeneric
)

// Attachment describes a document attached to an inbound message.
type Attachment struct {
	FileID   string
	FileName string
}

// InboundMessage is one channel post as seen by the dispatcher. It is
// ephemeral; the dispatcher persists nothing.
type InboundMessage struct {
	OriginChannel int64
	MessageID     int
	Text          string // text or caption
	Document      *Attachment
	HasMedia      bool // non-document attachment (photo, video, ...)
}

// Kind derives the relay path for the message: document when a document
// attachment is present, generic for any other attachment, text only when
// there is non-empty text and no attachment at all. Exactly one path
// applies.
func (m *InboundMessage) Kind() Kind {
	switch {
	case m.Document != nil:
		return KindDocument
	case m.HasMedia:
		return KindGeneric
	case m.Text != "":
		return KindText
	default:
		return KindGeneric
	}
}
