package models

// Message is a normalized inbound message handed to the relay by the
// transport layer. MessageID and ReplyToID are transport-side identifiers in
// the sender's own chat.
type Message struct {
	// MessageID is the sender-side ID of this message.
	MessageID int
	// From is the sender's Telegram chat ID.
	From int64
	// Text is the plain text of the message, empty for media.
	Text string
	// ReplyToID is the sender-side ID of the message being replied to,
	// zero if this is not a reply.
	ReplyToID int
	// MediaGroupID groups the parts of a multi-attachment message. Empty
	// for standalone messages.
	MediaGroupID string
	// Part carries the media payload when the message is an album part.
	Part *MediaPart
}

// MediaPart is one attachment of a media group.
type MediaPart struct {
	// MessageID is the sender-side ID of the part; parts are reordered
	// by this ID before delivery.
	MessageID int
	// Kind is the attachment type: "photo", "video", "audio" or "document".
	Kind string
	// FileID is the transport's file handle for re-sending the attachment.
	FileID string
	// Caption is the part's caption, if any.
	Caption string
}
