package bus

import "time"

// PayloadKind tags the shape of an inbound message payload. The transport
// decodes the platform-specific message exactly once at the boundary and the
// rest of the pipeline only ever sees this union.
type PayloadKind int

const (
	// PayloadUnrecognized means no text could be extracted; the event is
	// dropped before classification.
	PayloadUnrecognized PayloadKind = iota
	// PayloadPlainText is a plain conversation message.
	PayloadPlainText
	// PayloadExtendedText is a message with links, formatting or a quote.
	PayloadExtendedText
	// PayloadMediaCaption is the caption of an image, video or document.
	PayloadMediaCaption
	// PayloadStructuredSelection is the title of a button or list reply.
	PayloadStructuredSelection
)

// String returns a short name for logging.
func (k PayloadKind) String() string {
	switch k {
	case PayloadPlainText:
		return "text"
	case PayloadExtendedText:
		return "extended"
	case PayloadMediaCaption:
		return "caption"
	case PayloadStructuredSelection:
		return "selection"
	default:
		return "unrecognized"
	}
}

// InboundMessage represents a single chat event received from the transport.
// It is immutable: created by the transport, consumed once by the controller.
type InboundMessage struct {
	ChatID    string
	SenderID  string
	MessageID string
	FromSelf  bool
	FromGroup bool
	Timestamp time.Time
	Kind      PayloadKind
	Text      string
}

// HasText reports whether the payload resolved to an extractable string.
func (m *InboundMessage) HasText() bool {
	return m.Kind != PayloadUnrecognized && m.Text != ""
}

// ConnState is the transport connection state seen by the session controller.
type ConnState int

const (
	// StateConnecting is the initial state and the state re-entered after
	// every non-terminal close.
	StateConnecting ConnState = iota
	// StateOpen means the transport is connected and delivering events.
	StateOpen
	// StateClosed means the transport dropped; Terminal on the update tells
	// the controller whether reconnecting is pointless.
	StateClosed
)

// String returns a short name for logging.
func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ConnectionUpdate is a transport lifecycle notification.
type ConnectionUpdate struct {
	State ConnState
	// Terminal is set on StateClosed when re-authentication is required and
	// automatic reconnection must not be attempted.
	Terminal bool
	// PairingChallenge carries an out-of-band pairing step (code or URL) the
	// operator has to complete while connecting. It is a side effect of
	// StateConnecting, not a state of its own.
	PairingChallenge string
	Err              error
}
