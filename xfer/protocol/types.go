package protocol

type MessageType uint8

const (
	MessageTypeKeyShare MessageType = 1
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeKeyShare:
		return "KEY_SHARE"
	default:
		return "UNKNOWN"
	}
}
