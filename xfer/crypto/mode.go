package crypto

import (
	"errors"
	"fmt"
)

var ErrUnsupportedMode = errors.New("crypto: unsupported cipher mode")

// Mode is the mode selector handed to the block cipher alongside the key and
// IV. Only ModeDefault is defined; its value is kept as the protocol has
// always sent it.
type Mode uint8

const ModeDefault Mode = 4

func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default(4)"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

func (m Mode) validate() error {
	if m != ModeDefault {
		return fmt.Errorf("%w: %s", ErrUnsupportedMode, m)
	}
	return nil
}
