package session

import (
	"errors"
	"fmt"
	"io"

	"github.com/TheusHen/xfer/xfer/crypto"
)

var ErrSecretLength = errors.New("session: shared secret has wrong length")

// Role is the side of the transfer a session plays.
type Role uint8

const (
	RoleInitiator Role = iota + 1
	RoleResponder
)

func (r Role) String() string {
	switch r {
	case RoleInitiator:
		return "initiator"
	case RoleResponder:
		return "responder"
	default:
		return "unknown"
	}
}

// SharedSecret is the value both peers hold after the handshake.
type SharedSecret [crypto.SharedSecretSize]byte

// NewSharedSecret copies b, which must be exactly SharedSecretSize bytes.
func NewSharedSecret(b []byte) (SharedSecret, error) {
	var s SharedSecret
	if len(b) != len(s) {
		return s, fmt.Errorf("%w: %d", ErrSecretLength, len(b))
	}
	copy(s[:], b)
	return s, nil
}

// Keys derives the session key material.
func (s *SharedSecret) Keys() (crypto.KeyMaterial, error) {
	return crypto.DeriveKeyMaterial(s[:])
}

// Session is one completed handshake over one transport connection.
// It is used for a single transfer and then closed.
type Session struct {
	role   Role
	conn   io.ReadWriteCloser
	secret SharedSecret
	keys   crypto.KeyMaterial
}

// Establish runs the handshake for role over conn and derives the keys. On
// success the session owns conn; on failure the caller still does.
func Establish(role Role, conn io.ReadWriteCloser) (*Session, error) {
	var (
		secret SharedSecret
		err    error
	)
	switch role {
	case RoleInitiator:
		secret, err = HandshakeInitiator(conn)
	case RoleResponder:
		secret, err = HandshakeResponder(conn)
	default:
		return nil, fmt.Errorf("session: invalid role %d", role)
	}
	if err != nil {
		return nil, fmt.Errorf("handshake: %w", err)
	}

	keys, err := secret.Keys()
	if err != nil {
		crypto.Wipe(secret[:])
		return nil, err
	}
	return &Session{role: role, conn: conn, secret: secret, keys: keys}, nil
}

func (s *Session) Role() Role { return s.role }

// Conn is the transport the transfer runs over after the handshake.
func (s *Session) Conn() io.ReadWriter { return s.conn }

func (s *Session) Keys() crypto.KeyMaterial { return s.keys }

// Secret returns a copy of the raw shared secret. It exists for the opt-in
// debug dump only.
func (s *Session) Secret() SharedSecret { return s.secret }

// Close wipes the key material and closes the transport.
func (s *Session) Close() error {
	crypto.Wipe(s.secret[:])
	s.keys.Wipe()
	return s.conn.Close()
}
