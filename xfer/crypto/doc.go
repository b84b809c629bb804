// Package crypto provides the cryptographic building blocks of an xfer session.
//
// Contents:
//   - Ephemeral X25519 key agreement (GenerateX25519, ECDH)
//   - HKDF-SHA256 expansion of the agreed value into a 64-byte shared secret
//   - Fixed-offset key material derivation (DeriveKeyMaterial)
//   - AES-128-CBC with PKCS#7 padding as streaming io.Reader/io.WriteCloser
//   - Best-effort wiping of secret buffers (Wipe)
package crypto
