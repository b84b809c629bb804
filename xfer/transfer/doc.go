// Package transfer moves a ciphertext stream between peers with a trailing
// authentication tag.
//
// Wire layout produced by Send and consumed by Receive:
//
//	N bytes: ciphertext (N is a multiple of BlockSize, announced out of band)
//	16 bytes: HMAC-SHA256 over the ciphertext, truncated
//
// Receive never hands bytes to the caller as trusted until the tag has been
// checked; callers must not decrypt the staging copy unless Receive returned
// nil.
//
// The package also provides optional LZ4 framing of the plaintext, applied
// before encryption.
package transfer
