// Package xfer transfers one file between two local processes with an
// ephemeral key agreement, AES-128-CBC encryption and an HMAC tag that the
// receiver checks before any plaintext is written.
//
// A session runs over one transport connection:
//
//	initiator                         responder
//	  KEY_SHARE frame   ------------>
//	                   <------------    KEY_SHARE frame
//	  block count (4 bytes, BE) ---->
//	  ciphertext (count*16 bytes) -->
//	  tag (16 bytes) -------------->
//
// Both sides expand the X25519 agreement into a 64-byte shared secret and
// slice the encryption key, IV and MAC key out of it at fixed offsets.
package xfer
