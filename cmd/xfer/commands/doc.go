// Package commands defines the xfer CLI.
//
// Usage
//
//	xfer c <port> <path>   connect to <port> and send <path>
//	xfer s <port> <path>   listen on <port>, receive one file into <path>
//
// # Implementation
//
// The root command builds an xfer.Config from its flags and runs exactly one
// session per invocation. Errors are returned, never acted on; main turns
// them into an exit status with ExitCode.
package commands
