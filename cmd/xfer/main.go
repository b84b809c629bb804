package main

import (
	"errors"
	"log"
	"os"

	"github.com/TheusHen/xfer/cmd/xfer/commands"
	"github.com/TheusHen/xfer/xfer"
)

func main() {
	err := commands.Execute()
	if err != nil {
		log.SetPrefix("xfer: ")
		if errors.Is(err, xfer.ErrAuthenticationFailed) {
			log.Printf("SECURITY ERROR: %v, file rejected", err)
		} else {
			log.Printf("error: %v", err)
		}
	}
	os.Exit(commands.ExitCode(err))
}
