// Command pktdump renders payload files as inspection log lines.
//
//	pktdump capture.bin other.bin --encoding mixed --max 65536
//	cat body.raw | pktdump --dir toclient --encoding hex
//	pktdump < log.txt decode > payload.bin
package main

import (
	"os"

	"github.com/fatih/color"
)

var errorLabel = color.New(color.FgRed)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
