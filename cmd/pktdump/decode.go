package main

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trickstertwo/pktlog/render"
)

var payloadMarker = []byte(" payload=")

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode",
		Short: "Turn mixed encoded payloads back into raw bytes",
		Long: `decode reads lines from stdin and writes the raw bytes of each payload to
stdout. A line holding a payload= field is decoded from that field on; any
other line is decoded whole.

Examples:
  pktdump capture.bin | pktdump decode > capture.copy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runDecode(in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	var raw []byte
	line := 0
	for sc.Scan() {
		line++
		text := sc.Bytes()
		if i := bytes.Index(text, payloadMarker); i >= 0 {
			text = text[i+len(payloadMarker):]
		}
		var err error
		raw, err = render.DecodeMixed(raw[:0], text)
		if err != nil {
			return errors.WithMessagef(err, "line %d", line)
		}
		if _, err := out.Write(raw); err != nil {
			return errors.Wrap(err, "write output")
		}
	}
	return errors.Wrap(sc.Err(), "read input")
}
