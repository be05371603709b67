// Package pipeline turns inspected transaction payloads into log lines.
//
// A Pool runs a fixed number of workers. Each worker owns one membuf.Buffer
// for the payload and one for the line header, reuses both across records
// and grows the payload buffer on demand up to a hard cap. Every record
// becomes exactly one line on the shared sink:
//
//	flow=<flow> tx=<id> dir=<direction> payload=<rendered bytes>
//
// Records that hit the cap carry dropped=<n> before the payload. The flow
// name is written in mixed encoding with spaces escaped as well, so it is
// always a single token and the first " payload=" on a line starts the
// payload.
package pipeline

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/trickstertwo/pktlog/render"
)

// Direction of a payload relative to the flow's initiator.
type Direction uint8

const (
	ToServer Direction = iota + 1
	ToClient
)

var ErrDirection = errors.New("pipeline: unknown direction")

func (d Direction) String() string {
	switch d {
	case ToServer:
		return "toserver"
	case ToClient:
		return "toclient"
	default:
		return "unknown"
	}
}

// ParseDirection accepts toserver|ts|request and toclient|tc|response.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "toserver", "ts", "request", "":
		return ToServer, nil
	case "toclient", "tc", "response":
		return ToClient, nil
	}
	return 0, errors.Wrapf(ErrDirection, "%q", s)
}

// Record is one transaction payload, possibly delivered in several chunks.
// Chunks are only read while the record is processed.
type Record struct {
	Flow      string
	TxID      uint64
	Direction Direction
	Chunks    [][]byte

	// Dropped counts payload bytes the producer already discarded. They
	// are reported with the bytes the worker drops.
	Dropped int
}

// Size returns the payload length across all chunks.
func (r *Record) Size() int {
	n := 0
	for _, c := range r.Chunks {
		n += len(c)
	}
	return n
}

// appendFlow appends flow as a header value: mixed encoding, with space
// escaped too.
func appendFlow(dst []byte, flow string) []byte {
	for i := 0; i < len(flow); i++ {
		c := flow[i]
		if c == ' ' || !render.IsPrintable(c) {
			dst = render.AppendEscape(dst, c)
			continue
		}
		dst = append(dst, c)
	}
	return dst
}
