package olog

import (
	root "github.com/trickstertwo/pktlog"
	"github.com/trickstertwo/pktlog/membuf"
)

// Pre-encode bound fields for both formats to avoid per-log overhead.

func (a *Adapter) encodeBound(bound []root.Field, appendField func(*membuf.Buffer, *root.Field)) []byte {
	if len(bound) == 0 {
		return nil
	}
	b := a.lines.format(func(b *membuf.Buffer) {
		for i := range bound {
			appendField(b, &bound[i])
		}
	})
	cp := append([]byte(nil), b.Bytes()...)
	a.lines.put(b)
	return cp
}
