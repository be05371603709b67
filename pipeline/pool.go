package pipeline

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/trickstertwo/xclock"
	"golang.org/x/sync/errgroup"

	"github.com/trickstertwo/pktlog"
	"github.com/trickstertwo/pktlog/membuf"
	"github.com/trickstertwo/pktlog/render"
)

// Pool fans records out to a fixed set of workers that share one sink.
type Pool struct {
	cfg Config
	mu  sync.Mutex // one sink write at a time, one write per record
	st  stats
}

// New validates cfg and returns an idle Pool.
func New(cfg Config) (*Pool, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &Pool{cfg: cfg}, nil
}

// Stats returns a snapshot of the counters, cumulative across Runs.
func (p *Pool) Stats() Stats { return p.st.snapshot() }

// MaxCapacity returns the effective per-record buffer cap. Producers can
// stop holding payload bytes past it and report the rest in
// Record.Dropped.
func (p *Pool) MaxCapacity() int { return p.cfg.MaxCapacity }

// Run processes records from in until in is closed and drained, ctx is done
// or a sink write fails. A failed sink write is not retried; Run returns a
// *render.SinkError for it. Worker buffers are destroyed before Run returns.
func (p *Pool) Run(ctx context.Context, in <-chan Record) error {
	workers := make([]*worker, 0, p.cfg.Workers)
	for i := 0; i < p.cfg.Workers; i++ {
		w, err := p.newWorker(i)
		if err != nil {
			for _, w := range workers {
				w.close()
			}
			return errors.WithMessage(err, "pipeline: start workers")
		}
		workers = append(workers, w)
	}

	log := p.cfg.Logger
	start := xclock.Now()
	log.Debug().Int("workers", len(workers)).Str("encoding", p.cfg.Encoding.String()).Msg("pipeline started")

	g, ctx := errgroup.WithContext(ctx)
	for _, w := range workers {
		g.Go(func() error {
			defer w.close()
			return w.loop(ctx, in)
		})
	}
	err := g.Wait()

	st := p.st.snapshot()
	log.Debug().
		Uint64("records", st.Records).
		Uint64("truncated", st.Truncated).
		Dur("elapsed", xclock.Now().Sub(start)).
		Err(err).
		Msg("pipeline stopped")
	return err
}

func (p *Pool) newWorker(id int) (*worker, error) {
	buf, err := membuf.NewWithAllocator(p.cfg.InitialCapacity, p.cfg.Allocator)
	if err != nil {
		if errors.Is(err, membuf.ErrAllocation) {
			p.st.allocFailures.Add(1)
		}
		return nil, errors.WithMessagef(err, "worker %d", id)
	}
	hdr, err := membuf.New(headerCapacity)
	if err != nil {
		buf.Destroy()
		return nil, errors.WithMessagef(err, "worker %d header", id)
	}
	return &worker{
		p:   p,
		buf: buf,
		hdr: hdr,
		log: p.cfg.Logger.With(pktlog.FInt("worker", int64(id))),
	}, nil
}

// write hands one full line to the sink.
func (p *Pool) write(line []byte) error {
	p.mu.Lock()
	n, err := render.String(p.cfg.Sink, render.Raw(line))
	p.mu.Unlock()

	p.st.written.Add(uint64(n))
	if err != nil {
		p.st.sinkErrors.Add(1)
		return err
	}
	p.st.records.Add(1)
	return nil
}

type worker struct {
	p    *Pool
	buf  *membuf.Buffer // payload, reused across records
	hdr  *membuf.Buffer
	flow []byte // escaped flow name
	line []byte // staging for the rendered line
	log  *pktlog.Logger
}

func (w *worker) loop(ctx context.Context, in <-chan Record) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rec, ok := <-in:
			if !ok {
				return nil
			}
			if err := w.process(&rec); err != nil {
				return err
			}
		}
	}
}

func (w *worker) process(rec *Record) error {
	w.buf.Reset()
	for _, c := range rec.Chunks {
		w.reserve(len(c))
		w.buf.WriteRaw(c)
	}

	st := &w.p.st
	st.bytes.Add(uint64(w.buf.Len()))
	dropped := w.buf.Dropped() + max(rec.Dropped, 0)
	if dropped > 0 {
		st.truncated.Add(1)
		st.dropped.Add(uint64(dropped))
		w.log.Warn().
			Str("flow", rec.Flow).
			Uint64("tx", rec.TxID).
			Int("size", rec.Size()+max(rec.Dropped, 0)).
			Int("dropped", dropped).
			Int("cap", w.buf.Cap()).
			Msg("payload truncated")
	}
	w.log.Trace().
		Str("flow", rec.Flow).
		Uint64("tx", rec.TxID).
		Str("dir", rec.Direction.String()).
		Payload("payload", w.buf, w.p.cfg.Encoding).
		Msg("record")

	return w.emit(rec, dropped)
}

// reserve grows the payload buffer so that n more bytes fit, by at least
// GrowBy and never past MaxCapacity. When Expand fails the current buffer
// stays in place and the write that follows truncates.
func (w *worker) reserve(n int) {
	need := n - w.buf.Available()
	if need <= 0 {
		return
	}
	room := w.p.cfg.MaxCapacity - w.buf.Cap()
	if room <= 0 {
		return
	}
	grow := min(max(need, w.p.cfg.GrowBy), room)
	nb, err := w.buf.Expand(grow)
	if err != nil {
		w.p.st.allocFailures.Add(1)
		w.log.Warn().Err(err).Int("cap", w.buf.Cap()).Int("grow", grow).Msg("payload buffer expand failed")
		return
	}
	w.buf = nb
	w.p.st.expansions.Add(1)
}

func (w *worker) emit(rec *Record, dropped int) error {
	w.flow = appendFlow(w.flow[:0], rec.Flow)
	w.hdr.Reset()
	if err := w.fitHeader(len(w.flow) + headerFixed); err != nil {
		return err
	}
	w.hdr.Compose(
		membuf.Str("flow="), membuf.Bytes(w.flow),
		membuf.Str(" tx="), membuf.Uint(rec.TxID),
		membuf.Str(" dir="), membuf.Str(rec.Direction.String()),
	)
	if dropped > 0 {
		w.hdr.Compose(membuf.Str(" dropped="), membuf.Int(dropped))
	}
	w.hdr.WriteString(" payload=")

	line := append(w.line[:0], w.hdr.Bytes()...)
	line = render.Append(line, w.buf.Bytes(), w.p.cfg.Encoding)
	line = append(line, '\n')
	w.line = line
	return w.p.write(line)
}

// fitHeader grows the empty header buffer so that n bytes fit.
func (w *worker) fitHeader(n int) error {
	need := n - w.hdr.Available()
	if need <= 0 {
		return nil
	}
	nb, err := w.hdr.Expand(need)
	if err != nil {
		w.p.st.allocFailures.Add(1)
		return errors.WithMessage(err, "pipeline: grow header")
	}
	w.hdr = nb
	return nil
}

func (w *worker) close() {
	w.buf.Destroy()
	w.hdr.Destroy()
	w.flow = nil
	w.line = nil
}
