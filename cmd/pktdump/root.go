package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/trickstertwo/pktlog"
	zladapter "github.com/trickstertwo/pktlog/adapter/zerolog"
	"github.com/trickstertwo/pktlog/pipeline"
	"github.com/trickstertwo/pktlog/render"
)

type dumpOptions struct {
	encoding string
	dir      string
	capacity int
	grow     int
	max      int
	chunk    int
	workers  int
	logLevel string
	console  bool
}

func newRootCmd() *cobra.Command {
	opts := &dumpOptions{}
	cmd := &cobra.Command{
		Use:   "pktdump [file...]",
		Short: "Render payloads as inspection log lines",
		Long: `pktdump reads each input as one transaction payload and writes one line per
input to stdout:

  flow=<name> tx=<n> dir=<direction> payload=<encoded bytes>

With no files, stdin is read. Inputs are consumed in --chunk sized pieces into a
buffer that starts at --capacity bytes and grows by at least --grow bytes up to
--max. Bytes beyond --max are read and discarded, never held, and reported
as dropped=<n>.

Examples:
  # Mixed encoding, printable bytes as-is and the rest as |XX|
  pktdump request.bin response.bin

  # Hex, four workers
  pktdump --encoding hex --workers 4 *.bin`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.encoding, "encoding", "e", "mixed", "payload encoding: mixed, string or hex")
	f.StringVarP(&opts.dir, "dir", "d", "toserver", "direction recorded for every input: toserver or toclient")
	f.IntVar(&opts.capacity, "capacity", pipeline.DefaultInitialCapacity, "initial payload buffer size in bytes")
	f.IntVar(&opts.grow, "grow", pipeline.DefaultGrowBy, "minimum growth step in bytes")
	f.IntVar(&opts.max, "max", pipeline.DefaultMaxCapacity, "payload buffer cap in bytes")
	f.IntVar(&opts.chunk, "chunk", 4096, "read size in bytes")
	f.IntVarP(&opts.workers, "workers", "w", 1, "number of workers")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "diagnostics level on stderr")
	cmd.PersistentFlags().BoolVar(&opts.console, "console", false, "human readable diagnostics")

	cmd.AddCommand(newDecodeCmd())
	return cmd
}

func newLogger(stderr io.Writer, opts *dumpOptions) (*pktlog.Logger, error) {
	lvl, err := pktlog.ParseLevel(opts.logLevel)
	if err != nil {
		return nil, err
	}
	return pktlog.NewBuilder().
		WithAdapter(zladapter.Build(zladapter.Config{Writer: stderr, MinLevel: lvl, Console: opts.console})).
		WithMinLevel(lvl).
		Build()
}

func runDump(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, files []string, opts *dumpOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.chunk <= 0 {
		return errors.Errorf("--chunk must be positive, got %d", opts.chunk)
	}
	enc, err := render.ParseEncoding(opts.encoding)
	if err != nil {
		return err
	}
	dir, err := pipeline.ParseDirection(opts.dir)
	if err != nil {
		return err
	}
	log, err := newLogger(stderr, opts)
	if err != nil {
		return err
	}

	pool, err := pipeline.New(pipeline.Config{
		Workers:         opts.workers,
		InitialCapacity: opts.capacity,
		GrowBy:          opts.grow,
		MaxCapacity:     opts.max,
		Encoding:        enc,
		Sink:            stdout,
		Logger:          log,
	})
	if err != nil {
		return err
	}

	rd := reader{chunk: opts.chunk, limit: pool.MaxCapacity(), dir: dir}
	records := make(chan pipeline.Record)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(records)
		if len(files) == 0 {
			return rd.send(ctx, records, "stdin", 0, stdin)
		}
		for i, name := range files {
			if err := rd.sendFile(ctx, records, name, uint64(i)); err != nil {
				return err
			}
			log.Debug().Str("file", name).Msg("input read")
		}
		return nil
	})
	g.Go(func() error { return pool.Run(ctx, records) })
	err = g.Wait()

	st := pool.Stats()
	log.Info().
		Uint64("records", st.Records).
		Uint64("bytes", st.Bytes).
		Uint64("truncated", st.Truncated).
		Uint64("dropped", st.Dropped).
		Uint64("expansions", st.Expansions).
		Msg("done")
	return err
}

// reader turns inputs into records. At most limit payload bytes of one
// input are held; the rest is read in a reused scratch chunk and counted.
type reader struct {
	chunk int
	limit int
	dir   pipeline.Direction
}

func (rd *reader) sendFile(ctx context.Context, out chan<- pipeline.Record, name string, tx uint64) error {
	f, err := os.Open(name)
	if err != nil {
		return errors.Wrap(err, "open input")
	}
	defer f.Close()
	return rd.send(ctx, out, filepath.Base(name), tx, f)
}

// send reads r to the end in chunk sized pieces and queues it as one record.
func (rd *reader) send(ctx context.Context, out chan<- pipeline.Record, flow string, tx uint64, r io.Reader) error {
	rec := pipeline.Record{Flow: flow, TxID: tx, Direction: rd.dir}
	var scratch []byte
	held := 0
	for {
		var p []byte
		if held < rd.limit {
			p = make([]byte, rd.chunk)
		} else {
			if scratch == nil {
				scratch = make([]byte, rd.chunk)
			}
			p = scratch
		}
		n, err := io.ReadFull(r, p)
		keep := min(n, rd.limit-held)
		if keep > 0 {
			rec.Chunks = append(rec.Chunks, p[:keep])
			held += keep
		}
		rec.Dropped += n - keep
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "read %s", flow)
		}
	}
	select {
	case out <- rec:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
