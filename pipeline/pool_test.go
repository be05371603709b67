package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/trickstertwo/pktlog"
	"github.com/trickstertwo/pktlog/adapter/olog"
	"github.com/trickstertwo/pktlog/membuf"
	"github.com/trickstertwo/pktlog/render"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func feed(recs ...Record) <-chan Record {
	ch := make(chan Record, len(recs))
	for _, r := range recs {
		ch <- r
	}
	close(ch)
	return ch
}

func run(t *testing.T, cfg Config, recs ...Record) (*Pool, string) {
	t.Helper()
	var out bytes.Buffer
	cfg.Sink = &out
	p, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, p.Run(context.Background(), feed(recs...)))
	return p, out.String()
}

func TestRun_MixedLine(t *testing.T) {
	p, out := run(t, Config{}, Record{
		Flow:      "f1",
		TxID:      1,
		Direction: ToServer,
		Chunks:    [][]byte{[]byte("onetwo\xEF"), []byte("three\xEDfive")},
	})

	assert.Equal(t, "flow=f1 tx=1 dir=toserver payload=onetwo|EF|three|ED|five\n", out)
	st := p.Stats()
	assert.Equal(t, uint64(1), st.Records)
	assert.Equal(t, uint64(17), st.Bytes)
	assert.Equal(t, uint64(len(out)), st.Written)
	assert.Zero(t, st.Truncated)
}

func TestRun_Encodings(t *testing.T) {
	rec := Record{Flow: "f", TxID: 9, Direction: ToClient, Chunks: [][]byte{[]byte("OK\r\n")}}

	_, out := run(t, Config{Encoding: render.EncodingHex}, rec)
	assert.Equal(t, "flow=f tx=9 dir=toclient payload=4F4B0D0A\n", out)

	_, out = run(t, Config{Encoding: render.EncodingMixed}, rec)
	assert.Equal(t, "flow=f tx=9 dir=toclient payload=OK|0D||0A|\n", out)
}

func TestRun_GrowsThenTruncatesAtMax(t *testing.T) {
	chunk := bytes.Repeat([]byte{'a'}, 30)
	p, out := run(t, Config{InitialCapacity: 16, GrowBy: 16, MaxCapacity: 64},
		Record{Flow: "f", TxID: 2, Direction: ToClient, Chunks: [][]byte{chunk, chunk, chunk}})

	// 16 -> 32 -> 61 -> 64, the last 27 bytes do not fit
	want := "flow=f tx=2 dir=toclient dropped=27 payload=" + strings.Repeat("a", 63) + "\n"
	assert.Equal(t, want, out)

	st := p.Stats()
	assert.Equal(t, uint64(3), st.Expansions)
	assert.Equal(t, uint64(1), st.Truncated)
	assert.Equal(t, uint64(27), st.Dropped)
	assert.Equal(t, uint64(63), st.Bytes)
	assert.Zero(t, st.AllocFailures)
}

func TestRun_LongFlowKeepsHeader(t *testing.T) {
	flow := strings.Repeat("f", 300)
	_, out := run(t, Config{},
		Record{Flow: flow, TxID: 1, Direction: ToServer, Chunks: [][]byte{[]byte("x")}},
		Record{Flow: strings.Repeat("\x01", 200), TxID: 2, Direction: ToClient, Chunks: [][]byte{[]byte("y")}},
	)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "flow="+flow+" tx=1 dir=toserver payload=x", lines[0])
	assert.Equal(t, "flow="+strings.Repeat("|01|", 200)+" tx=2 dir=toclient payload=y", lines[1])
}

func TestRun_FlowCannotForgeLines(t *testing.T) {
	_, out := run(t, Config{}, Record{
		Flow:      "a\nflow=forged tx=1 dir=toserver",
		TxID:      7,
		Direction: ToClient,
		Chunks:    [][]byte{[]byte("x")},
	})

	assert.Equal(t, "flow=a|0A|flow=forged|20|tx=1|20|dir=toserver tx=7 dir=toclient payload=x\n", out)
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Equal(t, 1, strings.Count(out, " payload="))
}

func TestRun_ProducerDroppedIsReported(t *testing.T) {
	p, out := run(t, Config{InitialCapacity: 8, MaxCapacity: 8},
		Record{Flow: "f", TxID: 3, Direction: ToServer, Chunks: [][]byte{[]byte("abcdefgh")}, Dropped: 100})

	assert.Equal(t, "flow=f tx=3 dir=toserver dropped=101 payload=abcdefg\n", out)
	st := p.Stats()
	assert.Equal(t, uint64(1), st.Truncated)
	assert.Equal(t, uint64(101), st.Dropped)
}

func TestRun_BufferReusedAcrossRecords(t *testing.T) {
	big := bytes.Repeat([]byte{'x'}, 100)
	_, out := run(t, Config{InitialCapacity: 8, GrowBy: 8, MaxCapacity: 256},
		Record{Flow: "a", TxID: 1, Direction: ToServer, Chunks: [][]byte{big}},
		Record{Flow: "b", TxID: 2, Direction: ToServer, Chunks: [][]byte{[]byte("hi")}},
		Record{Flow: "c", TxID: 3, Direction: ToServer},
	)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "flow=b tx=2 dir=toserver payload=hi", lines[1])
	assert.Equal(t, "flow=c tx=3 dir=toserver payload=", lines[2])
}

func TestRun_BudgetRefusesExpand(t *testing.T) {
	budget := membuf.NewBudget(40)
	p, out := run(t, Config{InitialCapacity: 16, GrowBy: 16, MaxCapacity: 1024, Allocator: budget},
		Record{Flow: "f", TxID: 1, Direction: ToServer, Chunks: [][]byte{bytes.Repeat([]byte{'z'}, 50)}})

	assert.True(t, strings.HasPrefix(out, "flow=f tx=1 dir=toserver dropped=35 payload=zzz"))
	st := p.Stats()
	assert.Equal(t, uint64(1), st.AllocFailures)
	assert.Equal(t, uint64(1), st.Truncated)
	assert.Zero(t, st.Expansions)
	assert.Zero(t, budget.InUse(), "worker buffers are destroyed when Run returns")
}

func TestRun_BudgetTooSmallForWorkers(t *testing.T) {
	budget := membuf.NewBudget(100)
	p, err := New(Config{Workers: 4, InitialCapacity: 64, Allocator: budget})
	require.NoError(t, err)

	err = p.Run(context.Background(), feed())
	require.Error(t, err)
	assert.ErrorIs(t, err, membuf.ErrAllocation)
	assert.Zero(t, budget.InUse())
	assert.Equal(t, uint64(1), p.Stats().AllocFailures)
}

func TestRun_ConcurrentWorkersWriteWholeLines(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	want := make(map[string][]byte)
	var recs []Record
	for i := 0; i < 300; i++ {
		p := make([]byte, rng.Intn(3000))
		rng.Read(p)
		flow := fmt.Sprintf("flow-%03d", i)
		want[flow] = p
		// split into uneven chunks
		var chunks [][]byte
		for rest := p; len(rest) > 0; {
			n := min(len(rest), 1+rng.Intn(700))
			chunks = append(chunks, rest[:n])
			rest = rest[n:]
		}
		recs = append(recs, Record{Flow: flow, TxID: uint64(i), Direction: ToServer, Chunks: chunks})
	}

	p, out := run(t, Config{Workers: 8, InitialCapacity: 128, GrowBy: 256}, recs...)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, len(recs))
	for _, line := range lines {
		flow, rest, ok := strings.Cut(strings.TrimPrefix(line, "flow="), " ")
		require.True(t, ok, line)
		_, enc, ok := strings.Cut(rest, " payload=")
		require.True(t, ok, line)

		got, err := render.DecodeMixed(nil, []byte(enc))
		require.NoError(t, err)
		assert.Equal(t, want[flow], got, flow)
		delete(want, flow)
	}
	assert.Empty(t, want)
	assert.Equal(t, uint64(len(recs)), p.Stats().Records)
	assert.Zero(t, p.Stats().Truncated)
}

// failAfter accepts n writes, then fails every write.
type failAfter struct {
	mu sync.Mutex
	n  int
}

var errDiskFull = errors.New("disk full")

func (w *failAfter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.n == 0 {
		return 0, errDiskFull
	}
	w.n--
	return len(p), nil
}

func TestRun_SinkErrorAborts(t *testing.T) {
	recs := make([]Record, 50)
	for i := range recs {
		recs[i] = Record{Flow: "f", TxID: uint64(i), Direction: ToServer, Chunks: [][]byte{[]byte("data")}}
	}
	p, err := New(Config{Workers: 2, Sink: &failAfter{n: 3}})
	require.NoError(t, err)

	err = p.Run(context.Background(), feed(recs...))
	require.Error(t, err)
	assert.ErrorIs(t, err, render.ErrSink)
	assert.ErrorIs(t, err, errDiskFull)

	st := p.Stats()
	assert.Equal(t, uint64(3), st.Records)
	assert.GreaterOrEqual(t, st.SinkErrors, uint64(1))
	assert.Less(t, st.Records+st.SinkErrors, uint64(len(recs)), "workers stop after the first failure")
}

func TestRun_ContextCancel(t *testing.T) {
	p, err := New(Config{Workers: 3, Sink: &bytes.Buffer{}})
	require.NoError(t, err)

	in := make(chan Record)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, in) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_LogsTruncationAndPayload(t *testing.T) {
	var logs bytes.Buffer
	ad := olog.New(&logs, olog.Options{Format: olog.FormatText, MinLevel: pktlog.LevelTrace})
	logger, err := pktlog.NewBuilder().WithAdapter(ad).WithMinLevel(pktlog.LevelTrace).Build()
	require.NoError(t, err)

	_, _ = run(t, Config{InitialCapacity: 8, MaxCapacity: 8, Logger: logger},
		Record{Flow: "f7", TxID: 4, Direction: ToServer, Chunks: [][]byte{[]byte("GET\x00/index")}})

	out := logs.String()
	assert.Contains(t, out, "msg=\"payload truncated\"")
	assert.Contains(t, out, " worker=0 flow=f7 tx=4 size=10 dropped=3 cap=8")
	assert.Contains(t, out, "payload=GET|00|/in")
	assert.Contains(t, out, "msg=\"pipeline stopped\"")
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{InitialCapacity: 128, MaxCapacity: 64})
	assert.ErrorIs(t, err, ErrConfig)

	_, err = New(Config{Workers: -1})
	assert.ErrorIs(t, err, ErrConfig)

	_, err = New(Config{Encoding: render.Encoding(9)})
	assert.ErrorIs(t, err, render.ErrEncoding)

	p, err := New(Config{InitialCapacity: 2 * DefaultMaxCapacity})
	require.NoError(t, err)
	assert.Equal(t, 2*DefaultMaxCapacity, p.MaxCapacity())
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"toserver": ToServer, "TC": ToClient, "response": ToClient, "": ToServer} {
		got, err := ParseDirection(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseDirection("sideways")
	assert.ErrorIs(t, err, ErrDirection)
	assert.Equal(t, "unknown", Direction(0).String())
}
