package zerolog

import (
	"io"
	"os"
	"strconv"

	root "github.com/trickstertwo/pktlog"
)

// Env:
//
//	PKTLOG_MIN_LEVEL or PKTLOG_LEVEL: trace|debug|info|warn|error|fatal (fatal maps to error)
//	PKTLOG_CONSOLE=1             : enable ConsoleWriter (pretty output)
//	PKTLOG_CALLER=1              : include caller
//	PKTLOG_CALLER_SKIP=<int>     : frames to skip (default 5)
//	PKTLOG_CONSOLE_TIMEFORMAT=...: optional console time layout (default RFC3339Nano)
func init() {
	root.RegisterDefaultAdapterFactory(func(w io.Writer) root.Adapter {
		return Build(envConfig(w))
	})
}

func envConfig(w io.Writer) Config {
	lvl, err := root.ParseLevel(firstNonEmpty(os.Getenv("PKTLOG_MIN_LEVEL"), os.Getenv("PKTLOG_LEVEL")))
	if err != nil {
		lvl = root.LevelInfo
	}
	return Config{
		Writer:            w,
		MinLevel:          lvl,
		Console:           os.Getenv("PKTLOG_CONSOLE") == "1",
		ConsoleTimeFormat: os.Getenv("PKTLOG_CONSOLE_TIMEFORMAT"),
		Caller:            os.Getenv("PKTLOG_CALLER") == "1",
		CallerSkip:        parseInt(os.Getenv("PKTLOG_CALLER_SKIP"), 5),
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
