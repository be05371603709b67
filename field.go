package pktlog

import (
	"time"

	"github.com/trickstertwo/pktlog/render"
)

// Kind identifies the concrete type stored in a Field.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindInt64
	KindUint64
	KindFloat64
	KindBool
	KindDuration
	KindTime
	KindError
	KindBytes
	KindAny
	KindPayload
)

// Field is a compact, reflection-free union for structured fields.
//
// A KindPayload field carries untrusted protocol bytes in Bytes together
// with the Encoding adapters must use to print them. Bytes usually aliases
// a worker's buffer and is only valid for the duration of the Log call.
type Field struct {
	K       string
	Kind    Kind
	Str     string
	Int64   int64
	Uint64  uint64
	Float64 float64
	Bool    bool
	Dur     time.Duration
	Time    time.Time
	Err     error
	Bytes   []byte
	Enc     render.Encoding
	Any     any
}

// RenderPayload returns the encoded payload of a KindPayload field.
func (f *Field) RenderPayload() string {
	return string(render.Append(make([]byte, 0, render.EncodedLen(f.Bytes, f.Enc)), f.Bytes, f.Enc))
}

// Entry is sent to Observers when an event is emitted.
type Entry struct {
	At      time.Time
	Level   Level
	Message string
	Fields  []Field
}

// Observer is notified for each emitted entry. Implementations MUST be
// concurrency-safe.
type Observer interface {
	OnLog(entry Entry)
}

// ObserverFunc adapter.
type ObserverFunc func(Entry)

func (f ObserverFunc) OnLog(e Entry) { f(e) }

func FStr(k, v string) Field               { return Field{K: k, Kind: KindString, Str: v} }
func FInt(k string, v int64) Field         { return Field{K: k, Kind: KindInt64, Int64: v} }
func FUint(k string, v uint64) Field       { return Field{K: k, Kind: KindUint64, Uint64: v} }
func FFloat(k string, v float64) Field     { return Field{K: k, Kind: KindFloat64, Float64: v} }
func FBool(k string, v bool) Field         { return Field{K: k, Kind: KindBool, Bool: v} }
func FDur(k string, v time.Duration) Field { return Field{K: k, Kind: KindDuration, Dur: v} }
func FTime(k string, v time.Time) Field    { return Field{K: k, Kind: KindTime, Time: v} }
func FErr(k string, err error) Field       { return Field{K: k, Kind: KindError, Err: err} }
func FBytes(k string, b []byte) Field      { return Field{K: k, Kind: KindBytes, Bytes: b} }
func FAny(k string, v any) Field           { return Field{K: k, Kind: KindAny, Any: v} }

// FPayload captures the current contents of src for rendering with enc.
func FPayload(k string, src render.Source, enc render.Encoding) Field {
	return Field{K: k, Kind: KindPayload, Bytes: src.Bytes(), Enc: enc}
}

// CloneField returns f with its byte slices copied, for fields that outlive
// the Log call (async queues, observers that retain entries).
func CloneField(f Field) Field {
	if (f.Kind == KindBytes || f.Kind == KindPayload) && f.Bytes != nil {
		f.Bytes = append([]byte(nil), f.Bytes...)
	}
	return f
}
