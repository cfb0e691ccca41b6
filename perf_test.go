package arenaJSON

import (
	"testing"

	"github.com/valyala/fastjson"
)

// A mid-size stable document for fair comparisons against fastjson: enough
// nesting and string content to exercise the scanner, small enough to keep
// per-op noise down.
const benchJSON = `{
	"id": "9f6bd2bc-1c8f-44c1-9ab8-09b0c0d7e1a4",
	"index": 42,
	"active": true,
	"balance": "$2,258.24",
	"latitude": -5.922381,
	"longitude": -49.143968,
	"tags": ["alpha", "beta", "gamma", "delta", "epsilon", "zeta"],
	"friends": [
		{"id": 0, "name": "Carey Short", "scores": [1, 2.5, 3e2]},
		{"id": 1, "name": "Blanca Curtis", "scores": [4, 5.5, 6e-1]},
		{"id": 2, "name": "Kirkland Oneil", "scores": [7, 8.5, 9e0]}
	],
	"greeting": "Hello, you have 7 unread messages.",
	"nested": {"a": {"b": {"c": {"d": {"e": "deep"}}}}}
}`

func BenchmarkParse(b *testing.B) {
	data := []byte(benchJSON)
	buf := make([]byte, len(data))
	doc := New[uint8]()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(buf, data)
		if err := doc.Parse(buf, ParseDefault); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseNonDestructive(b *testing.B) {
	data := []byte(benchJSON)
	doc := New[uint8]()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := doc.Parse(data, NonDestructive); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseFastjson(b *testing.B) {
	data := []byte(benchJSON)
	var p fastjson.Parser
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.ParseBytes(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGet(b *testing.B) {
	doc := New[uint8]()
	if err := doc.Parse([]byte(benchJSON), NonDestructive); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if doc.Root().Dig("friends", "2", "scores", "1").AsNumber() != 8.5 {
			b.Fatal("wrong dig result")
		}
	}
}

func BenchmarkGetFastjson(b *testing.B) {
	var p fastjson.Parser
	v, err := p.Parse(benchJSON)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if v.GetFloat64("friends", "2", "scores", "1") != 8.5 {
			b.Fatal("wrong get result")
		}
	}
}

func BenchmarkPrintCompact(b *testing.B) {
	doc := New[uint8]()
	if err := doc.Parse([]byte(benchJSON), NonDestructive); err != nil {
		b.Fatal(err)
	}
	var sink UnitBuffer[uint8]
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sink.Units = sink.Units[:0]
		doc.Print(&sink, NoWhitespace)
	}
}
