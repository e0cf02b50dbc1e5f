// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package sensordb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/kruserr/sensordb/hooks"
)

func tempEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	dir := t.TempDir()
	e, err := Open(dir, opts...)
	if err != nil {
		t.Fatalf("Open: %s", err)
	}
	return e
}

func TestEngineSingleRecordRoundTrip(t *testing.T) {
	e := tempEngine(t)

	e.Post("s", []byte(`{"k":"v"}`))

	if got := e.GetLatest("s"); !bytes.Equal(got, []byte(`{"k":"v"}`)) {
		t.Fatalf("GetLatest(s) = %q, want %q", got, `{"k":"v"}`)
	}
	if got := e.Get("s", 0); !bytes.Equal(got, []byte(`{"k":"v"}`)) {
		t.Fatalf("Get(s,0) = %q, want %q", got, `{"k":"v"}`)
	}
	if got := e.Get("s", 1); len(got) != 0 {
		t.Fatalf("Get(s,1) = %q, want empty", got)
	}
}

func TestEngineAggregateUpdate(t *testing.T) {
	e := tempEngine(t, WithAggregateFn("t", hooks.Temperature))

	e.Post("t", []byte(`{"temp":8.0}`))
	e.Post("t", []byte(`{"temp":4.0}`))

	var agg struct {
		TempSum      float64 `json:"temp_sum"`
		TempSumCount float64 `json:"temp_sum_count"`
		TempAvg      float64 `json:"temp_avg"`
	}
	if err := json.Unmarshal(e.GetAggregates("t"), &agg); err != nil {
		t.Fatalf("unmarshal aggregates: %s", err)
	}

	if agg.TempSum != 12 || agg.TempSumCount != 2 || agg.TempAvg != 6 {
		t.Fatalf("aggregates = %+v, want sum=12 count=2 avg=6", agg)
	}
}

func TestEngineSegmentRollover(t *testing.T) {
	dir := t.TempDir()
	e, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %s", err)
	}

	const n = 10001
	record := bytes.Repeat([]byte{0xAB}, 16)
	for i := 0; i < n; i++ {
		e.Post("r", record)
	}

	if got := e.GetLatestWithLimit("r", 1); len(got) != 1 || !bytes.Equal(got[0], record) {
		t.Fatalf("last record after rollover mismatch: %v", got)
	}
	if got := e.Get("r", n-1); !bytes.Equal(got, record) {
		t.Fatalf("Get(r, %d) mismatch after rollover", n-1)
	}
	if got := e.Get("r", 0); !bytes.Equal(got, record) {
		t.Fatalf("Get(r, 0) mismatch after rollover")
	}

	for _, name := range []string{"0", "10000"} {
		if _, err := os.Stat(filepath.Join(dir, "r", name)); err != nil {
			t.Fatalf("expected segment file %s: %s", name, err)
		}
	}
}

func TestEngineRestartPersistence(t *testing.T) {
	dir := t.TempDir()

	e, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %s", err)
	}

	records := [][]byte{[]byte("A"), []byte("B"), []byte("C")}
	for _, r := range records {
		e.Post("p", r)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen Open: %s", err)
	}

	got := reopened.GetLatestWithLimit("p", 10)
	if len(got) != len(records) {
		t.Fatalf("GetLatestWithLimit after reopen returned %d records, want %d", len(got), len(records))
	}
	for i, want := range records {
		if !bytes.Equal(got[i], want) {
			t.Fatalf("record %d after reopen = %q, want %q", i, got[i], want)
		}
	}
}

func TestEngineMetadataIndependence(t *testing.T) {
	e := tempEngine(t)

	e.PostMeta("m", []byte(`{"x":1}`))

	if !e.Contains("m") {
		t.Fatal("Contains(m) = false, want true after post_meta with no post")
	}
	if got := e.GetMeta("m"); !bytes.Equal(got, []byte(`{"x":1}`)) {
		t.Fatalf("GetMeta(m) = %q, want %q", got, `{"x":1}`)
	}
	if got := e.GetLatest("m"); len(got) != 0 {
		t.Fatalf("GetLatest(m) = %q, want empty", got)
	}
	if got := e.Get("m", 0); len(got) != 0 {
		t.Fatalf("Get(m,0) = %q, want empty", got)
	}
}

func TestEngineRangeClamp(t *testing.T) {
	e := tempEngine(t)

	for i := 0; i < 3; i++ {
		e.Post("q", []byte(fmt.Sprintf("v%d", i)))
	}

	all := e.GetRange("q", 0, 100)
	if len(all) != 3 {
		t.Fatalf("GetRange(q,0,100) returned %d records, want 3", len(all))
	}

	empty := e.GetRange("q", 5, 0)
	if len(empty) != 0 {
		t.Fatalf("GetRange(q,5,0) returned %d records, want 0", len(empty))
	}
}

func TestEngineContainsFalseForUnknownKey(t *testing.T) {
	e := tempEngine(t)

	if e.Contains("missing") {
		t.Fatal("Contains(missing) = true, want false")
	}
	if got := e.GetMeta("missing"); len(got) != 0 {
		t.Fatalf("GetMeta(missing) = %q, want empty", got)
	}
}

func TestEngineGetAllLatestWithLimitOmitsEmpty(t *testing.T) {
	e := tempEngine(t)

	e.Post("has-data", []byte("x"))
	e.PostMeta("meta-only", []byte("{}"))

	all := e.GetAllLatestWithLimit(10)
	if _, ok := all["has-data"]; !ok {
		t.Fatal("expected has-data in GetAllLatestWithLimit result")
	}
	if _, ok := all["meta-only"]; ok {
		t.Fatal("expected meta-only to be omitted from GetAllLatestWithLimit result")
	}
}
