// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package transport exposes a sensordb.Engine over the REST surface
// defined for the embedded sensor store: one thin httprouter handler per
// route, each doing argument parsing, one Engine call, and status/body
// translation - nothing else.
package transport

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/comail/go-uuid/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/kruserr/sensordb"
)

// maxBodySize bounds the accepted size of POST bodies across the REST
// surface.
const maxBodySize = 16 * 1024

// sensorsKey is the reserved key segment under which the collection-wide
// routes (/api/v0/sensors/...) are exposed. httprouter does not allow a
// static path segment to sit alongside a named parameter at the same tree
// node, so "sensors" cannot be registered as a literal sibling of :key -
// every route below registers exactly one wildcard per path depth, the way
// the examples' :topic routes do, and the sensors-vs-key distinction is
// made by value inside the handler instead of in the route tree.
const sensorsKey = "sensors"

// NewHTTPTransport sets up an HTTP interface around an Engine.
func NewHTTPTransport(e *sensordb.Engine) *HTTPTransport {
	ht := &HTTPTransport{engine: e}

	router := httprouter.New()
	router.GET("/api", ht.handleIndex)
	router.GET("/api/v0", ht.handleIndex)

	router.GET("/api/v0/:key", ht.handleKey)
	router.POST("/api/v0/:key", ht.handlePost)

	router.GET("/api/v0/:key/:sub", ht.handleKeySub)
	router.POST("/api/v0/:key/:sub", ht.handlePostSub)

	router.GET("/api/v0/:key/:sub/:tail", ht.handleKeySubTail)

	ht.router = router
	return ht
}

// HTTPTransport implements an HTTP server around an Engine.
type HTTPTransport struct {
	engine *sensordb.Engine
	router *httprouter.Router
}

// ServeHTTP implements the http.Handler interface around an Engine.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.router.ServeHTTP(w, r)
}

// handleKey dispatches GET /api/v0/:key. When key is the reserved
// sensorsKey it is the collection index; otherwise it reports whether an
// individual sensor key is present.
func (ht *HTTPTransport) handleKey(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("key") == sensorsKey {
		ht.handleIndex(w, r, ps)
		return
	}
	ht.handleContains(w, r, ps)
}

// handleKeySub dispatches GET /api/v0/:key/:sub. Under the reserved
// sensorsKey, sub names a collection-wide route (latest, meta, aggregates).
// Under any other key, sub names either a per-key route of the same names
// or a numeric record index.
func (ht *HTTPTransport) handleKeySub(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key, sub := ps.ByName("key"), ps.ByName("sub")

	if key == sensorsKey {
		switch sub {
		case "latest":
			ht.handleAllLatest(w, r, ps)
		case "meta":
			ht.handleAllMeta(w, r, ps)
		case "aggregates":
			ht.handleAllAggregates(w, r, ps)
		default:
			JSONErrorResponse(w, sensordb.ErrNotFound)
		}
		return
	}

	switch sub {
	case "latest":
		ht.handleLatest(w, r, ps)
	case "meta":
		ht.handleGetMeta(w, r, ps)
	case "aggregates":
		ht.handleAggregates(w, r, ps)
	default:
		ht.handleGet(w, r, ps)
	}
}

// handlePostSub dispatches POST /api/v0/:key/:sub. The only defined route
// at this depth is the per-key meta writer.
func (ht *HTTPTransport) handlePostSub(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("sub") != "meta" {
		JSONErrorResponse(w, sensordb.ErrNotFound)
		return
	}
	ht.handlePostMeta(w, r, ps)
}

// handleKeySubTail dispatches GET /api/v0/:key/:sub/:tail. Under the
// reserved sensorsKey with sub "latest", tail is the collection-wide
// result limit. Under any other key with sub "latest", tail is the
// per-key result limit; otherwise sub and tail are a record range's start
// and end indices.
func (ht *HTTPTransport) handleKeySubTail(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key, sub := ps.ByName("key"), ps.ByName("sub")

	if key == sensorsKey && sub == "latest" {
		ht.handleAllLatestWithLimit(w, r, ps)
		return
	}
	if sub == "latest" {
		ht.handleLatestWithLimit(w, r, ps)
		return
	}

	ht.handleRange(w, r, ps)
}

// traceID stamps each POST request with an identifier, logged when the
// request is rejected, mirroring the teacher's per-request diagnostic
// logging.
func traceID() string {
	return uuid.New()
}

func (ht *HTTPTransport) handleIndex(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	JSONResponse(w, map[string]interface{}{
		"ok":       true,
		"versions": []string{"v0"},
	})
}

func (ht *HTTPTransport) handleContains(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key := ps.ByName("key")
	if !ht.engine.Contains(key) {
		JSONErrorResponse(w, sensordb.ErrNotFound)
		return
	}

	JSONResponse(w, map[string]interface{}{"ok": true, "key": key})
}

func (ht *HTTPTransport) handlePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := traceID()

	body, status := readBoundedBody(r)
	if status != nil {
		log.Printf("warn: [%s] rejected post: %s", id, status)
		JSONErrorResponse(w, status)
		return
	}

	ht.engine.Post(ps.ByName("key"), body)
	w.WriteHeader(http.StatusAccepted)
}

// handleGet serves the GET /api/v0/:key/:sub branch where sub is a numeric
// record index.
func (ht *HTTPTransport) handleGet(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	i, err := strconv.Atoi(ps.ByName("sub"))
	if err != nil {
		JSONErrorResponse(w, sensordb.ErrBadRequest)
		return
	}

	record := ht.engine.Get(ps.ByName("key"), i)
	if len(record) == 0 {
		JSONErrorResponse(w, sensordb.ErrNotFound)
		return
	}

	rawResponse(w, record)
}

// handleRange serves the GET /api/v0/:key/:sub/:tail branch where sub and
// tail are a record range's start and end indices.
func (ht *HTTPTransport) handleRange(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start, err1 := strconv.Atoi(ps.ByName("sub"))
	end, err2 := strconv.Atoi(ps.ByName("tail"))
	if err1 != nil || err2 != nil {
		JSONErrorResponse(w, sensordb.ErrBadRequest)
		return
	}

	records := ht.engine.GetRange(ps.ByName("key"), start, end)
	if len(records) == 0 {
		JSONErrorResponse(w, sensordb.ErrNotFound)
		return
	}

	JSONRecordsResponse(w, records)
}

func (ht *HTTPTransport) handleLatest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	record := ht.engine.GetLatest(ps.ByName("key"))
	if len(record) == 0 {
		JSONErrorResponse(w, sensordb.ErrNotFound)
		return
	}

	rawResponse(w, record)
}

func (ht *HTTPTransport) handleLatestWithLimit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	n, err := strconv.Atoi(ps.ByName("tail"))
	if err != nil {
		JSONErrorResponse(w, sensordb.ErrBadRequest)
		return
	}

	records := ht.engine.GetLatestWithLimit(ps.ByName("key"), n)
	if len(records) == 0 {
		JSONErrorResponse(w, sensordb.ErrNotFound)
		return
	}

	JSONRecordsResponse(w, records)
}

func (ht *HTTPTransport) handleGetMeta(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	blob := ht.engine.GetMeta(ps.ByName("key"))
	if len(blob) == 0 {
		JSONErrorResponse(w, sensordb.ErrNotFound)
		return
	}

	rawResponse(w, blob)
}

func (ht *HTTPTransport) handlePostMeta(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := traceID()

	body, status := readBoundedBody(r)
	if status != nil {
		log.Printf("warn: [%s] rejected post_meta: %s", id, status)
		JSONErrorResponse(w, status)
		return
	}

	if !json.Valid(body) {
		JSONErrorResponse(w, sensordb.ErrBadRequest)
		return
	}

	ht.engine.PostMeta(ps.ByName("key"), body)
	w.WriteHeader(http.StatusAccepted)
}

func (ht *HTTPTransport) handleAggregates(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	blob := ht.engine.GetAggregates(ps.ByName("key"))
	if len(blob) == 0 {
		JSONErrorResponse(w, sensordb.ErrNotFound)
		return
	}

	rawResponse(w, blob)
}

func (ht *HTTPTransport) handleAllLatest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	all := ht.engine.GetAllLatest()
	JSONBlobMapResponse(w, all)
}

func (ht *HTTPTransport) handleAllLatestWithLimit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	n, err := strconv.Atoi(ps.ByName("tail"))
	if err != nil {
		JSONErrorResponse(w, sensordb.ErrBadRequest)
		return
	}

	all := ht.engine.GetAllLatestWithLimit(n)
	out := make(map[string][]json.RawMessage, len(all))
	for k, records := range all {
		out[k] = toRawRecords(records)
	}
	JSONResponse(w, out)
}

func (ht *HTTPTransport) handleAllMeta(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	JSONBlobMapResponse(w, ht.engine.GetAllMeta())
}

func (ht *HTTPTransport) handleAllAggregates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	JSONBlobMapResponse(w, ht.engine.GetAllAggregates())
}

// readBoundedBody reads and validates r.Body against the fixed 16 KiB POST
// body limit, returning the sensordb.Error to report on failure, or a nil
// status on success.
func readBoundedBody(r *http.Request) ([]byte, sensordb.Error) {
	if r.ContentLength <= 0 {
		return nil, sensordb.ErrContentLengthRequired
	}
	if r.ContentLength > maxBodySize {
		return nil, sensordb.ErrPayloadTooLarge
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return nil, sensordb.ErrBadRequest
	}
	if len(body) > maxBodySize {
		return nil, sensordb.ErrPayloadTooLarge
	}

	return body, nil
}

func toRawRecords(records [][]byte) []json.RawMessage {
	out := make([]json.RawMessage, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}

// rawResponse writes b verbatim as an application/octet-stream body,
// matching spec's "raw record bytes" contract.
func rawResponse(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := w.Write(b); err != nil {
		log.Printf("error: failed to write HTTP response: %s", err)
	}
}

// JSONResponse writes payload as a JSON HTTP response.
func JSONResponse(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("error: failed to encode HTTP response: %s", err)
	}
}

// JSONRecordsResponse writes a slice of raw byte records as a JSON array,
// each record embedded verbatim rather than base64-escaped, matching
// spec's "JSON array of records" contract for already-JSON sensor payloads.
func JSONRecordsResponse(w http.ResponseWriter, records [][]byte) {
	JSONResponse(w, toRawRecords(records))
}

// JSONBlobMapResponse writes a key->blob map as a JSON object, omitting
// keys whose blob is empty, matching spec's "omit empty" contract.
func JSONBlobMapResponse(w http.ResponseWriter, blobs map[string][]byte) {
	out := make(map[string]json.RawMessage, len(blobs))
	for k, b := range blobs {
		if len(b) == 0 {
			continue
		}
		out[k] = b
	}
	JSONResponse(w, out)
}

// JSONErrorResponse transforms a sensordb.Error into a JSON HTTP response.
func JSONErrorResponse(w http.ResponseWriter, err sensordb.Error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(err.StatusCode())

	if encErr := json.NewEncoder(w).Encode(err); encErr != nil {
		log.Printf("error: failed to encode error response: %s", encErr)
	}
}
