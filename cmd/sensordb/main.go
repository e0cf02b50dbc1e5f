// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/comail/colog"

	"github.com/kruserr/sensordb"
	"github.com/kruserr/sensordb/hooks"
	"github.com/kruserr/sensordb/mmav"
	"github.com/kruserr/sensordb/transport"
)

var (
	debug       = flag.Bool("debug", false, "Start on debug mode")
	listen      = flag.String("listen", ":3030", "Listen address")
	dataDir     = flag.String("dir", ".db", "Data directory")
	logLevel    = flag.String("loglevel", "info", "Logging level")
	segmentSize = flag.Int("segment_size", mmav.DefaultSegmentSize, "Segment file size in bytes")
	dataStart   = flag.Int("data_start", mmav.DefaultDataStart, "Segment data region start offset in bytes")
)

func main() {
	flag.Parse()
	colog.Register()

	ll, err := colog.ParseLevel(*logLevel)
	fatalOn(err)
	colog.SetMinLevel(ll)

	if *debug {
		colog.SetFlags(log.LstdFlags | log.Lshortfile)
		colog.SetMinLevel(colog.LTrace)
	}

	engine, err := sensordb.Open(*dataDir,
		sensordb.WithSegmentSize(*segmentSize),
		sensordb.WithDataStart(*dataStart),
		sensordb.WithAggregateFn("temperature", hooks.Temperature),
	)
	fatalOn(err)

	http.Handle("/", transport.NewHTTPTransport(engine))
	log.Printf("info: listening on %q", *listen)
	log.Printf("info: data dir on %q", *dataDir)
	log.Fatalf("alert: %s\n", http.ListenAndServe(*listen, nil))
}

func fatalOn(err error) {
	if err != nil {
		log.Fatalf("alert: %s\n", err)
	}
}
