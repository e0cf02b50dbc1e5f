// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package hooks provides example sensordb.AggregateFunc implementations.
package hooks

import (
	"encoding/json"

	"github.com/kruserr/sensordb"
)

// Temperature maintains a running temp_sum, temp_sum_count and temp_avg
// in the aggregate cell for every posted record that carries a numeric
// "temp" field. Records without a "temp" field are ignored.
func Temperature(key string, record []byte, cell *sensordb.AggregateCell) {
	var reading struct {
		Temp *float64 `json:"temp"`
	}
	if err := json.Unmarshal(record, &reading); err != nil || reading.Temp == nil {
		return
	}

	var agg struct {
		TempSum      float64 `json:"temp_sum"`
		TempSumCount float64 `json:"temp_sum_count"`
		TempAvg      float64 `json:"temp_avg"`
	}
	json.Unmarshal(cell.Bytes(), &agg)

	agg.TempSum += *reading.Temp
	agg.TempSumCount++
	agg.TempAvg = agg.TempSum / agg.TempSumCount

	out, err := json.Marshal(agg)
	if err != nil {
		return
	}
	cell.SetBytes(out)
}
