// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package sensordb

import "github.com/kruserr/sensordb/internal/logging"

// Logger is the logger instance used by sensordb in case of error.
var Logger = logging.New("SENSORDB ")
