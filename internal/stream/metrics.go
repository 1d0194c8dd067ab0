package stream

import "expvar"

var metricDropped = expvar.NewInt("stream_events_dropped_total")
