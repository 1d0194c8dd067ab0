package ws

import "expvar"

var (
	metricConnections      = expvar.NewInt("ws_connections_total")
	metricCommandsRejected = expvar.NewInt("ws_commands_rejected_total")
	metricDropped          = expvar.NewInt("ws_messages_dropped_total")
)
