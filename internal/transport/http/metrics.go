package httptransport

import "expvar"

var (
	metricScoreSubmitTotal  = expvar.NewInt("score_submit_total")
	metricScoreSubmitErrors = expvar.NewInt("score_submit_errors_total")

	metricSessionActionTotal  = expvar.NewInt("session_action_total")
	metricSessionActionErrors = expvar.NewInt("session_action_errors_total")

	metricTournamentSSEConnectionsTotal  = expvar.NewInt("tournament_sse_connections_total")
	metricTournamentSSEConnectionsActive = expvar.NewInt("tournament_sse_connections_active")
)
