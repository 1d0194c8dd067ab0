package tournament

import "expvar"

var (
	metricTournamentsStarted = expvar.NewInt("tournaments_started_total")
	metricRoundsStarted      = expvar.NewInt("tournament_rounds_started_total")
	metricRoundsEnded        = expvar.NewInt("tournament_rounds_ended_total")
	metricRoundsEndedEarly   = expvar.NewInt("tournament_rounds_ended_early_total")
	metricJoinsRejected      = expvar.NewInt("tournament_joins_rejected_total")
)
