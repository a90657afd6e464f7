package httptransport

import "expvar"

var (
	metricRoomCreateTotal  = expvar.NewInt("room_create_total")
	metricRoomCreateErrors = expvar.NewInt("room_create_errors_total")
)
