package ws

import "expvar"

var (
	metricConnectionsActive = expvar.NewInt("ws_connections_active")
	metricConnectionsTotal  = expvar.NewInt("ws_connections_total")
	metricMessagesTotal     = expvar.NewInt("ws_messages_total")
	metricErrorAcksTotal    = expvar.NewInt("ws_error_acks_total")
	metricBroadcastsTotal   = expvar.NewInt("ws_broadcasts_total")
	metricSlowClientsClosed = expvar.NewInt("ws_slow_clients_closed_total")
)
