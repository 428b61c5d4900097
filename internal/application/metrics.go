package application

import "expvar"

// authEvents counts credential events by audit action; served on /debug/vars.
var authEvents = expvar.NewMap("auth_events")

func recordAuthEvent(action string) {
	authEvents.Add(action, 1)
}
