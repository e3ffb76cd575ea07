// Package health serves liveness and readiness probes.
//
//	r.Get("/health/live", health.Live())
//	r.Get("/health/ready", health.Ready(health.Checks{
//	    "storage": kvCheck,
//	    "redis":   redis.Healthcheck(client),
//	}, health.WithTimeout(3*time.Second)))
//
// Probes answer plain text unless the client asks for JSON with
// Accept: application/json or ?format=json.
package health
