// Package redis opens go-redis clients with pooling, startup retries,
// health checks and shutdown hooks.
//
// Configuration is read from the environment through [Config]:
//
//	var cfg redis.Config // REDIS_URL, REDIS_POOL_SIZE, ...
//	client, err := redis.Open(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//
//	checks := health.Checks{"redis": redis.Healthcheck(client)}
//	hooks := []func(context.Context) error{redis.Shutdown(client)}
//
// Only redis:// and rediss:// (TLS) URLs are accepted.
package redis
