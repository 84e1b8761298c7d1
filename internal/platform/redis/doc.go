// Package redis implements cache.KV on a redigo connection pool.
package redis
