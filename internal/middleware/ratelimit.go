package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/lyricframe/api/pkg/response"
)

// RateLimiter enforces fixed-window limits per client IP, counted in
// Redis so the limits hold across processes.
type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// SubmitLimit bounds render submissions per hour.
func (r *RateLimiter) SubmitLimit(perHour int) fiber.Handler {
	return r.limit("submit", perHour, time.Hour)
}

// StatusLimit bounds status polls per minute.
func (r *RateLimiter) StatusLimit(perMin int) fiber.Handler {
	return r.limit("status", perMin, time.Minute)
}

// ColorsLimit bounds palette extractions per minute.
func (r *RateLimiter) ColorsLimit(perMin int) fiber.Handler {
	return r.limit("colors", perMin, time.Minute)
}

func (r *RateLimiter) limit(scope string, max int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if max <= 0 {
			return c.Next()
		}

		key := fmt.Sprintf("ratelimit:%s:%s", scope, c.IP())
		ctx := c.Context()

		count, err := r.redis.Incr(ctx, key).Result()
		if err != nil {
			// Redis being down should not take the API with it
			return c.Next()
		}
		if count == 1 {
			r.redis.Expire(ctx, key, window)
		}
		if count > int64(max) {
			return response.RateLimited(c)
		}

		return c.Next()
	}
}
