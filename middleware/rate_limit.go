package middleware

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis/v3"

	"credocarbon/utils"
)

// RateLimitConfig holds all rate limiter instances
type RateLimitConfig struct {
	LoginLimiter fiber.Handler
	CRUDLimiter  fiber.Handler
}

// NewRateLimitConfig creates the rate limiters. When a Redis address is
// configured, counters live in Redis so limits hold across replicas; otherwise
// the limiter falls back to in-process memory storage.
func NewRateLimitConfig(redisAddr, redisPassword string) *RateLimitConfig {
	var store fiber.Storage
	if redisAddr != "" {
		host, port := splitRedisAddr(redisAddr)
		store = redisstorage.New(redisstorage.Config{
			Host:     host,
			Port:     port,
			Password: redisPassword,
		})
	}

	// Strict limit on login to slow brute-force attempts against the
	// single admin credential.
	loginLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 5 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return utils.ClientIP(c)
		},
		Storage: store,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many login attempts. Please try again later.",
			})
		},
	})

	crudLimiter := limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return utils.ClientIP(c)
		},
		Storage: store,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	})

	return &RateLimitConfig{
		LoginLimiter: loginLimiter,
		CRUDLimiter:  crudLimiter,
	}
}

// splitRedisAddr breaks a host[:port] address apart, defaulting to the
// standard Redis port when none is given.
func splitRedisAddr(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 6379
	}
	return host, port
}
