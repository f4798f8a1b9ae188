package utils

import (
	"net"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestIsPublicIP(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		want bool
	}{
		{"public ipv4", "8.8.8.8", true},
		{"private 10/8", "10.1.2.3", false},
		{"private 192.168/16", "192.168.1.1", false},
		{"loopback", "127.0.0.1", false},
		{"unspecified", "0.0.0.0", false},
		{"ipv6 loopback", "::1", false},
		{"public ipv6", "2001:4860:4860::8888", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPublicIP(net.ParseIP(tt.ip)); got != tt.want {
				t.Errorf("IsPublicIP(%s) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}
}

func TestClientIPIgnoresHeadersWithoutProxyTrust(t *testing.T) {
	TrustProxyHeaders.Store(false)
	defer TrustProxyHeaders.Store(false)

	app := fiber.New()
	var got string
	app.Get("/", func(c *fiber.Ctx) error {
		got = ClientIP(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	if _, err := app.Test(req); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if got == "203.0.113.7" {
		t.Error("expected forwarded header to be ignored without proxy trust")
	}
}

func TestClientIPHonorsForwardedForWithProxyTrust(t *testing.T) {
	TrustProxyHeaders.Store(true)
	defer TrustProxyHeaders.Store(false)

	app := fiber.New()
	var got string
	app.Get("/", func(c *fiber.Ctx) error {
		got = ClientIP(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.9, 203.0.113.7")
	if _, err := app.Test(req); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if got != "203.0.113.7" {
		t.Errorf("expected first public forwarded address, got %s", got)
	}
}
