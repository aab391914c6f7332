package observability

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler exposes the Prometheus scrape endpoint via Fiber. When connected is set it
// is sampled into the store connectivity gauge on every scrape.
func MetricsHandler(connected func() bool) fiber.Handler {
	RegisterMetrics()
	scrape := adaptor.HTTPHandler(promhttp.Handler())

	return func(c *fiber.Ctx) error {
		if connected != nil {
			if connected() {
				StoreConnected().Set(1)
			} else {
				StoreConnected().Set(0)
			}
		}
		return scrape(c)
	}
}
