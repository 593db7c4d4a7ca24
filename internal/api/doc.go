// Package api hosts the HTTP server, middleware, and REST handlers for
// browsing the clue archive. Notable routes:
//   - GET /healthz / readyz for liveness and readiness probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /api/seasons and /api/seasons/{season} for archive payloads that
//     mirror the export artifacts.
//   - GET /* served from the exported dist directory.
package api
