// Package progress provides the event primitives, synchronous recorder, and
// emitter interfaces that the crawl engine uses to report milestones. Events
// fan out to pluggable sinks such as structured logs or Prometheus metrics.
package progress
