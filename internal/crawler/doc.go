// Package crawler implements the resumable crawl pipeline: the season
// planner, the caching fetcher, the clue extractor, and the engine that
// drives one incremental step per invocation.
package crawler
