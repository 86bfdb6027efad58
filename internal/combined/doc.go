// Package combined holds benchmarks that run the containers together the
// way a consumer loop uses them: a queue drained under a stop flag and a
// stats ticker, records staged in a byte buffer, and the blocking queue
// against a channel and a sharded lock-free ring under several producers.
//
// The package has no non-test code.
package combined
