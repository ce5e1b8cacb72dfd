// Package messaging is a small broker-agnostic publish/consume layer.
//
// NATS and Kafka back production deployments; the in-process Memory driver
// serves single-replica setups and tests. Consume blocks until its context
// is canceled, so callers usually run it in a goroutine.
package messaging
