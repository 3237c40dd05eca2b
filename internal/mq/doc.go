// Package mq — инфраструктура RabbitMQ для ContentImport.
//
//   - connection.go — соединение с reconnect и heartbeat
//   - topology.go   — exchanges, queues, bindings
//   - publisher.go  — публикация batch.pending
//   - consumer.go   — потребление с ручным ack
//
// Топология:
//
//	content_import.batches (direct)
//	└── batches.pending [routing: pending] → import-worker, DLQ: dlq.batches
//	content_import.dlq (direct)
//	└── dlq.batches [routing: batches]
package mq
