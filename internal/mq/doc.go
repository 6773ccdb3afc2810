// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - pipeline.triggered — событие создало pipeline, он ожидает обработки
//   - job.ready          — job готов к выполнению на агенте
//   - job.completed      — job завершён (PASSED или FAILED)
//   - pipeline.finished  — итог pipeline подведён, отчёт готов
//
// Exchanges:
//   - conveyor.pipelines — события жизненного цикла pipelines
//   - conveyor.jobs      — события jobs
//   - conveyor.dlq       — dead letter queue
package mq
