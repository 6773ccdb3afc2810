// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go          — Handler с DI (репозитории, publisher, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (logging, recovery)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (request/response)
//   - event_handler.go    — приём триггерных событий (/events)
//   - pipeline_handler.go — чтение pipelines, jobs, steps и отчётов
//   - trigger_handler.go  — CRUD cron-триггеров (/triggers)
//
// API предоставляет REST endpoints для приёма событий, наблюдения за
// pipelines и управления cron-триггерами.
package api
