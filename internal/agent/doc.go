// Package agent выполняет отдельные jobs.
//
// # Обзор
//
// Agent — stateless компонент системы Conveyor, который выполняет
// jobs, созданные Orchestrator'ом при раскрытии матрицы. Agent
// отвечает за:
//
//   - Получение jobs из очереди RabbitMQ (event-driven)
//   - Периодическую проверку pending jobs в БД (polling fallback)
//   - Последовательное выполнение шагов job строго по позициям
//   - Fail-fast внутри job: после первого упавшего шага остальные
//     не запускаются и остаются в PENDING
//   - Отправку результата обратно в очередь jobs.completed
//
// Agents масштабируются горизонтально — несколько экземпляров
// потребляют из одной очереди jobs.ready. Один job целиком
// выполняется одним агентом.
//
// # Ключевые компоненты
//
// ## Agent
//
// Основная структура, управляющая жизненным циклом.
// Создаётся через New(cfg Config) и запускается методом Start(ctx).
//
//	a := agent.New(agent.Config{
//	    JobRepo:   jobRepo,
//	    StepRepo:  stepRepo,
//	    Publisher: publisher,
//	    Conn:      mqConn,
//	    Logger:    logger,
//	})
//
//	if err := a.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Stop()
//
// ## Executor
//
// Интерфейс для выполнения одного шага:
//
//	type Executor interface {
//	    Execute(ctx context.Context, step *domain.Step) (*ExecutionResult, error)
//	}
//
// Реализация по умолчанию — ShellExecutor: запускает команду шага
// через `sh -c` и ждёт естественного завершения, без таймаута.
// Exit code 0 — шаг прошёл, любой другой — упал.
//
// ## Registry
//
// Реестр executor'ов по классу шага (setup, lint, build, test, ...).
// Для классов без собственного executor'а используется fallback
// (ShellExecutor), так что регистрировать каждый класс не нужно.
//
// # Обработка job
//
//  1. Получение job (из очереди или polling)
//  2. Загрузка job из БД, проверка статуса PENDING
//  3. Перевод в RUNNING
//  4. Загрузка шагов job, отсортированных по позиции
//  5. Выполнение PENDING шагов по одному; SKIPPED шаги не трогаются
//  6. Все прошли (или выполнять нечего) → PASSED
//  7. Первый упавший шаг → FAILED, остальные остаются PENDING
//  8. Публикация job.completed
//
// # Ошибки
//
// Пакет различает два уровня ошибок:
//   - Инфраструктурные (error от Execute) — команду не удалось запустить
//   - Логические (ExecutionResult.ExitCode != 0) — команда завершилась с ошибкой
//
// Оба уровня роняют job, но инфраструктурные пишутся без exit code.
package agent
