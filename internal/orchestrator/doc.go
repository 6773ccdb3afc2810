// Package orchestrator управляет выполнением pipelines.
//
// Orchestrator отвечает за:
//   - Получение новых pipelines из очереди RabbitMQ
//   - Валидацию дескриптора и проверку run gate
//   - Раскрытие матрицы: создание jobs и строк шагов
//   - Отслеживание завершения jobs
//   - Подведение итога pipeline (PASSED/FAILED) с учётом
//     allow-failure и fast-finish
//
// Orchestrator — это "мозг" системы, который координирует выполнение.
package orchestrator
