// Package engine содержит решающий слой матрицы.
//
// Включает:
//   - descriptor.go — загрузка дескриптора из YAML
//   - validate.go   — валидация дескриптора и события (configuration errors)
//   - gate.go       — run gate: запускать ли pipeline для события
//   - matrix.go     — раскрытие матрицы каналов в jobs
//   - selector.go   — отбор шагов по предикатам с сохранением порядка
//
// Всё в пакете — чистые функции над дескриптором и событием:
// никаких побочных эффектов, никакого знания о БД или очередях.
package engine
