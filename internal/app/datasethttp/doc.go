// Package datasethttp реализует Data Set API — подключаемый HTTP-слой
// CRUD-доступа к разнородным data set'ам (временные ряды, изображения,
// JSON-документы, бинарные файлы) поверх внедряемого хранилища. Эндпоинты
// под настраиваемым префиксом (по умолчанию /api/data-sets):
//   - GET    {prefix}                  — список/фильтрация метаданных.
//   - GET    {prefix}/{id}/meta        — метаданные записи.
//   - GET    {prefix}/{id}             — полная запись с payload'ом.
//   - GET    {prefix}/{id}/relations   — связанные записи.
//   - GET    {prefix}/{id}/image       — выдача изображения (условная аутентификация).
//   - GET    {prefix}/{id}/binary      — выдача бинарного файла (условная аутентификация).
//   - POST   {prefix}                  — загрузка (multipart: file + meta).
//   - POST   {prefix}/{id}             — патч метаданных.
//   - DELETE {prefix}/{id}             — удаление записи и её файла.
package datasethttp
