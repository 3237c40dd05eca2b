// Package batch выполняет batch импорта по шагам.
//
// Один шаг — один вызов оркестратора для одного языка. Пока
// оркестратор возвращает INCOMPLETE, шаг повторяется для того же
// языка; после завершения счётчики текущего job обнуляются и batch
// переходит к следующему языку. BatchContext сохраняется после
// каждого шага, поэтому прогресс виден через API.
//
// После последнего языка строится итог (importer.Finish) и batch
// получает статус SUCCEEDED или FAILED.
package batch
