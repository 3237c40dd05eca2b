// Package worker выполняет batch импорта.
//
// Worker получает id batch из очереди batches.pending и, как fallback,
// из polling PENDING batch в БД. Batch захватывается атомарно
// (PENDING → RUNNING), поэтому одно событие и polling не выполнят
// его дважды. Выполнение делегируется batch.Runner.
//
//	w := worker.New(worker.Config{
//	    Batches: batchRepo,
//	    Runner:  runner,
//	    Conn:    mqConn,
//	    Logger:  logger,
//	})
//	w.Start(ctx)
//	defer w.Stop()
package worker
