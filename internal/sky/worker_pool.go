package sky

import (
	"runtime"
	"sync"
)

// RowTask asks a worker to shade one image row.
type RowTask struct {
	Y int
}

// RowResult reports what a worker found on a row.
type RowResult struct {
	Y     int
	Stats Stats
}

// WorkerPool shades rows in parallel. Rows never overlap, so workers write
// straight into the shared image without locking.
type WorkerPool struct {
	taskQueue   chan RowTask
	resultQueue chan RowResult
	numWorkers  int
	shade       func(y int) Stats
	wg          sync.WaitGroup
}

// NewWorkerPool creates a pool sized for rows tasks. numWorkers <= 0 means
// one worker per CPU.
func NewWorkerPool(rows, numWorkers int, shade func(y int) Stats) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > rows && rows > 0 {
		numWorkers = rows
	}

	return &WorkerPool{
		taskQueue:   make(chan RowTask, rows),
		resultQueue: make(chan RowResult, rows),
		numWorkers:  numWorkers,
		shade:       shade,
	}
}

// Start begins all workers.
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.run()
	}
}

// Stop closes the task queue and waits for in-flight rows.
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// SubmitTask queues a row.
func (wp *WorkerPool) SubmitTask(task RowTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a finished row.
func (wp *WorkerPool) GetResult() (RowResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// NumWorkers returns the number of workers in the pool.
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

func (wp *WorkerPool) run() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		wp.resultQueue <- RowResult{Y: task.Y, Stats: wp.shade(task.Y)}
	}
}
