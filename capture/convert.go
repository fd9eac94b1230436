package capture

import (
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/softlens/blurcam-go/common"
)

// conversion is one in-flight frame conversion running on the converter's
// worker pool. done closes when the result is available.
type conversion struct {
	frame *common.Frame
	err   error
	done  chan struct{}
}

// wait blocks until the conversion finishes and returns its result.
func (c *conversion) wait() (*common.Frame, error) {
	<-c.done
	return c.frame, c.err
}

// converter runs frame conversions on a worker pool so a capture loop can
// read the next raw frame while the previous one is still being converted.
type converter struct {
	pool   worker.DynamicWorkerPool
	taskID int
}

func newConverter(workers int) *converter {
	return &converter{
		pool: worker.NewDynamicWorkerPool(workers, 64, 1*time.Second),
	}
}

// submit hands one conversion to the pool and returns immediately. The caller
// owns the inputs captured by do until the returned conversion completes.
func (c *converter) submit(do func() (*common.Frame, error)) *conversion {
	conv := &conversion{done: make(chan struct{})}
	c.taskID++
	c.pool.SubmitTask(worker.Task{
		ID: c.taskID,
		Do: func() (any, error) {
			conv.frame, conv.err = do()
			close(conv.done)
			return nil, conv.err
		},
	})
	return conv
}

// drain blocks until the pool's workers have gone idle and exited.
func (c *converter) drain() {
	c.pool.Wait()
}
