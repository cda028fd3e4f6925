package task

import (
	"io"

	"ninjastorms/kernel/kfmt"
)

// The ready queue is a circular buffer of task references with a fixed
// capacity of MaxTasks. One slot is always left unused so a full buffer can
// be told apart from an empty one; insertion into a full buffer is silently
// dropped, which cannot happen while the running task stays out of the
// queue. The running task is never in the buffer.
var (
	ringBuffer  [MaxTasks]*Task
	bufferStart int
	bufferEnd   int
)

// ringInsert appends a task to the ready queue.
func ringInsert(t *Task) {
	newEnd := (bufferEnd + 1) % MaxTasks
	if newEnd == bufferStart {
		return
	}

	ringBuffer[bufferEnd] = t
	bufferEnd = newEnd
}

// ringRemove pops the longest waiting task. An empty queue yields slot 0,
// the idle sentinel.
func ringRemove() *Task {
	if bufferStart == bufferEnd {
		return &tasks[0]
	}

	t := ringBuffer[bufferStart]
	bufferStart = (bufferStart + 1) % MaxTasks
	return t
}

func ringEmpty() bool {
	return bufferStart == bufferEnd
}

// rebuildRing refills the queue by scanning the task table in slot order,
// which drops the references a kill left behind. The running task stays out
// of the queue.
func rebuildRing() {
	pos := 0
	bufferStart = 0
	for i := range tasks {
		if tasks[i].Valid && &tasks[i] != current {
			ringBuffer[pos] = &tasks[i]
			pos++
		}
	}
	bufferEnd = pos
}

// dumpRing writes the queue state to w.
func dumpRing(w io.Writer) {
	kfmt.Fprintf(w, "ready queue (start %i, end %i):", bufferStart, bufferEnd)
	for i := bufferStart; i != bufferEnd; i = (i + 1) % MaxTasks {
		kfmt.Fprintf(w, " %i", ringBuffer[i].PID)
	}
	kfmt.Fprintf(w, "\n")
}
