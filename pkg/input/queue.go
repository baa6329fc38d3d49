package input

// DefaultQueueSize is the number of pending commands a Queue buffers
const DefaultQueueSize = 256

// Queue hands commands from any goroutine (GLFW callbacks, file watcher,
// HTTP handlers) to the render loop, which drains it once per tick.
type Queue struct {
	commands chan Command
}

// NewQueue creates a queue buffering up to size commands
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{commands: make(chan Command, size)}
}

// Push enqueues a command without blocking. Returns false if the queue is
// full and the command was dropped.
func (q *Queue) Push(cmd Command) bool {
	select {
	case q.commands <- cmd:
		return true
	default:
		return false
	}
}

// Drain returns every command queued so far, in arrival order
func (q *Queue) Drain() []Command {
	var drained []Command
	for {
		select {
		case cmd := <-q.commands:
			drained = append(drained, cmd)
		default:
			return drained
		}
	}
}

// Len returns the number of pending commands
func (q *Queue) Len() int {
	return len(q.commands)
}
