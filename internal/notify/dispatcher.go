package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const sendTimeout = 30 * time.Second

// Dispatcher queues messages onto a bounded channel drained by one worker.
// Enqueue never blocks: when the queue is full the message is dropped with a
// log line. Confirmation responses must not wait on mail servers.
type Dispatcher struct {
	sender Sender
	queue  chan Message
	log    *logrus.Logger

	once sync.Once
	done chan struct{}
	wg   sync.WaitGroup
}

func NewDispatcher(sender Sender, queueSize int, log *logrus.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	d := &Dispatcher{
		sender: sender,
		queue:  make(chan Message, queueSize),
		log:    log,
		done:   make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Enqueue hands a message to the background worker.
func (d *Dispatcher) Enqueue(msg Message) {
	select {
	case d.queue <- msg:
	default:
		d.log.WithField("to", msg.To).Warn("notification queue full, dropping message")
	}
}

// Close drains outstanding messages and stops the worker.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.done)
		d.wg.Wait()
	})
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case msg := <-d.queue:
			d.deliver(msg)
		case <-d.done:
			for {
				select {
				case msg := <-d.queue:
					d.deliver(msg)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := d.sender.Send(ctx, msg); err != nil {
		d.log.WithError(err).WithField("to", msg.To).Error("notification delivery failed")
	}
}
