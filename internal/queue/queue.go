// Package queue реализует неограниченную FIFO-очередь задач:
// много писателей (по одному на TCP-клиента), один читатель (воркер).
package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Freeeeeet/slot_booking/internal/model"
	"github.com/google/uuid"
)

// ErrTimeout возвращается Get, если за отведённое время задач не появилось
var ErrTimeout = errors.New("queue: no task within timeout")

// Item задача в очереди вместе с метаданными для логов
type Item struct {
	ID         uuid.UUID
	Task       model.Task
	Source     string // адрес клиента, поставившего задачу
	EnqueuedAt time.Time
}

// Queue неограниченная очередь. Get допускает только одного читателя.
type Queue struct {
	mu     sync.Mutex
	items  []Item
	notify chan struct{}
}

func New() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Put ставит задачу в конец очереди и никогда не блокируется
func (q *Queue) Put(task model.Task, source string) uuid.UUID {
	item := Item{
		ID:         uuid.New(),
		Task:       task,
		Source:     source,
		EnqueuedAt: time.Now(),
	}

	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}

	return item.ID
}

// Get забирает самую старую задачу. Ждёт не дольше timeout,
// после чего возвращает ErrTimeout; при отмене ctx возвращает ctx.Err().
func (q *Queue) Get(ctx context.Context, timeout time.Duration) (Item, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		if item, ok := q.pop(); ok {
			return item, nil
		}

		select {
		case <-q.notify:
		case <-timer.C:
			// задача могла прийти одновременно с таймаутом
			if item, ok := q.pop(); ok {
				return item, nil
			}
			return Item{}, ErrTimeout
		case <-ctx.Done():
			return Item{}, ctx.Err()
		}
	}
}

// Len количество задач, ожидающих обработки
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) pop() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Item{}, false
	}

	item := q.items[0]
	q.items[0] = Item{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return item, true
}
