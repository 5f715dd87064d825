package world

import (
	"sort"
	"time"

	"github.com/sportsracer/repman/internal/entity"
)

// respawnTask is a deferred spawn of a collectible kind. Respawns sample a
// fresh free position.
type respawnTask struct {
	kind entity.Kind
	due  time.Time
}

// respawnQueue keeps tasks ordered by due time, oldest first.
type respawnQueue struct {
	tasks []respawnTask
}

func (q *respawnQueue) Len() int {
	return len(q.tasks)
}

func (q *respawnQueue) push(kind entity.Kind, due time.Time) {
	i := sort.Search(len(q.tasks), func(i int) bool {
		return q.tasks[i].due.After(due)
	})
	q.tasks = append(q.tasks, respawnTask{})
	copy(q.tasks[i+1:], q.tasks[i:])
	q.tasks[i] = respawnTask{kind: kind, due: due}
}

// popDue removes and returns the kinds of every task due at or before now.
func (q *respawnQueue) popDue(now time.Time) []entity.Kind {
	n := 0
	for n < len(q.tasks) && !q.tasks[n].due.After(now) {
		n++
	}
	if n == 0 {
		return nil
	}
	kinds := make([]entity.Kind, n)
	for i := 0; i < n; i++ {
		kinds[i] = q.tasks[i].kind
	}
	q.tasks = append(q.tasks[:0], q.tasks[n:]...)
	return kinds
}
