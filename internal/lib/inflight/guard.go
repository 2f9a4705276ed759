// Package inflight ограничивает число одновременных изменяющих запросов:
// не больше одного на пару (экран, пользователь).
package inflight

import (
	"fmt"
	"sync"
)

type Guard struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func New() *Guard {
	return &Guard{busy: make(map[string]struct{})}
}

// Key собирает ключ слота
func Key(view string, userID int64) string {
	return fmt.Sprintf("%s:%d", view, userID)
}

// TryAcquire занимает слот. Если слот уже занят, ok == false.
// release нужно вызвать ровно один раз после завершения запроса.
func (g *Guard) TryAcquire(key string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, taken := g.busy[key]; taken {
		return func() {}, false
	}
	g.busy[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.busy, key)
			g.mu.Unlock()
		})
	}, true
}
