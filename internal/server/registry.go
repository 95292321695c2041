package server

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/waterdesk/internal/composer"
)

// ErrComposerNotFound возвращается, когда композер с таким ID не открыт
// или уже удалён из реестра.
var ErrComposerNotFound = errors.New("composer not found")

// composerRegistry — потокобезопасный реестр открытых композеров.
// Каждый открытый композер получает uuid и живёт до Cancel/закрытия.
type composerRegistry struct {
	mu    sync.RWMutex
	items map[string]*composer.Composer
}

func newComposerRegistry() *composerRegistry {
	return &composerRegistry{
		items: make(map[string]*composer.Composer),
	}
}

// Put регистрирует композер и возвращает его новый ID.
func (r *composerRegistry) Put(c *composer.Composer) string {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[id] = c
	return id
}

// Get возвращает композер или ErrComposerNotFound.
func (r *composerRegistry) Get(id string) (*composer.Composer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[id]
	if !ok {
		return nil, ErrComposerNotFound
	}
	return c, nil
}

// Delete убирает композер из реестра. Отсутствующий ID не считается ошибкой.
func (r *composerRegistry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
}

// Len возвращает число открытых композеров.
func (r *composerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
