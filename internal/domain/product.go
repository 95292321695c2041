package domain

import (
	"strings"
	"time"
)

// Product — позиция каталога из внешнего API. Для composer снимок каталога
// доступен только на чтение; авторитетный остаток хранит backend.
type Product struct {
	ID   string
	Name string
	// PriceMinor — цена за единицу в минимальных денежных единицах (донги).
	PriceMinor int64
	// Stock — остаток на складе по данным последнего снимка каталога.
	Stock int32
	// Returnable отмечает товар с возвратной тарой (бутыль под залог).
	Returnable bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MatchesQuery проверяет соответствие товара поисковой строке
// (подстрока имени без учёта регистра).
func (p Product) MatchesQuery(query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(query))
}
