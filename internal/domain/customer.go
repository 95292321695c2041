package domain

import (
	"strings"
	"time"
)

// CustomerType различает розничных клиентов и агентов (точки перепродажи).
type CustomerType string

const (
	// CustomerTypeRetail — обычный розничный клиент.
	CustomerTypeRetail CustomerType = "retail"
	// CustomerTypeAgency — агент; уровень агента задаёт AgencyLevel.
	CustomerTypeAgency CustomerType = "agency"
)

// Customer — клиент из внешнего справочника. Composer не изменяет эти данные,
// задолженности ведёт backend.
type Customer struct {
	ID      string
	Name    string
	Phone   string
	Address string
	Type    CustomerType
	// AgencyLevel заполняется только для type=agency.
	AgencyLevel int
	// DebtMinor — текущая денежная задолженность клиента в минимальных единицах.
	DebtMinor int64
	// EmptyDebt — количество не возвращённых пустых бутылей.
	EmptyDebt int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MatchesQuery проверяет соответствие клиента поисковой строке:
// подстрока имени без учёта регистра либо подстрока телефона.
func (c Customer) MatchesQuery(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(c.Phone, query)
}
