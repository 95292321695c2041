package session

// Role определяет раздел приложения, доступный пользователю.
type Role string

const (
	// RoleAdmin — полный доступ: клиенты, товары, заказы.
	RoleAdmin Role = "admin"
	// RoleSales — продажи: клиенты, остатки, выручка.
	RoleSales Role = "sales"
	// RoleCustomer — клиентский кабинет: свои заказы и профиль.
	RoleCustomer Role = "customer"
)

// Valid проверяет, что роль относится к поддерживаемым значениям.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSales, RoleCustomer:
		return true
	default:
		return false
	}
}

// Session — явный контекст авторизации пользователя. Передаётся в конструкторы
// клиентов и composer вместо чтения глобального состояния; токен не
// проверяется локально, его валидирует внешний API.
type Session struct {
	Token  string
	UserID string
	Name   string
	Role   Role
}

// Authenticated сообщает, есть ли в сессии токен для внешнего API.
func (s Session) Authenticated() bool {
	return s.Token != ""
}
