package domain

// DepositPerReturnableMinor — залог за одну единицу возвратной тары
// (50 000 донгов за бутыль). Политика компании, не настраивается.
const DepositPerReturnableMinor int64 = 50000

// CartLine — одна позиция корзины. Имя, цена и признак возвратной тары
// фиксируются в момент добавления товара.
type CartLine struct {
	ProductID   string
	ProductName string
	Qty         int32
	// UnitPriceMinor — цена за единицу на момент добавления.
	UnitPriceMinor int64
	// TotalMinor = Qty × UnitPriceMinor; пересчитывается при каждой мутации позиции.
	TotalMinor int64
	Returnable bool
}

// Cart — накапливаемое состояние нового заказа: выбранный клиент, позиции
// в порядке добавления и внесённая сумма оплаты.
// Инвариант: не более одной позиции на ProductID.
type Cart struct {
	Customer  *Customer
	Lines     []CartLine
	PaidMinor int64
}

// SelectCustomer выбирает единственного клиента заказа. Проверка клиента
// откладывается до отправки заказа.
func (c *Cart) SelectCustomer(customer Customer) {
	c.Customer = &customer
}

// ClearCustomer сбрасывает выбранного клиента.
func (c *Cart) ClearCustomer() {
	c.Customer = nil
}

// AddProduct добавляет товар в корзину. Если позиция с таким ProductID уже
// есть, увеличивает её количество на единицу вместо дублирования.
func (c *Cart) AddProduct(p Product) {
	if idx := c.lineIndex(p.ID); idx >= 0 {
		line := &c.Lines[idx]
		line.Qty++
		line.TotalMinor = int64(line.Qty) * line.UnitPriceMinor
		return
	}

	c.Lines = append(c.Lines, CartLine{
		ProductID:      p.ID,
		ProductName:    p.Name,
		Qty:            1,
		UnitPriceMinor: p.PriceMinor,
		TotalMinor:     p.PriceMinor,
		Returnable:     p.Returnable,
	})
}

// UpdateQuantity задаёт количество для позиции. Значение qty < 1 молча
// игнорируется: без округления вверх и без ошибки. Отсутствующая позиция —
// тоже no-op.
func (c *Cart) UpdateQuantity(productID string, qty int32) {
	if qty < 1 {
		return
	}
	idx := c.lineIndex(productID)
	if idx < 0 {
		return
	}
	line := &c.Lines[idx]
	line.Qty = qty
	line.TotalMinor = int64(qty) * line.UnitPriceMinor
}

// RemoveLine удаляет позицию по ProductID; отсутствующая позиция — no-op.
func (c *Cart) RemoveLine(productID string) {
	idx := c.lineIndex(productID)
	if idx < 0 {
		return
	}
	c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
}

// SetPaidAmount фиксирует внесённую клиентом сумму. Отрицательные значения
// прижимаются к нулю; верхняя граница на уровне данных не ограничена.
func (c *Cart) SetPaidAmount(minor int64) {
	if minor < 0 {
		minor = 0
	}
	c.PaidMinor = minor
}

// TotalAmountMinor — сумма TotalMinor всех позиций.
func (c *Cart) TotalAmountMinor() int64 {
	var sum int64
	for _, line := range c.Lines {
		sum += line.TotalMinor
	}
	return sum
}

// TotalReturnable — суммарное количество единиц возвратной тары в корзине.
func (c *Cart) TotalReturnable() int32 {
	var sum int32
	for _, line := range c.Lines {
		if line.Returnable {
			sum += line.Qty
		}
	}
	return sum
}

// DepositAmountMinor — залог за возвратную тару: количество × фиксированная ставка.
func (c *Cart) DepositAmountMinor() int64 {
	return int64(c.TotalReturnable()) * DepositPerReturnableMinor
}

// TotalPaymentMinor — итог к оплате: товары плюс залог за тару.
func (c *Cart) TotalPaymentMinor() int64 {
	return c.TotalAmountMinor() + c.DepositAmountMinor()
}

// RemainingMinor — остаток к доплате. Может быть отрицательным, если внесено
// больше итога: верхний предел ограничивает только форма ввода.
func (c *Cart) RemainingMinor() int64 {
	return c.TotalPaymentMinor() - c.PaidMinor
}

// IsValid — заказ готов к отправке: клиент выбран и есть хотя бы одна позиция.
func (c *Cart) IsValid() bool {
	return c.Customer != nil && len(c.Lines) > 0
}

// ValidateInvariants проверяет базовые инварианты корзины и возвращает список замечаний.
func (c *Cart) ValidateInvariants() []error {
	var errs []error

	if c.Customer == nil {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(c.Lines) == 0 {
		errs = append(errs, ErrCartEmpty)
	}
	if c.PaidMinor < 0 {
		errs = append(errs, ErrPaidAmountNegative)
	}

	seen := make(map[string]struct{}, len(c.Lines))
	for _, line := range c.Lines {
		if line.Qty <= 0 {
			errs = append(errs, ErrLineQtyInvalid)
		}
		if line.UnitPriceMinor < 0 {
			errs = append(errs, ErrLinePriceInvalid)
		}
		if line.TotalMinor != int64(line.Qty)*line.UnitPriceMinor {
			errs = append(errs, ErrLineTotalMismatch)
		}
		if _, dup := seen[line.ProductID]; dup {
			errs = append(errs, ErrLineDuplicate)
		}
		seen[line.ProductID] = struct{}{}
	}

	return errs
}

// BuildPayload собирает данные заказа для отправки. Итоги вычисляются в момент
// вызова, а не берутся из кеша.
func (c *Cart) BuildPayload() OrderPayload {
	items := make([]PayloadItem, 0, len(c.Lines))
	for _, line := range c.Lines {
		items = append(items, PayloadItem{
			ProductID:      line.ProductID,
			Qty:            line.Qty,
			UnitPriceMinor: line.UnitPriceMinor,
			TotalMinor:     line.TotalMinor,
		})
	}

	payload := OrderPayload{
		Items:             items,
		PaidMinor:         c.PaidMinor,
		TotalMinor:        c.TotalAmountMinor(),
		DepositMinor:      c.DepositAmountMinor(),
		TotalPaymentMinor: c.TotalPaymentMinor(),
	}
	if c.Customer != nil {
		payload.CustomerID = c.Customer.ID
	}
	return payload
}

// Reset очищает позиции и оплату, сохраняя выбранного клиента.
func (c *Cart) Reset() {
	c.Lines = nil
	c.PaidMinor = 0
}

func (c *Cart) lineIndex(productID string) int {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}
