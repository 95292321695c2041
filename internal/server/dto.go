package server

import (
	"time"

	"github.com/vladislavdragonenkov/waterdesk/internal/composer"
	"github.com/vladislavdragonenkov/waterdesk/internal/domain"
)

// customerResponse — клиент справочника в ответах API.
type customerResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Type        string `json:"type"`
	AgencyLevel int    `json:"agencyLevel,omitempty"`
	Debt        int64  `json:"debt"`
	EmptyDebt   int    `json:"emptyDebt"`
}

func toCustomerResponse(c domain.Customer) customerResponse {
	return customerResponse{
		ID:          c.ID,
		Name:        c.Name,
		Phone:       c.Phone,
		Address:     c.Address,
		Type:        string(c.Type),
		AgencyLevel: c.AgencyLevel,
		Debt:        c.DebtMinor,
		EmptyDebt:   c.EmptyDebt,
	}
}

func toCustomerResponses(customers []domain.Customer) []customerResponse {
	result := make([]customerResponse, 0, len(customers))
	for _, c := range customers {
		result = append(result, toCustomerResponse(c))
	}
	return result
}

// productResponse — товар каталога в ответах API.
type productResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Price          int64  `json:"price"`
	PriceFormatted string `json:"priceFormatted"`
	Stock          int32  `json:"stock"`
	Returnable     bool   `json:"isReturnable"`
}

func toProductResponses(products []domain.Product) []productResponse {
	result := make([]productResponse, 0, len(products))
	for _, p := range products {
		result = append(result, productResponse{
			ID:             p.ID,
			Name:           p.Name,
			Price:          p.PriceMinor,
			PriceFormatted: domain.FormatVND(p.PriceMinor),
			Stock:          p.Stock,
			Returnable:     p.Returnable,
		})
	}
	return result
}

// orderResponse — заказ в ответах API.
type orderResponse struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customerId"`
	CustomerName  string    `json:"customerName"`
	OrderDate     time.Time `json:"orderDate"`
	Status        string    `json:"status"`
	TotalAmount   int64     `json:"totalAmount"`
	PaidAmount    int64     `json:"paidAmount"`
	DebtRemaining int64     `json:"debtRemaining"`
	ReturnableOut int32     `json:"returnableOut"`
	ReturnableIn  int32     `json:"returnableIn"`
	CreatedBy     string    `json:"createdBy,omitempty"`
	Provisional   bool      `json:"provisional,omitempty"`
}

func toOrderResponse(o domain.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		CustomerName:  o.CustomerName,
		OrderDate:     o.OrderDate,
		Status:        string(o.Status),
		TotalAmount:   o.TotalMinor,
		PaidAmount:    o.PaidMinor,
		DebtRemaining: o.DebtRemainingMinor,
		ReturnableOut: o.ReturnableOut,
		ReturnableIn:  o.ReturnableIn,
		CreatedBy:     o.CreatedBy,
		Provisional:   o.Provisional,
	}
}

// lineResponse — позиция корзины в сводке композера.
type lineResponse struct {
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	Qty            int32  `json:"quantity"`
	UnitPrice      int64  `json:"unitPrice"`
	Total          int64  `json:"total"`
	TotalFormatted string `json:"totalFormatted"`
	Returnable     bool   `json:"isReturnable"`
}

// summaryResponse — сводка корзины с производными суммами. Суммы отдаются
// и числом (минимальные единицы), и отформатированной строкой для UI.
type summaryResponse struct {
	State                 string            `json:"state"`
	Customer              *customerResponse `json:"customer,omitempty"`
	Lines                 []lineResponse    `json:"lines"`
	TotalAmount           int64             `json:"totalAmount"`
	TotalAmountFormatted  string            `json:"totalAmountFormatted"`
	TotalReturnable       int32             `json:"totalReturnable"`
	DepositAmount         int64             `json:"depositAmount"`
	DepositFormatted      string            `json:"depositAmountFormatted"`
	TotalPayment          int64             `json:"totalPayment"`
	TotalPaymentFormatted string            `json:"totalPaymentFormatted"`
	PaidAmount            int64             `json:"paidAmount"`
	Remaining             int64             `json:"remaining"`
	RemainingFormatted    string            `json:"remainingFormatted"`
	Valid                 bool              `json:"valid"`
}

func toSummaryResponse(s composer.Summary) summaryResponse {
	lines := make([]lineResponse, 0, len(s.Lines))
	for _, line := range s.Lines {
		lines = append(lines, lineResponse{
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			Qty:            line.Qty,
			UnitPrice:      line.UnitPriceMinor,
			Total:          line.TotalMinor,
			TotalFormatted: domain.FormatVND(line.TotalMinor),
			Returnable:     line.Returnable,
		})
	}

	resp := summaryResponse{
		State:                 string(s.State),
		Lines:                 lines,
		TotalAmount:           s.TotalAmountMinor,
		TotalAmountFormatted:  domain.FormatVND(s.TotalAmountMinor),
		TotalReturnable:       s.TotalReturnable,
		DepositAmount:         s.DepositMinor,
		DepositFormatted:      domain.FormatVND(s.DepositMinor),
		TotalPayment:          s.TotalPaymentMinor,
		TotalPaymentFormatted: domain.FormatVND(s.TotalPaymentMinor),
		PaidAmount:            s.PaidMinor,
		Remaining:             s.RemainingMinor,
		RemainingFormatted:    domain.FormatVND(s.RemainingMinor),
		Valid:                 s.Valid,
	}
	if s.Customer != nil {
		customer := toCustomerResponse(*s.Customer)
		resp.Customer = &customer
	}
	return resp
}
