package domain

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency — единственная валюта системы; суммы хранятся в минимальных единицах.
const Currency = "VND"

var vndPrinter = message.NewPrinter(language.Vietnamese)

// FormatVND форматирует сумму как цену в донгах с группировкой разрядов
// по правилам vi-VN: 2250000 -> "2.250.000 ₫".
func FormatVND(minor int64) string {
	return vndPrinter.Sprintf("%d ₫", minor)
}
