package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidData 請求資料不合法 (400)
	ErrInvalidData = errors.New("invalid data")
	// ErrNotFound 資源不存在或不屬於呼叫者 (404)
	ErrNotFound = errors.New("not found")
	// ErrForbidden 非擁有者或非賣家 (403)
	ErrForbidden = errors.New("not authorized")
	// ErrInsufficientStock 庫存不足 (409)
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrPaymentVerification 簽章比對失敗 (400)
	ErrPaymentVerification = errors.New("Payment verification failed")
	// ErrServiceUnavailable 依賴的外部服務未設定
	ErrServiceUnavailable = errors.New("service unavailable")
)

// StockError 下單前檢查庫存不足
type StockError struct {
	ProductID string
	Name      string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("Only %d left for %s", e.Available, e.Name)
}

func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

func invalidData(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidData, fmt.Sprintf(format, args...))
}
