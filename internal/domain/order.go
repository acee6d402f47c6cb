package domain

import "time"

type OrderStatus string

const (
	OrderInitiate OrderStatus = "INITIATE"
	OrderReserved OrderStatus = "RESERVED"
	OrderCapture  OrderStatus = "CAPTURE"
	OrderSale     OrderStatus = "SALE"
	OrderCancel   OrderStatus = "CANCEL"
	OrderRefund   OrderStatus = "REFUND"
	OrderVoid     OrderStatus = "VOID"
)

// BlocksUnregister reports whether an order in this status keeps its owner registered.
func (s OrderStatus) BlocksUnregister() bool {
	switch s {
	case OrderSale, OrderCapture, OrderReserved:
		return true
	default:
		return false
	}
}

type Order struct {
	ID         uint        `json:"order_id"`
	EventID    uint        `json:"event_id"`
	UserID     uint        `json:"user_id"`
	Status     OrderStatus `json:"status"`
	ExpireDate *time.Time  `json:"expire_date"`
	CreatedAt  time.Time   `json:"created_at"`
}
