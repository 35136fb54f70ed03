package model

import (
	"fmt"
	"time"
)

// OrderStatus 订单状态
//
// 只有一次单向转换：pending → delivered
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusDelivered OrderStatus = "delivered"
)

// 订单中由服务端维护的字段
const (
	OrderFieldStatus        = "status"
	OrderFieldInvoiceDate   = "invoiceDate"
	OrderFieldInvoiceNumber = "invoiceNumber"
	OrderFieldEmail         = "email"
)

// InvoiceNumber 由创建时间（毫秒）加一位随机数字组成，不保证全局唯一
func InvoiceNumber(createdAt time.Time, digit int) string {
	return fmt.Sprintf("INV-%d%d", createdAt.UnixMilli(), digit%10)
}

// NewOrder 基于调用方字段构造新订单
// 调用方传入的 _id / status / invoiceDate / invoiceNumber 会被覆盖
func NewOrder(fields Document, createdAt time.Time, digit int) Document {
	order := fields.WithoutID()
	order[OrderFieldStatus] = string(OrderStatusPending)
	order[OrderFieldInvoiceDate] = createdAt.UTC()
	order[OrderFieldInvoiceNumber] = InvoiceNumber(createdAt, digit)
	return order
}
