// Package checkout simulates order submission: it snapshots the visitor's
// cart into an order, stores it as the last order and empties the cart.
// Nothing leaves the platform.
package checkout

import (
	"math/rand/v2"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPayMethod    = "online"
	DefaultDeliveryType = "delivery"
)

type Person struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type Schedule struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	City    string `json:"city"`
	Address string `json:"address"`
}

type OrderItem struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Img   string  `json:"img"`
	Qty   int     `json:"qty"`
}

type Order struct {
	ID           string      `json:"id"`
	CreatedAt    time.Time   `json:"createdAt"`
	PayMethod    string      `json:"payMethod"`
	DeliveryType string      `json:"deliveryType"`
	Recipient    Person      `json:"recipient"`
	Customer     Person      `json:"customer"`
	Schedule     Schedule    `json:"schedule"`
	Items        []OrderItem `json:"items"`
	Total        float64     `json:"total"`
}

// Form carries the checkout form fields. Field names follow the HTML form.
type Form struct {
	PayMethod      string `json:"pay"`
	DeliveryType   string `json:"delivery"`
	RecipientName  string `json:"recipient_name"`
	RecipientPhone string `json:"recipient_phone"`
	CustomerName   string `json:"customer_name"`
	CustomerPhone  string `json:"customer_phone"`
	Date           string `json:"delivery_date"`
	Time           string `json:"delivery_time"`
	City           string `json:"city"`
	Address        string `json:"address"`
}

func FormFromValues(v url.Values) Form {
	return Form{
		PayMethod:      v.Get("pay"),
		DeliveryType:   v.Get("delivery"),
		RecipientName:  v.Get("recipient_name"),
		RecipientPhone: v.Get("recipient_phone"),
		CustomerName:   v.Get("customer_name"),
		CustomerPhone:  v.Get("customer_phone"),
		Date:           v.Get("delivery_date"),
		Time:           v.Get("delivery_time"),
		City:           v.Get("city"),
		Address:        v.Get("address"),
	}
}

func (f Form) normalized() Form {
	t := strings.TrimSpace
	f = Form{
		PayMethod:      t(f.PayMethod),
		DeliveryType:   t(f.DeliveryType),
		RecipientName:  t(f.RecipientName),
		RecipientPhone: t(f.RecipientPhone),
		CustomerName:   t(f.CustomerName),
		CustomerPhone:  t(f.CustomerPhone),
		Date:           t(f.Date),
		Time:           t(f.Time),
		City:           t(f.City),
		Address:        t(f.Address),
	}
	if f.PayMethod == "" {
		f.PayMethod = DefaultPayMethod
	}
	if f.DeliveryType == "" {
		f.DeliveryType = DefaultDeliveryType
	}
	return f
}

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderID returns ids like "R7QK-LX0Z2A": three random characters and the
// tail of the millisecond clock, both base36. Good enough for display.
func NewOrderID(now time.Time) string {
	var b strings.Builder
	b.Grow(11)
	b.WriteByte('R')
	for range 3 {
		b.WriteByte(base36[rand.IntN(len(base36))])
	}
	b.WriteByte('-')

	ts := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	if len(ts) > 6 {
		ts = ts[len(ts)-6:]
	}
	b.WriteString(ts)
	return b.String()
}
