package notify

// StatusFilled is the order status the backend reports for a completed fill.
const StatusFilled = "FILLED"

// Order is a user's order as listed by the backend.
type Order struct {
	ID          int64  `json:"id"`
	Status      string `json:"status"`
	Side        string `json:"side,omitempty"`
	OrderType   string `json:"order_type,omitempty"`
	CompanyName string `json:"company_name"`
	Quantity    int64  `json:"quantity"`
}

// Filled reports whether the order has been filled.
func (o Order) Filled() bool {
	return o.Status == StatusFilled
}

// IsBuy reports whether the order buys. Older backends put the side in
// order_type and spell it in Korean.
func (o Order) IsBuy() bool {
	side := o.Side
	if side == "" {
		side = o.OrderType
	}
	return side == "BUY" || side == "매수"
}

// SideText returns 매수 or 매도.
func (o Order) SideText() string {
	if o.IsBuy() {
		return "매수"
	}
	return "매도"
}

// Kind is the notification category shown to the user.
type Kind string

const (
	KindBuy  Kind = "buy"
	KindSell Kind = "sell"
)

// Notification tells the user an order was filled.
type Notification struct {
	ID      string `json:"id"`
	OrderID int64  `json:"order_id"`
	Message string `json:"message"`
	// Time is the in-game date label when the fill was noticed.
	Time   string `json:"time"`
	IsRead bool   `json:"is_read"`
	Type   Kind   `json:"type"`
}
