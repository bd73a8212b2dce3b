package usecase

// Published to the notification exchange after an order is created.
type OrderCreatedMsg struct {
	OrderID       string        `json:"orderId"`
	UserID        string        `json:"userId"`
	Email         string        `json:"email,omitempty"`
	Cents         int64         `json:"cents"`
	Currency      string        `json:"currency"`
	PaymentMethod string        `json:"paymentMethod"`
	Items         []ItemSummary `json:"items"`
}

type ItemSummary struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Cents     int64  `json:"cents"`
}

// Published after a payment reaches completed.
type PaymentSucceededMsg struct {
	OrderID   string `json:"orderId"`
	UserID    string `json:"userId"`
	Email     string `json:"email,omitempty"`
	Reference string `json:"reference"`
	Cents     int64  `json:"cents"`
	Currency  string `json:"currency"`
}

// Consumed from the payment status topic (provider webhook bridge).
type PaymentStatusMsg struct {
	Reference   string `json:"reference"`
	Status      string `json:"status"` // e.g. "COMPLETED", "FAILED"
	CompletedAt string `json:"completedAt,omitempty"`
}
