package paymentprovider

// Типы событий Stripe, которые обрабатывает маркетплейс.
const (
	EventCheckoutCompleted    = "checkout.session.completed"
	EventSubscriptionDeleted  = "customer.subscription.deleted"
	EventSubscriptionUpdated  = "customer.subscription.updated"
	EventInvoicePaymentFailed = "invoice.payment_failed"
)

// Event — проверенное событие провайдера, сведённое к полям,
// по которым можно найти пользователя и понять новый статус.
type Event struct {
	ID                 string
	Type               string
	ClientReferenceID  string // id пользователя, переданный при создании checkout
	CustomerID         string
	Email              string
	SubscriptionStatus string // только для customer.subscription.*
}

// CheckoutRequest — данные для создания hosted checkout.
type CheckoutRequest struct {
	UserID string
	Email  string
}
