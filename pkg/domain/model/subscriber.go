package model

// Subscriber receives restock alerts from the store.
type Subscriber interface {
	SubscriberID() int64
	IsPremium() bool
	Update(product Product)
}
