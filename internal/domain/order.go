package domain

import "time"

// Customer holds the contact details collected on the checkout form.
type Customer struct {
	Name    string
	Phone   string
	Address string
}

// OrderRecord is the archived outcome of a successful checkout submission.
type OrderRecord struct {
	Reference   string
	Customer    Customer
	Lines       []CartLine
	Totals      Totals
	PromoCode   string
	Summary     string
	SubmittedAt time.Time
}
