// Package model defines domain types used by the service.
package model

// Product represents one catalogue record.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Offer is the partner service's stock and price data for one product at
// fetch time. It carries no identity beyond its containing product and is
// fully replaced on every fetch.
type Offer struct {
	ID           string `json:"id,omitempty"`
	ItemsInStock int64  `json:"items_in_stock"`
	Price        int64  `json:"price"`
}

// OfferResult is a single snapshot entry: the fetched offer, or an error
// marker when the most recent fetch for that product failed.
type OfferResult struct {
	Offer *Offer `json:"offer,omitempty"`
	Error string `json:"error,omitempty"`
}

// Snapshot maps product IDs to the outcome of their latest offer fetch.
type Snapshot map[string]OfferResult
