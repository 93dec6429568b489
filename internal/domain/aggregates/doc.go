// Package aggregates defines the write boundaries of the estimate domain.
//
// Each contract names a set of rows that must change together: a baseline's
// groups/catalog/items, an offer's items/alerts, an alert and the offer item
// its resolution may relink. Persistence details stay in data/aggregates.
package aggregates
