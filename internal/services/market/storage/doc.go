// Package storage defines the marketplace persistence contract.
//
// Entities are returned fully decoded: JSON-text columns come back as
// slices/maps, 0/1 integer columns as booleans, timestamp text as time.Time.
// Monetary amounts stay exact-precision decimal strings end to end and are
// never parsed into binary floats.
package storage
