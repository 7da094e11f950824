// Package billing provides the domain model for turning meter readings into bills and
// settling those bills with payments.
//
// The bounded context covers:
//   - Tariff: rate per unit and fixed charge for a utility and customer type over an effective period
//   - Charge calculation: consumption x rate + fixed charge, rounded to cents
//   - Bill: the receivable raised for exactly one meter reading
//   - Payment: money applied against a bill, which can later be verified or refunded
//
// A reading is billed at most once. The invariant is held jointly by the
// MeterReading.IsProcessed flag and a unique bill per reading in storage.
package billing
