// Package normalize converts classified tables into race records.
//
// Every row is parsed on its own: a row that fails validation is dropped (results, payouts)
// or degraded to zero odds (odds tables) without affecting the rest of the table. All
// functions are pure, so normalizing the same table twice yields the same records.
package normalize
