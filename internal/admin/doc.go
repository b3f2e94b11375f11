// Package admin owns the HTTP control surface for one save/load manager.
//
// Ownership boundary:
// - health, readiness and metrics endpoints
// - starting save/load sessions and reporting their results
// - advancing the host clock when the host is simulated
package admin
