// Package builtin wires the bundled strategies into a registry.
package builtin

import (
	"equitycurve/strategies"
	"equitycurve/strategies/buyhold"
	"equitycurve/strategies/donchian"
	"equitycurve/strategies/smacross"
)

// NewRegistry returns a registry holding every bundled strategy.
func NewRegistry() *strategies.Registry {
	r := strategies.NewRegistry()
	r.Register(smacross.Name, smacross.Factory)
	r.Register(donchian.Name, donchian.Factory)
	r.Register(buyhold.Name, buyhold.Factory)
	r.Register(buyhold.HoldName, buyhold.HoldFactory)
	return r
}
