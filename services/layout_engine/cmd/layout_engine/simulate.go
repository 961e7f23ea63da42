package main

import (
	"time"

	"github.com/yourflock/roost/layoutengine/internal/layout"
)

// simulate runs a one-off SimulationMode evaluation (§4.7). It deliberately
// bypasses the manager: a simulation never touches a context's cached
// previous layout or its serialisation lock.
func simulate(ctx *layout.Context, cs *layout.ConstraintSet, comps map[string]*layout.Component, forceVisible []string) (*layout.SimulationReport, *layout.Error) {
	return layout.Simulate(ctx, cs, comps, forceVisible, layout.UUIDSource{}, time.Now().UnixMilli())
}
