// Package sim implements a discrete-event simulator for open-pit mine
// truck haulage. Trucks cycle between crusher locations and shovels over a
// road network with one-lane sections guarded by traffic lights; a
// Controller supplied by the caller decides routes and light timing.
//
// The kernel is deterministic for a fixed layout, controller and
// SimulationKey. Attaching a Recorder captures a compact Snapshot of a
// running shift, from which ReplaySource materializes any number of
// independent rollout simulations for evaluating hypothetical policies.
package sim
