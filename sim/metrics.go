// Tracks per-truck waiting, machine idle integrals and cycle times.
// These are the quantities dispatch policies optimize against; the kernel
// records them but never reads them for its own decisions.

package sim

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Metrics aggregates statistics over one simulation run. All accessors are
// read-only views; a fresh run resets them.
type Metrics struct {
	layout *Layout

	lastServiceStart []float64 // per truck, start of last fill/empty service
	serviceWaiting   []float64 // per truck, total time queued for service
	lastWaitStart    []float64 // per truck, start of last waiting period
	serviceAvailable []float64 // per truck, machine availability before last service
	roadWaiting      []float64 // per truck, total time stopped at lights
	truckWaiting     []float64 // per truck, total waiting of any kind
	dispatched       []int     // per truck, dispatches this run
	dispatchTime     []float64 // per truck, time of last dispatch

	lastFillEnd   []float64 // per shovel, last service completion
	shovelWaiting []float64 // per shovel, total idle time
	shovelIdleOre float64

	lastEmptyEnd      []float64 // per crusher location, last service completion
	lastCrusherChange []float64 // per crusher location, last change in active servers
	fillsFromCrusher  []int     // per crusher location, fills dispatched from it
	crusherIdleOre    float64

	truckIdle         float64
	successfulFills   int
	successfulEmpties int
	completeCycles    []float64
}

func newMetrics(layout *Layout) *Metrics {
	return &Metrics{
		layout:            layout,
		lastServiceStart:  make([]float64, layout.NumTrucks),
		serviceWaiting:    make([]float64, layout.NumTrucks),
		lastWaitStart:     make([]float64, layout.NumTrucks),
		serviceAvailable:  make([]float64, layout.NumTrucks),
		roadWaiting:       make([]float64, layout.NumTrucks),
		truckWaiting:      make([]float64, layout.NumTrucks),
		dispatched:        make([]int, layout.NumTrucks),
		dispatchTime:      make([]float64, layout.NumTrucks),
		lastFillEnd:       make([]float64, len(layout.Shovels)),
		shovelWaiting:     make([]float64, len(layout.Shovels)),
		lastEmptyEnd:      make([]float64, len(layout.Crushers)),
		lastCrusherChange: make([]float64, len(layout.Crushers)),
		fillsFromCrusher:  make([]int, len(layout.Crushers)),
	}
}

// reset clears all statistics for a run starting at time now. dispatchTime
// carries over last-dispatch times recorded before the run started (from a
// snapshot), so mid-cycle trucks report full cycle durations.
func (m *Metrics) reset(now float64, dispatchTime []float64) {
	for i := range m.lastServiceStart {
		m.lastServiceStart[i] = now
		m.serviceWaiting[i] = 0
		m.lastWaitStart[i] = now
		m.serviceAvailable[i] = now
		m.roadWaiting[i] = 0
		m.truckWaiting[i] = 0
		m.dispatched[i] = 0
	}
	if dispatchTime != nil {
		copy(m.dispatchTime, dispatchTime)
	} else {
		for i := range m.dispatchTime {
			m.dispatchTime[i] = now
		}
	}
	for i := range m.lastFillEnd {
		m.lastFillEnd[i] = now
		m.shovelWaiting[i] = 0
	}
	for i := range m.lastEmptyEnd {
		m.lastEmptyEnd[i] = now
		m.lastCrusherChange[i] = now
		m.fillsFromCrusher[i] = 0
	}
	m.shovelIdleOre = 0
	m.crusherIdleOre = 0
	m.truckIdle = 0
	m.successfulFills = 0
	m.successfulEmpties = 0
	m.completeCycles = m.completeCycles[:0]
}

// truckWaited charges a waiting period [lastWaitStart, now] to a truck.
func (m *Metrics) truckWaited(tid int, now float64) {
	wait := now - m.lastWaitStart[tid]
	m.truckIdle += wait * (m.layout.CrushingRate() / float64(m.layout.NumTrucks))
	m.truckWaiting[tid] += wait
}

// TotalWaitingTime returns the total time a truck spent waiting for
// service or stopped at lights.
func (m *Metrics) TotalWaitingTime(tid int) float64 {
	return m.serviceWaiting[tid] + m.roadWaiting[tid]
}

// ServiceWaitingTime returns the time a truck spent queued at shovels and
// crushers.
func (m *Metrics) ServiceWaitingTime(tid int) float64 {
	return m.serviceWaiting[tid]
}

// LastServiceStart returns the start time of a truck's last service.
func (m *Metrics) LastServiceStart(tid int) float64 {
	return m.lastServiceStart[tid]
}

// ServiceAvailableTime returns, for a truck's last service, the time the
// machine became available before serving it.
func (m *Metrics) ServiceAvailableTime(tid int) float64 {
	return m.serviceAvailable[tid]
}

// ShovelWaitingTime returns the total idle time of a shovel.
func (m *Metrics) ShovelWaitingTime(sid int) float64 {
	return m.shovelWaiting[sid]
}

// SuccessfulFills returns the number of completed shovel services for
// trucks dispatched during this run.
func (m *Metrics) SuccessfulFills() int { return m.successfulFills }

// SuccessfulFillsFrom returns SuccessfulFills restricted to trucks
// dispatched from the given crusher location.
func (m *Metrics) SuccessfulFillsFrom(cid int) int { return m.fillsFromCrusher[cid] }

// SuccessfulEmpties returns the number of completed unloads for trucks
// dispatched during this run.
func (m *Metrics) SuccessfulEmpties() int { return m.successfulEmpties }

// CompleteCycles returns the durations of all completed haul cycles.
func (m *Metrics) CompleteCycles() []float64 {
	out := make([]float64, len(m.completeCycles))
	copy(out, m.completeCycles)
	return out
}

// AverageCycleTime returns the mean completed cycle duration, or a large
// sentinel when no cycle completed (so minimizing policies avoid the case).
func (m *Metrics) AverageCycleTime() float64 {
	if len(m.completeCycles) == 0 {
		return 1e9
	}
	return stat.Mean(m.completeCycles, nil)
}

// CycleTimeStdDev returns the standard deviation of completed cycle
// durations, or zero with fewer than two cycles.
func (m *Metrics) CycleTimeStdDev() float64 {
	if len(m.completeCycles) < 2 {
		return 0
	}
	return stat.StdDev(m.completeCycles, nil)
}

// CrusherIdleOre returns the truckloads of capacity wasted by idle
// crushers up to endtime, extrapolating open idle periods.
func (m *Metrics) CrusherIdleOre(endtime float64, numEmptying []int) float64 {
	out := m.crusherIdleOre
	for i, c := range m.layout.Crushers {
		if numEmptying[i] < c.Servers {
			out += (endtime - m.lastCrusherChange[i]) * float64(c.Servers-numEmptying[i]) / c.EmptyTimeMean
		}
	}
	return out
}

// ShovelIdleOre returns the truckloads of capacity wasted by idle shovels
// up to endtime, extrapolating open idle periods.
func (m *Metrics) ShovelIdleOre(endtime float64, shovelInUse []bool) float64 {
	out := m.shovelIdleOre
	for i, s := range m.layout.Shovels {
		if !shovelInUse[i] {
			out += (endtime - m.lastFillEnd[i]) / s.FillTimeMean
		}
	}
	return out
}

// TruckIdleOre returns the truckloads wasted by waiting trucks up to
// endtime, charging the net crushing rate evenly across the fleet.
func (m *Metrics) TruckIdleOre(endtime float64, locs []TruckLocation) float64 {
	out := m.truckIdle
	rate := m.layout.CrushingRate() / float64(m.layout.NumTrucks)
	for i, loc := range locs {
		switch loc {
		case StoppedAtTLCS, WaitingAtShovel, StoppedAtTLSS, WaitingAtCrusher, Unused:
			out += (endtime - m.lastWaitStart[i]) * rate
		}
	}
	return out
}

// Print displays a run summary.
func (m *Metrics) Print(empties int, horizon float64) {
	fmt.Println("=== Shift Metrics ===")
	fmt.Printf("Empties completed    : %d\n", empties)
	fmt.Printf("Completed cycles     : %d\n", len(m.completeCycles))
	if len(m.completeCycles) > 0 {
		fmt.Printf("Average cycle time   : %.2f\n", m.AverageCycleTime())
		fmt.Printf("Cycle time stddev    : %.2f\n", m.CycleTimeStdDev())
	}
	var totalWait float64
	for i := range m.truckWaiting {
		totalWait += m.truckWaiting[i]
	}
	fmt.Printf("Total truck waiting  : %.2f\n", totalWait)
	fmt.Printf("Throughput (per hour): %.2f\n", float64(empties)/horizon*3600)
}
