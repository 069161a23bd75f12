// Package sim provides the discrete-event simulation and Monte-Carlo
// replication engine behind the facility calculators.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - entity.go: Entity lifecycle (arrived → admitted → released) and per-class FIFO queues
//   - scheduler.go: the time-ordered event heap that drives a replication
//   - simulator.go: the event loop wiring demand, arbiter and statistics together
//
// # Architecture
//
// One replication is a fresh, single-threaded simulation graph: a
// RandomStream seeds the arrival processes (demand.go), a FacilityArbiter
// arbitrates admission to the shared facility (arbiter.go), and a
// StatisticsCollector accrues time-weighted queue histograms, hourly maxima
// and occupancy intervals before every event (stats.go). The
// ReplicationController (replicator.go) runs N independent replications on a
// worker pool and folds their summaries into a running online mean
// (summary.go).
//
// # Key Extension Points
//
// The extension points are small interfaces and function types:
//   - AdmissionPolicy: select the next waiting entity (fcfs, priority, nearest)
//   - ServiceTimeFunc: service duration for an admission (fixed, exponential, distance)
//
// Each calculator variant (passing zone, lift, car parks) is a thin
// SimulationConfig constructor in variants.go, not a separate engine.
package sim
