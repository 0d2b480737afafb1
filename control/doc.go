// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, hot reload, runtime metrics and debug introspection for
// hioload-probe.
//
// Provides concurrent-safe state handling primitives including:
//   - Config loading from defaults, JSON file, environment and arguments
//   - A typed ConfigStore with synchronous reload listeners
//   - MetricsRegistry holding the latest published reactor counters
//   - DebugProbes for named state hooks
//   - ResourceSampler for process and host usage
//   - NewLogger for the console logger used by both binaries
package control
