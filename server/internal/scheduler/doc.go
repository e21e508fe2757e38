// Package scheduler drives the periodic refresh of every reading kind.
//
// Each refresh fetches from the kind's primary Source under a timeout, falls
// back to its synthesized Source on any error, stores the result in the
// snapshot and broadcasts it to connected clients. Readings are also run
// through the insight Evaluator; generated insights follow the same path.
//
// Two modes are supported:
//
//	random    one loop sleeps a jittered min..max interval, then refreshes a
//	          kind picked by weight
//	per_kind  one timer per kind at its configured interval
//
// Weights and intervals hot-reload through Reconfigure. The mode is fixed at
// construction.
package scheduler
