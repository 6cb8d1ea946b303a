// Package engine runs repeated stochastic trials of the chemoresistance
// model and aggregates them into analysis-ready tables.
//
// [RunTrials] integrates one regime's sample paths into trial-major row
// tables and extracts per-trial first hitting times of the progression
// threshold. [Simulate] runs the same parameter set twice, as an untreated
// control and as the dosed case, and returns both regimes.
package engine
