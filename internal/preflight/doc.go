// Package preflight provides readiness checks for the engine binaries, the
// working directories and the advisory LLM.
//
// The CLI "adconvert status" command renders the results as a table, and
// "adconvert convert" refuses to start when a required check fails. Checks
// that only degrade a feature (ffprobe, the LLM) are marked Optional.
package preflight
