// Package engine holds the ordering, time-relative filtering, search and
// popularity ranking rules for events and venues.
//
// Every function works on a snapshot slice handed in by the caller and never
// modifies it. Functions that depend on the current time take it as an
// explicit reference instant, so results are reproducible for a fixed input.
package engine
