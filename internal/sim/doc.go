// Package sim replays scripted feed sessions against the real engine.
//
// A [Script] is a TOML file listing feed items and timed user or player events (visibility
// changes, taps, progress samples, quality switches). [Run] drives a viewport tracker, playback
// controller, view reporter, engagement store and quality switchers with it on a virtual clock
// and returns a trace of every media command and state change.
//
// Example script:
//
//	threshold = 0.6
//
//	[[items]]
//	id = "a"
//	kind = "clip"
//	duration = "30s"
//	likes = 10
//
//	[[steps]]
//	at = "0s"
//	action = "visible"
//	id = "a"
//	ratio = 1.0
//
// Replays run offline by default; [Offline] stands in for the service API.
package sim
