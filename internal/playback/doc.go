// Package playback turns activation changes into media commands.
//
// Each mounted item runs a small state machine over its [Media] element:
//
//	Idle -> Playing -> Paused -> Idle
//
// When the active item changes, the previous element is paused and rewound before the new one
// is asked to play, so at most one element is ever Playing. A rejected autoplay leaves the new
// item Paused until the user taps it.
//
// Taps and mute toggles only act on the active item. Two taps inside the double-tap window also
// like the item through the engagement store, unless it is already liked.
package playback
