// Package viewport decides which mounted feed item is active.
//
// The front-end reports each item's visible fraction with [Tracker.Observe]. The item with the
// highest fraction at or above the threshold becomes active; the current item keeps activation on
// ties and whenever nothing crosses the threshold. Each change is delivered to handlers as one
// [Activation] carrying both the previous and the new item, in order, never coalesced.
//
// The tracker has no media side effects; [playback.Controller] turns activations into play and pause.
package viewport
