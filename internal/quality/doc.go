// Package quality switches a player between resolution renditions of the same video.
//
// A switch captures the playhead and play state, loads the new source, waits for it to become
// playable and then restores both. The wait is bounded; if the source never becomes ready the
// player is left paused at the start of the new source.
//
// Options that require entitlement are refused for sessions without it. The refusal shows an
// informational toast and returns [shared.ErrEntitlementRequired] with nothing changed.
package quality
