// Package engagement keeps the local like, follow and view-count state of feed entities.
//
// Toggles are optimistic: [Store.ToggleLike] and [Store.ToggleFollow] change the visible
// [models.Snapshot] at once and reconcile with the server in the background.
//
// # Reconciliation
//
// Every toggle records a [models.Mutation] with a fresh request id. A toggle issued while an
// earlier one is still in flight replaces it and inherits its Baseline, so only the newest
// request's outcome is applied:
//   - success: the server's flag and count overwrite the local snapshot
//   - [shared.ErrNotFound]: the entity is dropped from local state, silently
//   - anything else: the Baseline is restored and one error toast is shown
//
// Responses for forgotten entities or superseded requests are discarded.
//
// # Debounce
//
// A second toggle of the same field inside the debounce window returns [shared.ErrDebounced]
// and changes nothing. The window is enforced with a [rate.Limiter] per entity field.
//
// View counts are only ever written through [Store.IncrementViews].
package engagement
