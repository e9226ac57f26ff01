// Package ui implements the `notifications watch` terminal interface using bubbletea's Elm architecture.
//
// The [Model] shows three things:
//  1. a status line telling whether the poller is running
//  2. the celebration panel for the current achievement, if any
//  3. a list of toasts delivered since the watch started
//
// Toasts and poller events reach the model through a [Feed], which adapts the engine's
// synchronous subscriber callbacks to bubbletea messages.
//
// Keyboard navigation uses vim-style bindings (j/k, d, p, x, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
