// Package notify polls the server for unread notifications and surfaces them.
//
// # Polling
//
// [Poller.Start] requires an authenticated session. The first poll runs immediately, then one
// runs every interval. A tick that finds the previous fetch still in flight is skipped, guarded
// by a [semaphore.Weighted] of size one. [Poller.Stop] cancels the schedule and any in-flight
// fetch.
//
// # Delivery
//
// Plain notifications become toasts and are acknowledged right away. Achievements go through a
// single celebration slot: one is shown at a time and is acknowledged only when dismissed,
// either by [Poller.Dismiss] or after the celebration timeout. Achievements that arrive while the
// slot is busy stay unread on the server and surface on a later poll.
//
// Acknowledgment failures are logged and not retried; a notification is never shown twice in a
// session even if its acknowledgment failed.
package notify
