// Package views reports a view at most once per mounted feed item, after enough of it was watched.
//
// The watch policy depends on the item's duration class, decided once when the duration
// first becomes known:
//   - clips: more than 15% watched, or more than 3 seconds
//   - videos longer than 10 minutes: at least 60 seconds
//   - other videos: more than 15% watched
//
// Firing increments the local count through the engagement store and records the view on the
// server without waiting. Server failures are logged and otherwise ignored.
package views
