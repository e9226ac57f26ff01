// Package models defines the data shared by the feed, engagement and notification engines.
//
// The package contains three groups of types:
//
// 1. Feed entities mirrored from the server
//   - [FeedItem] : a video or clip mounted in a feed, with its engagement fields
//   - [Snapshot] : the visible value of one engagement [Field]
//   - [Mutation] : an optimistic change awaiting server confirmation
//
// 2. Notifications
//   - [Notification] : server-owned message with a one-way IsRead flag
//
// 3. Playback sources
//   - [ResolutionOption] : a selectable source, optionally gated by entitlement
//   - [VideoSources] : the per-resolution URLs published for a video
package models
