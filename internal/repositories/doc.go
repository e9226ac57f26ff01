// Package repositories implements the SQLite working-set cache.
//
// The server owns every durable record; these tables only let the CLI and TUI show
// something useful before the first network round trip:
//   - [NotificationRepository] : notifications delivered to this client and when they were acknowledged
//   - [SnapshotRepository] : last server-confirmed like/follow values per entity
//
// Both satisfy the narrow interfaces declared by their consumers (notify.History and
// engagement.Mirror).
package repositories
