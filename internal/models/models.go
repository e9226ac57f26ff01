// package models defines the data model for the feed synchronization engine
package models

import (
	"encoding/json"
	"time"
)

// Kind distinguishes long-form videos from short clips.
type Kind string

const (
	KindVideo Kind = "video"
	KindClip  Kind = "clip"
)

// FeedItem is a single entry of a feed.
//
// ViewCounted is a session-scoped latch and is never serialized.
type FeedItem struct {
	ID           string        `json:"id"`
	Kind         Kind          `json:"kind"`
	Liked        bool          `json:"liked"`
	LikeCount    int           `json:"likes_count"`
	ViewCount    int           `json:"views"`
	MediaURL     string        `json:"video_url"`
	ThumbnailURL string        `json:"thumbnail_url"`
	OwnerID      string        `json:"owner_id"`
	Duration     time.Duration `json:"-"`
	ViewCounted  bool          `json:"-"`
}

// Field selects an engagement field of an entity.
type Field int

const (
	FieldLike Field = iota
	FieldFollow
	FieldViews
)

func (f Field) String() string {
	switch f {
	case FieldLike:
		return "like"
	case FieldFollow:
		return "follow"
	case FieldViews:
		return "views"
	default:
		return ""
	}
}

// ParseField is the inverse of [Field.String].
func ParseField(s string) (Field, bool) {
	for _, f := range []Field{FieldLike, FieldFollow, FieldViews} {
		if f.String() == s {
			return f, true
		}
	}
	return 0, false
}

// Snapshot is the visible value of one engagement field: a flag (liked, following) and a counter.
//
// Views only use Count.
type Snapshot struct {
	Active bool
	Count  int
}

// Flipped returns the snapshot after a toggle: the flag inverted and the counter moved with it.
func (s Snapshot) Flipped() Snapshot {
	if s.Active {
		return Snapshot{Active: false, Count: max(s.Count-1, 0)}
	}
	return Snapshot{Active: true, Count: s.Count + 1}
}

// Mutation is an optimistic engagement change awaiting the server.
//
// Baseline is the value before the oldest still-unconfirmed mutation on the same field;
// it is what a failure restores.
type Mutation struct {
	EntityID  string
	Field     Field
	Previous  Snapshot
	Applied   Snapshot
	Baseline  Snapshot
	RequestID string
	CreatedAt time.Time
}

// ActivationState names the feed item currently allowed to play. Empty means none.
type ActivationState struct {
	ActiveID string
}

// NotificationType classifies server notifications.
type NotificationType string

const (
	NotificationInfo        NotificationType = "info"
	NotificationError       NotificationType = "error"
	NotificationAchievement NotificationType = "achievement"
	NotificationSuccess     NotificationType = "success"
)

// Notification is a server-owned message. IsRead only moves from false to true.
type Notification struct {
	ID        int64            `json:"id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Link      string           `json:"link,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// UnmarshalJSON decodes a notification, defaulting a missing or null type to info
// and a null link to empty.
func (n *Notification) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        int64   `json:"id"`
		Type      *string `json:"type"`
		Message   string  `json:"message"`
		Link      *string `json:"link"`
		IsRead    bool    `json:"is_read"`
		CreatedAt string  `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*n = Notification{ID: raw.ID, Message: raw.Message, IsRead: raw.IsRead, Type: NotificationInfo}
	if raw.Type != nil && *raw.Type != "" {
		n.Type = NotificationType(*raw.Type)
	}
	if raw.Link != nil {
		n.Link = *raw.Link
	}
	if raw.CreatedAt != "" {
		n.CreatedAt = parseTimestamp(raw.CreatedAt)
	}
	return nil
}

// IsAchievement reports whether the notification must go through the celebration slot.
func (n Notification) IsAchievement() bool {
	return n.Type == NotificationAchievement
}

// parseTimestamp accepts RFC 3339 and the naive ISO timestamps the API emits.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// HistoryEntry is a locally recorded notification delivery.
type HistoryEntry struct {
	Notification   Notification
	Disposition    string
	DeliveredAt    time.Time
	AcknowledgedAt *time.Time
}

// CachedSnapshot is the last confirmed value of one engagement field.
type CachedSnapshot struct {
	EntityID  string
	Field     Field
	Snapshot  Snapshot
	UpdatedAt time.Time
}
