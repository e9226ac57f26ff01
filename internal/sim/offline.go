package sim

import (
	"context"
	"sync"

	"github.com/desertthunder/reelsync/internal/services"
	"github.com/desertthunder/reelsync/internal/shared"
)

// Offline answers engagement and view calls locally, the way the server would.
type Offline struct {
	mu        sync.Mutex
	liked     map[string]bool
	following map[string]bool
	failLikes map[string]bool
	views     map[string]int
}

// NewOffline creates an Offline API seeded with the current like state. Likes on ids in
// failLikes fail with [shared.ErrNetworkFailure].
func NewOffline(liked map[string]bool, failLikes map[string]bool) *Offline {
	o := &Offline{
		liked:     map[string]bool{},
		following: map[string]bool{},
		failLikes: map[string]bool{},
		views:     map[string]int{},
	}
	for id, v := range liked {
		o.liked[id] = v
	}
	for id, v := range failLikes {
		o.failLikes[id] = v
	}
	return o
}

func (o *Offline) LikeVideo(_ context.Context, videoID string) (*services.LikeResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failLikes[videoID] {
		return nil, shared.ErrNetworkFailure
	}
	o.liked[videoID] = !o.liked[videoID]
	return &services.LikeResult{Liked: o.liked[videoID]}, nil
}

func (o *Offline) ToggleFollow(_ context.Context, userID string) (*services.FollowResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.following[userID] = !o.following[userID]
	return &services.FollowResult{IsFollowing: o.following[userID]}, nil
}

func (o *Offline) RecordView(_ context.Context, videoID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.views[videoID]++
	return nil
}

// Views returns how many views were recorded for videoID.
func (o *Offline) Views(videoID string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.views[videoID]
}
