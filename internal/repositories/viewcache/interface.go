package viewcache

import (
	"context"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/seungho-m/jikgwan/internal/repositories/viewcache Repository

// Repository caches rendered server views (gathering lists, details, the
// room roster) under hierarchical keys so screens can be served without a
// round trip. Mutations that change what a view would show invalidate every
// dependent key prefix.
type Repository interface {
	// Put stores a view under its key with the configured TTL
	Put(ctx context.Context, input *PutInput) error

	// Get loads a cached view into dest; ErrMiss when absent or expired
	Get(ctx context.Context, input *GetInput, dest interface{}) error

	// Invalidate removes every key under each given prefix
	Invalidate(ctx context.Context, input *InvalidateInput) error
}

// View key builders. The hierarchy mirrors what each screen depends on, so
// one mutation can sweep every view it affects.
const (
	gatheringsPrefix      = "view:gatherings"
	gatheringsListPrefix  = "view:gatherings:list"
	gatheringDetailPrefix = "view:gatherings:detail"
	myParticipatingKey    = "view:gatherings:my-participating"
	chatRoomsKey          = "view:chat:rooms"
)

// GatheringsListKey keys the gathering list for one team filter; an empty
// team means the unfiltered list.
func GatheringsListKey(team string, page, size int) string {
	if team == "" {
		team = "all"
	}
	return gatheringsListPrefix + ":" + team + ":" + itoa(page) + ":" + itoa(size)
}

// GatheringDetailKey keys one gathering's detail view
func GatheringDetailKey(id int64) string {
	return gatheringDetailPrefix + ":" + itoa64(id)
}

// MyParticipatingKey keys the "gatherings I am confirmed in" view
func MyParticipatingKey() string {
	return myParticipatingKey
}

// ChatRoomsKey keys the chat room roster view
func ChatRoomsKey() string {
	return chatRoomsKey
}

// GatheringsListPrefix sweeps every cached list page
func GatheringsListPrefix() string {
	return gatheringsListPrefix
}

// GatheringDetailKeyPrefix sweeps one gathering's detail view
func GatheringDetailKeyPrefix(id int64) string {
	return GatheringDetailKey(id)
}
