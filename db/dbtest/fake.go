// Package dbtest provides an in-memory Repository for tests.
package dbtest

import (
	"sync"

	"github.com/vodworks/transcode-pipeline/db"
)

// FakeRepository implements db.Repository on a map. The error fields, when
// set, are returned by the corresponding operation.
type FakeRepository struct {
	mu     sync.Mutex
	videos map[string]*db.Video

	GetErr    error
	UpdateErr error

	// Updates records every UpdateVideoStatus call in order.
	Updates []db.Video
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{videos: make(map[string]*db.Video)}
}

func (r *FakeRepository) Add(v db.Video) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := v
	r.videos[v.ID] = &copied
}

func (r *FakeRepository) GetVideo(id string) (*db.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	v, ok := r.videos[id]
	if !ok {
		return nil, db.ErrVideoNotFound
	}
	copied := *v
	return &copied, nil
}

func (r *FakeRepository) UpdateVideoStatus(id string, status db.Status, hlsPath, thumbnailPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	v, ok := r.videos[id]
	if !ok {
		v = &db.Video{ID: id}
		r.videos[id] = v
	}
	v.Status = status
	v.HLSPath = hlsPath
	v.ThumbnailPath = thumbnailPath
	r.Updates = append(r.Updates, *v)
	return nil
}

// Video returns the current record for id, or nil.
func (r *FakeRepository) Video(id string) *db.Video {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil
	}
	copied := *v
	return &copied
}
