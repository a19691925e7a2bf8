package dbtest

import (
	"testing"

	"github.com/vodworks/transcode-pipeline/db"
	"github.com/vodworks/transcode-pipeline/test"
)

func TestFakeRepositoryGetMissing(t *testing.T) {
	repo := NewFakeRepository()
	_, err := repo.GetVideo("ghost")
	test.AssertErrIs(err, db.ErrVideoNotFound, "GetVideo", t)
}

func TestFakeRepositoryUpdateCreatesMissingRecord(t *testing.T) {
	repo := NewFakeRepository()
	if err := repo.UpdateVideoStatus("ghost", db.StatusFailed, "", ""); err != nil {
		t.Fatal(err)
	}
	v := repo.Video("ghost")
	if v == nil || v.Status != db.StatusFailed {
		t.Errorf("expected a failed record for ghost, got %+v", v)
	}
	if len(repo.Updates) != 1 {
		t.Errorf("expected 1 recorded update, got %d", len(repo.Updates))
	}
}

func TestFakeRepositoryRoundTrip(t *testing.T) {
	repo := NewFakeRepository()
	repo.Add(db.Video{ID: "abc123", RawPath: "abc123.mp4", Status: db.StatusPending})

	v, err := repo.GetVideo("abc123")
	test.AssertWantErr(err, "", "GetVideo", t)
	if v.RawPath != "abc123.mp4" || v.Status != db.StatusPending {
		t.Errorf("unexpected record %+v", v)
	}

	if err := repo.UpdateVideoStatus("abc123", db.StatusReady, "abc123/playlist.m3u8", "abc123.png"); err != nil {
		t.Fatal(err)
	}
	v, _ = repo.GetVideo("abc123")
	if v.Status != db.StatusReady || v.HLSPath != "abc123/playlist.m3u8" {
		t.Errorf("update not applied: %+v", v)
	}
}
