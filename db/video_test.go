package db

import (
	"encoding/json"
	"testing"
)

func TestVideoJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Video{
		ID:            "abc123",
		RawPath:       "abc123.mp4",
		Status:        StatusReady,
		HLSPath:       "abc123/playlist.m3u8",
		ThumbnailPath: "abc123.png",
	})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for field, want := range map[string]string{
		"id":             "abc123",
		"raw_path":       "abc123.mp4",
		"status":         "ready",
		"hls_path":       "abc123/playlist.m3u8",
		"thumbnail_path": "abc123.png",
	} {
		if m[field] != want {
			t.Errorf("field %q = %q, want %q", field, m[field], want)
		}
	}
}

func TestVideoJSONOmitsAbsentPaths(t *testing.T) {
	data, err := json.Marshal(Video{ID: "abc123", RawPath: "abc123.mp4", Status: StatusFailed})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"hls_path", "thumbnail_path"} {
		if _, ok := m[field]; ok {
			t.Errorf("field %q should be absent when empty", field)
		}
	}
}
