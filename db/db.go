package db

import (
	"encoding/json"
	"errors"
	"net"

	"github.com/go-redis/redis"
)

var (
	// ErrVideoNotFound is returned when no record exists for the given id.
	ErrVideoNotFound = errors.New("video not found")
)

// Video is the persisted record for one uploaded video. Field names follow
// the videos table layout (id, raw_path, status, hls_path, thumbnail_path).
type Video struct {
	ID            string `json:"id"`
	RawPath       string `json:"raw_path"`
	Status        Status `json:"status"`
	HLSPath       string `json:"hls_path,omitempty"`
	ThumbnailPath string `json:"thumbnail_path,omitempty"`
}

// Status is the processing state of a video.
type Status string

const (
	// StatusPending is set by the uploader before the pipeline runs.
	StatusPending = Status("pending")
	// StatusReady means the HLS artifacts were produced and uploaded.
	StatusReady = Status("ready")
	// StatusFailed is the terminal failure state.
	StatusFailed = Status("failed")
)

// Repository provides point reads and writes of video records.
type Repository interface {
	GetVideo(id string) (*Video, error)
	UpdateVideoStatus(id string, status Status, hlsPath, thumbnailPath string) error
}

type Options struct {
	Addr     string
	Password string
	DB       int
}

func NewClient(opt *Options) (*Client, error) {
	if opt == nil {
		opt = &Options{}
	}
	if opt.Addr == "" {
		opt.Addr = "localhost:6379"
	}
	_, _, err := net.SplitHostPort(opt.Addr)
	if err != nil {
		opt.Addr = net.JoinHostPort(opt.Addr, "6379")
	}
	c := &Client{
		rc: redis.NewClient(&redis.Options{
			Addr:     opt.Addr,
			DB:       opt.DB,
			Password: opt.Password,
		}),
	}
	return c, nil
}

// Client is a Repository backed by redis, one JSON document per video id.
type Client struct {
	rc *redis.Client
}

func videoKey(id string) string {
	return "video:" + id
}

func (c *Client) GetVideo(id string) (*Video, error) {
	val, err := c.rc.Get(videoKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrVideoNotFound
	} else if err != nil {
		return nil, err
	}
	video := Video{ID: id}
	if err := json.Unmarshal([]byte(val), &video); err != nil {
		return nil, err
	}
	return &video, nil
}

// UpdateVideoStatus rewrites the record's status and output paths. A missing
// record is not an error here: the failure path must still be able to persist
// status=failed for an id that was never registered.
func (c *Client) UpdateVideoStatus(id string, status Status, hlsPath, thumbnailPath string) error {
	video, err := c.GetVideo(id)
	if err == ErrVideoNotFound {
		video = &Video{ID: id}
	} else if err != nil {
		return err
	}
	video.Status = status
	video.HLSPath = hlsPath
	video.ThumbnailPath = thumbnailPath
	data, err := json.Marshal(video)
	if err != nil {
		return err
	}
	return c.rc.Set(videoKey(id), string(data), 0).Err()
}
