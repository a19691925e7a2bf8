// Package encoder wraps invocation of the external ffmpeg binary for
// thumbnail extraction and multi-rendition HLS transcoding.
package encoder

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Rendition is one resolution/bitrate variant of the transcoded output.
type Rendition struct {
	Name             string
	Width            int
	Height           int
	VideoBitrateKbps int
}

// DefaultLadder is the fixed ABR ladder: H.264 video at three heights with
// AAC audio shared across variants.
var DefaultLadder = []Rendition{
	{Name: "720p", Width: 1280, Height: 720, VideoBitrateKbps: 2000},
	{Name: "480p", Width: 854, Height: 480, VideoBitrateKbps: 800},
	{Name: "240p", Width: 426, Height: 240, VideoBitrateKbps: 400},
}

const (
	audioBitrateKbps = 128

	// MasterPlaylist is the name of the master manifest produced at the
	// output root.
	MasterPlaylist = "playlist.m3u8"

	// ThumbnailFile is the deterministic name of the extracted frame.
	ThumbnailFile = "thumbnail.png"
)

// ThumbnailOptions controls frame extraction.
type ThumbnailOptions struct {
	Timestamp time.Duration
	Width     int
	Height    int
}

func (o ThumbnailOptions) withDefaults() ThumbnailOptions {
	if o.Timestamp <= 0 {
		o.Timestamp = time.Second
	}
	if o.Width <= 0 {
		o.Width = 640
	}
	if o.Height <= 0 {
		o.Height = 360
	}
	return o
}

// Encoder manages the two encode operations of the pipeline. Both block until
// the external process reports completion or the context is canceled.
type Encoder interface {
	// ExtractThumbnail pulls one frame from the source and writes it as
	// ThumbnailFile into outputDir, returning the produced file's path.
	ExtractThumbnail(ctx context.Context, sourcePath, outputDir string, opts ThumbnailOptions) (string, error)

	// TranscodeToABR produces, under outputDir, one segment directory per
	// rendition, one variant playlist per rendition and a master playlist.
	TranscodeToABR(ctx context.Context, sourcePath, outputDir string, ladder []Rendition) error
}

// EncodeError reports a non-zero ffmpeg exit, with a bounded tail of the
// process output for diagnosis.
type EncodeError struct {
	Op     string
	Err    error
	Output string
}

func (e *EncodeError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("ffmpeg %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ffmpeg %s: %v: %s", e.Op, e.Err, e.Output)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// FFmpeg is the Encoder implementation backed by a local ffmpeg binary.
type FFmpeg struct {
	Path           string
	SegmentSeconds int
	Logger         *logrus.Logger
}

func (f *FFmpeg) ExtractThumbnail(ctx context.Context, sourcePath, outputDir string, opts ThumbnailOptions) (string, error) {
	opts = opts.withDefaults()
	outPath, args := thumbnailArgs(sourcePath, outputDir, opts)
	if err := f.run(ctx, "thumbnail", args); err != nil {
		return "", err
	}
	if _, err := os.Stat(outPath); err != nil {
		return "", &EncodeError{Op: "thumbnail", Err: fmt.Errorf("no output file produced: %w", err)}
	}
	return outPath, nil
}

func (f *FFmpeg) TranscodeToABR(ctx context.Context, sourcePath, outputDir string, ladder []Rendition) error {
	if len(ladder) == 0 {
		ladder = DefaultLadder
	}
	segment := f.SegmentSeconds
	if segment <= 0 {
		segment = 10
	}
	return f.run(ctx, "transcode", abrArgs(sourcePath, outputDir, ladder, segment))
}
