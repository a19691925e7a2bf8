package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vodworks/transcode-pipeline/encoder"
	"github.com/vodworks/transcode-pipeline/staging"
)

// artifact is one produced file with its destination bucket, logical key and
// content type. Required artifacts fail the job when their upload fails; the
// thumbnail is exempt.
type artifact struct {
	localPath   string
	bucket      string
	key         string
	contentType string
	required    bool
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".ts":
		return "video/MP2T"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// collectArtifacts enumerates every file under the staging output subtree,
// keyed as {jobID}/{relativePath}, plus the thumbnail (if produced) keyed as
// {jobID}.png in the thumbnail bucket.
func (o *Orchestrator) collectArtifacts(jobID string, ws *staging.Workspace, thumbnailPath string) ([]artifact, error) {
	var artifacts []artifact
	masterSeen := false
	err := filepath.Walk(ws.OutputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(ws.OutputDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == encoder.MasterPlaylist {
			masterSeen = true
		}
		artifacts = append(artifacts, artifact{
			localPath:   path,
			bucket:      o.Cfg.S3.HLSBucket,
			key:         jobID + "/" + rel,
			contentType: contentTypeFor(path),
			required:    true,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerating artifacts: %w", err)
	}
	if !masterSeen {
		return nil, fmt.Errorf("encoder produced no master playlist")
	}
	if thumbnailPath != "" {
		artifacts = append(artifacts, artifact{
			localPath:   thumbnailPath,
			bucket:      o.Cfg.S3.ThumbnailBucket,
			key:         jobID + ".png",
			contentType: "image/png",
			required:    false,
		})
	}
	return artifacts, nil
}

type uploadResult struct {
	art artifact
	err error
}

// uploadAll fans the uploads out with bounded concurrency and waits for every
// one to resolve. It returns whether the thumbnail made it, and the first
// required-artifact failure.
func (o *Orchestrator) uploadAll(ctx context.Context, log *logrus.Entry, artifacts []artifact) (bool, error) {
	workers := o.Cfg.Pipeline.UploadConcurrency
	if workers <= 0 {
		workers = 4
	}
	sem := make(chan struct{}, workers)
	results := make(chan uploadResult, len(artifacts))
	for _, a := range artifacts {
		a := a
		sem <- struct{}{}
		go func() {
			defer func() { <-sem }()
			results <- uploadResult{art: a, err: o.upload(ctx, a)}
		}()
	}

	thumbnailOK := true
	var firstErr error
	for range artifacts {
		res := <-results
		if res.err == nil {
			continue
		}
		if !res.art.required {
			log.WithError(res.err).Warn("thumbnail upload failed, continuing without thumbnail")
			thumbnailOK = false
			continue
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("uploading required artifact %s: %w", res.art.key, res.err)
		}
	}
	return thumbnailOK, firstErr
}

func (o *Orchestrator) upload(ctx context.Context, a artifact) error {
	f, err := os.Open(a.localPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return o.Store.Upload(ctx, a.bucket, a.key, f, a.contentType)
}
