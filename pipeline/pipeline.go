// Package pipeline implements the video-processing orchestrator: it stages a
// job locally, downloads the source, drives the encoder, uploads the produced
// artifacts and transitions the persisted status to ready or failed.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/vodworks/transcode-pipeline/config"
	"github.com/vodworks/transcode-pipeline/db"
	"github.com/vodworks/transcode-pipeline/encoder"
	"github.com/vodworks/transcode-pipeline/service/exceptions"
	"github.com/vodworks/transcode-pipeline/staging"
	"github.com/vodworks/transcode-pipeline/storage"
)

// Orchestrator runs one job end to end. All fields are process-wide handles
// initialized once at startup and shared across concurrent runs.
type Orchestrator struct {
	Repo     db.Repository
	Store    storage.BlobStore
	Enc      encoder.Encoder
	Staging  *staging.Manager
	Cfg      *config.Config
	Logger   *logrus.Logger
	Reporter exceptions.Reporter

	// Ladder overrides the default rendition ladder, mainly for tests.
	Ladder []encoder.Rendition
}

func (o *Orchestrator) ladder() []encoder.Rendition {
	if len(o.Ladder) > 0 {
		return o.Ladder
	}
	return encoder.DefaultLadder
}

// Run executes the pipeline for jobID. The caller is never informed of
// failures beyond the returned error; the persisted status is the source of
// truth. The staging tree is deleted on every exit path.
func (o *Orchestrator) Run(ctx context.Context, jobID string) (err error) {
	log := o.Logger.WithField("jobID", jobID)

	defer func() {
		if r := recover(); r != nil {
			err = o.fail(jobID, log, fmt.Errorf("pipeline panic: %v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, o.Cfg.Pipeline.JobTimeout)
	defer cancel()

	names := make([]string, 0, len(o.ladder()))
	for _, r := range o.ladder() {
		names = append(names, r.Name)
	}
	ws, err := o.Staging.Acquire(jobID, names)
	if err != nil {
		return o.fail(jobID, log, fmt.Errorf("acquiring staging area: %w", err))
	}
	defer func() {
		if cerr := ws.Cleanup(); cerr != nil {
			log.WithError(cerr).Error("cleaning up staging area")
		}
	}()

	video, err := o.Repo.GetVideo(jobID)
	if err != nil {
		return o.fail(jobID, log, fmt.Errorf("fetching video record: %w", err))
	}
	if video.RawPath == "" {
		return o.fail(jobID, log, fmt.Errorf("video record has no raw_path"))
	}

	sourcePath, err := o.downloadSource(ctx, ws, video.RawPath)
	if err != nil {
		return o.fail(jobID, log, err)
	}

	// Best-effort: a missing thumbnail never fails the job.
	thumbnailPath, err := o.Enc.ExtractThumbnail(ctx, sourcePath, ws.Dir, encoder.ThumbnailOptions{})
	if err != nil {
		log.WithError(err).Warn("thumbnail extraction failed, continuing without thumbnail")
		thumbnailPath = ""
	}

	if err := o.Enc.TranscodeToABR(ctx, sourcePath, ws.OutputDir, o.ladder()); err != nil {
		return o.fail(jobID, log, fmt.Errorf("transcoding: %w", err))
	}

	artifacts, err := o.collectArtifacts(jobID, ws, thumbnailPath)
	if err != nil {
		return o.fail(jobID, log, err)
	}

	thumbnailOK, err := o.uploadAll(ctx, log, artifacts)
	if err != nil {
		return o.fail(jobID, log, err)
	}

	thumbnailKey := ""
	if thumbnailPath != "" && thumbnailOK {
		thumbnailKey = jobID + ".png"
	}
	hlsPath := jobID + "/" + encoder.MasterPlaylist
	if err := o.Repo.UpdateVideoStatus(jobID, db.StatusReady, hlsPath, thumbnailKey); err != nil {
		// Best-effort final write, no recovery beyond logging.
		log.WithError(err).Error("updating video record to ready")
		o.Reporter.ReportException(fmt.Errorf("job %s: updating record to ready: %w", jobID, err))
		return err
	}
	log.WithField("hlsPath", hlsPath).Info("job ready")
	return nil
}

func (o *Orchestrator) downloadSource(ctx context.Context, ws *staging.Workspace, rawPath string) (string, error) {
	data, err := o.Store.Download(ctx, o.Cfg.S3.RawBucket, rawPath)
	if err != nil {
		return "", fmt.Errorf("downloading source: %w", err)
	}
	sourcePath := filepath.Join(ws.RawDir, filepath.Base(rawPath))
	if err := os.WriteFile(sourcePath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing source to staging area: %w", err)
	}
	return sourcePath, nil
}

// fail marks the job failed and reports the underlying error. The status
// write itself is best-effort: if it fails there is nothing left to update.
func (o *Orchestrator) fail(jobID string, log *logrus.Entry, err error) error {
	log.WithError(err).Error("pipeline failed")
	o.Reporter.ReportException(fmt.Errorf("job %s: %w", jobID, err))
	if uerr := o.Repo.UpdateVideoStatus(jobID, db.StatusFailed, "", ""); uerr != nil {
		log.WithError(uerr).Error("updating video record to failed")
	}
	return err
}
