package service

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Runner runs one pipeline job to completion.
type Runner interface {
	Run(ctx context.Context, jobID string) error
}

// PipelineLauncher launches runs in a goroutine detached from the request
// context, so the pipeline outlives the originating HTTP exchange and its
// failures never reach the original caller.
type PipelineLauncher struct {
	Runner Runner
	Logger *logrus.Logger
}

func (l *PipelineLauncher) Launch(jobID string) {
	go func() {
		if err := l.Runner.Run(context.Background(), jobID); err != nil {
			l.Logger.WithField("jobID", jobID).WithError(err).Error("background pipeline run failed")
		}
	}()
}
