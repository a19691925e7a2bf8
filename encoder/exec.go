package encoder

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// ffmpeg logs on stderr; keep only the tail, full transcode logs run to
// megabytes.
const maxOutputTail = 2048

func (f *FFmpeg) run(ctx context.Context, op string, args []string) error {
	path := f.Path
	if path == "" {
		path = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, path, args...)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if f.Logger != nil {
		f.Logger.WithField("op", op).Debugf("running %s", cmd.String())
	}
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return &EncodeError{Op: op, Err: err, Output: outputTail(output.String())}
	}
	return nil
}

func outputTail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxOutputTail {
		s = s[len(s)-maxOutputTail:]
	}
	return s
}
