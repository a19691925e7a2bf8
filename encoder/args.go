package encoder

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// thumbnailArgs builds the ffmpeg invocation for single-frame extraction and
// returns the path the frame will be written to.
func thumbnailArgs(sourcePath, outputDir string, opts ThumbnailOptions) (string, []string) {
	outPath := filepath.Join(outputDir, ThumbnailFile)
	args := []string{
		"-hide_banner",
		"-y",
		"-ss", formatSeconds(opts.Timestamp),
		"-i", sourcePath,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale=w=%d:h=%d:force_original_aspect_ratio=decrease", opts.Width, opts.Height),
		outPath,
	}
	return outPath, args
}

// abrArgs builds a single ffmpeg invocation that scales the source into every
// ladder rendition and muxes them as a VOD HLS tree: numbered segments per
// rendition directory, one variant playlist per rendition and a master
// playlist at the output root.
func abrArgs(sourcePath, outputDir string, ladder []Rendition, segmentSeconds int) []string {
	args := []string{
		"-hide_banner",
		"-y",
		"-i", sourcePath,
		"-filter_complex", splitFilter(ladder),
	}

	for i := range ladder {
		args = append(args, "-map", fmt.Sprintf("[v%dout]", i), "-map", "0:a?")
	}
	for i, r := range ladder {
		args = append(args,
			fmt.Sprintf("-c:v:%d", i), "libx264",
			fmt.Sprintf("-b:v:%d", i), fmt.Sprintf("%dk", r.VideoBitrateKbps),
		)
	}
	args = append(args,
		"-c:a", "aac",
		"-b:a", fmt.Sprintf("%dk", audioBitrateKbps),
		"-sc_threshold", "0",
		"-f", "hls",
		"-hls_time", fmt.Sprintf("%d", segmentSeconds),
		"-hls_playlist_type", "vod",
		"-hls_flags", "independent_segments",
		"-hls_segment_filename", filepath.Join(outputDir, "%v", "segment%03d.ts"),
		"-master_pl_name", MasterPlaylist,
		"-var_stream_map", varStreamMap(ladder),
		filepath.Join(outputDir, "%v.m3u8"),
	)
	return args
}

// splitFilter fans the source video out into one scaled stream per rendition.
func splitFilter(ladder []Rendition) string {
	var labels, chains []string
	for i := range ladder {
		labels = append(labels, fmt.Sprintf("[v%d]", i))
	}
	split := fmt.Sprintf("[0:v]split=%d%s", len(ladder), strings.Join(labels, ""))
	chains = append(chains, split)
	for i, r := range ladder {
		chains = append(chains, fmt.Sprintf(
			"[v%d]scale=w=%d:h=%d:force_original_aspect_ratio=decrease[v%dout]",
			i, r.Width, r.Height, i))
	}
	return strings.Join(chains, ";")
}

// varStreamMap names each variant after its rendition so ffmpeg substitutes
// the rendition name for %v in segment and playlist paths.
func varStreamMap(ladder []Rendition) string {
	pairs := make([]string, 0, len(ladder))
	for i, r := range ladder {
		pairs = append(pairs, fmt.Sprintf("v:%d,a:%d,name:%s", i, i, r.Name))
	}
	return strings.Join(pairs, " ")
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
