package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"adconvert/internal/config"
	"adconvert/internal/convert"
	"adconvert/internal/fileutil"
	"adconvert/internal/logging"
	"adconvert/internal/media/ffprobe"
	"adconvert/internal/preflight"
	"adconvert/internal/selection"
)

const failureTailLines = 10

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var bitrate int
	var outputDir string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Convert a video to H.264 High@4.2 / AAC at the given video bitrate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("bitrate") {
				bitrate = cfg.Convert.DefaultBitrateKbps
			}
			if !cfg.BitrateAllowed(bitrate) {
				return fmt.Errorf("bitrate must be between %d and %d kbps in steps of %d, got %d",
					cfg.Convert.MinBitrateKbps, cfg.Convert.MaxBitrateKbps, cfg.Convert.StepKbps, bitrate)
			}
			file, err := selection.Load(args[0])
			if err != nil {
				return err
			}
			if strings.TrimSpace(outputDir) == "" {
				outputDir = cfg.Paths.OutputDir
			}
			logger, err := ctx.logger(false)
			if err != nil {
				return err
			}

			summary, err := runConversion(cmd, cfg, logger, file, bitrate, outputDir)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, summary)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderPairs("Conversion complete", summary.pairs()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&bitrate, "bitrate", "b", 12000, "Target video bitrate in kbps")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for the converted file (defaults to paths.output_dir)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the summary as JSON")
	return cmd
}

type conversionSummary struct {
	Source          string  `json:"source"`
	SourceSize      int64   `json:"source_size"`
	Output          string  `json:"output"`
	OutputSize      int64   `json:"output_size"`
	BitrateKbps     int     `json:"bitrate_kbps"`
	Elapsed         string  `json:"elapsed"`
	MeasuredKbps    int64   `json:"measured_kbps,omitempty"`
	VideoCodec      string  `json:"video_codec,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

func (s conversionSummary) pairs() [][2]string {
	pairs := [][2]string{
		{"Source", fmt.Sprintf("%s (%s)", s.Source, selection.HumanSize(s.SourceSize))},
		{"Output", fmt.Sprintf("%s (%s)", s.Output, selection.HumanSize(s.OutputSize))},
		{"Target bitrate", fmt.Sprintf("%d kbps", s.BitrateKbps)},
		{"Elapsed", s.Elapsed},
	}
	if s.MeasuredKbps > 0 {
		pairs = append(pairs, [2]string{"Measured bitrate", fmt.Sprintf("%d kbps", s.MeasuredKbps)})
	}
	if s.VideoCodec != "" {
		pairs = append(pairs, [2]string{"Video", s.VideoCodec})
	}
	if s.DurationSeconds > 0 {
		pairs = append(pairs, [2]string{"Duration", fmt.Sprintf("%.1fs", s.DurationSeconds)})
	}
	return pairs
}

func runConversion(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, file *selection.File, bitrate int, outputDir string) (conversionSummary, error) {
	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}
	stderr := cmd.ErrOrStderr()

	if cfg.Engine.BaseURL == "" && preflight.Blocking(preflight.CheckEngineBinaries(runCtx, cfg)) {
		return conversionSummary{}, fmt.Errorf("ffmpeg not available (%s); run `adconvert status` for details", cfg.Engine.Binary)
	}

	controller, eng := newController(cfg, logger)
	defer controller.Close()

	fmt.Fprintln(stderr, "Loading engine...")
	controller.Initialize(runCtx)
	if !controller.Ready() {
		return conversionSummary{}, fmt.Errorf("load engine: %s", controller.Snapshot().LoadError)
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(stderr),
		progressbar.OptionSetDescription("Converting "+file.Name),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	updates, unsubscribe := controller.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for snap := range updates {
			_ = bar.Set(snap.Progress)
		}
	}()

	start := time.Now()
	result, err := controller.Convert(runCtx, convert.Request{
		Source:      file.Data,
		SourceName:  file.Name,
		BitrateKbps: bitrate,
	})
	unsubscribe()
	<-done
	if err != nil {
		_ = bar.Clear()
		fmt.Fprintln(stderr)
		for _, line := range controller.Tail(failureTailLines) {
			fmt.Fprintln(stderr, "  "+line)
		}
		return conversionSummary{}, err
	}
	_ = bar.Finish()
	fmt.Fprintln(stderr)

	target := filepath.Join(outputDir, result.DownloadName)
	written, err := fileutil.WriteAtomic(target, bytes.NewReader(result.Data), 0o644, result.Size)
	if err != nil {
		return conversionSummary{}, fmt.Errorf("save %s: %w", target, err)
	}
	logger.Info("output saved", logging.String("path", target), logging.String("sha256", written.SHA256))

	summary := conversionSummary{
		Source:      file.Name,
		SourceSize:  file.Size,
		Output:      target,
		OutputSize:  result.Size,
		BitrateKbps: bitrate,
		Elapsed:     time.Since(start).Round(time.Millisecond).String(),
	}
	if probe := eng.ProbePath(); probe != "" {
		info, err := ffprobe.Inspect(runCtx, probe, target)
		if err != nil {
			logger.Warn("output probe failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "probe_failed"),
				logging.String(logging.FieldImpact, "summary omits measured bitrate"),
			)
		} else {
			if d := info.DurationSeconds(); d > 0 {
				summary.DurationSeconds = d
			}
			if video, ok := info.VideoStream(); ok {
				summary.MeasuredKbps = video.BitRateKbps()
				summary.VideoCodec = fmt.Sprintf("%s %s@%s %s", video.CodecName, video.Profile, video.LevelString(), video.PixFmt)
			}
		}
	}
	return summary, nil
}
