package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML shape of a config file. Pointer fields distinguish
// "absent" from zero values so only keys present in the file are applied.
type FileConfig struct {
	FFmpeg      *string `yaml:"ffmpeg"`
	FFprobe     *string `yaml:"ffprobe"`
	Jobs        *int    `yaml:"jobs"`
	DryRun      *bool   `yaml:"dry_run"`
	SkipCheck   *bool   `yaml:"skip_check"`
	Verbose     *bool   `yaml:"verbose"`
	Color       *string `yaml:"color"`
	LogFormat   *string `yaml:"log_format"`
	LogFile     *string `yaml:"log_file"`
	MetricsFile *string `yaml:"metrics_file"`
	VerifyDir   *string `yaml:"verify_dir"`
	ReportFile  *string `yaml:"report_file"`
}

// LoadFile reads and strictly decodes a YAML config file. Unknown keys are
// rejected so typos surface instead of being silently ignored.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

// MergeFile applies values present in fc to cfg, except for settings whose
// flag the user set explicitly (reported by changed, keyed by flag name).
func MergeFile(cfg *Config, fc *FileConfig, changed func(flag string) bool) {
	if fc == nil {
		return
	}
	if changed == nil {
		changed = func(string) bool { return false }
	}

	setString := func(flag string, src *string, dst *string) {
		if src != nil && !changed(flag) {
			*dst = *src
		}
	}
	setBool := func(flag string, src *bool, dst *bool) {
		if src != nil && !changed(flag) {
			*dst = *src
		}
	}

	setString(FlagFFmpeg, fc.FFmpeg, &cfg.FFmpegPath)
	setString(FlagFFprobe, fc.FFprobe, &cfg.FFprobePath)
	if fc.Jobs != nil && !changed(FlagJobs) {
		cfg.Jobs = *fc.Jobs
	}
	setBool(FlagDryRun, fc.DryRun, &cfg.DryRun)
	setBool(FlagSkipCheck, fc.SkipCheck, &cfg.SkipCheck)
	setBool(FlagVerbose, fc.Verbose, &cfg.Verbose)
	if fc.Color != nil && !changed(FlagColor) {
		cfg.ColorMode = ColorMode(*fc.Color)
	}
	if fc.LogFormat != nil && !changed(FlagLogFormat) {
		cfg.LogFormat = LogFormat(*fc.LogFormat)
	}
	setString(FlagLogFile, fc.LogFile, &cfg.LogFile)
	setString(FlagMetricsFile, fc.MetricsFile, &cfg.MetricsFile)
	setString(FlagVerifyDir, fc.VerifyDir, &cfg.VerifyDir)
	setString(FlagReportFile, fc.ReportFile, &cfg.ReportFile)
}
