package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/DaisyQuest/Transcriberator/internal/cache"
	"github.com/DaisyQuest/Transcriberator/internal/config"
	"github.com/DaisyQuest/Transcriberator/internal/progress"
	"github.com/DaisyQuest/Transcriberator/internal/server"
	"github.com/DaisyQuest/Transcriberator/internal/signal"
	"github.com/DaisyQuest/Transcriberator/internal/symbolic"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "transcriberator",
	Short: "Derive tempo, melody, key, chords and instrument from raw audio",
	Long: `Transcriberator ingests raw audio sample data and deterministically
derives a symbolic musical representation: tempo, melodic pitch sequence,
key, chords, probable instrument, and a confidence report.

Pipeline: samples → onsets/tempo → per-segment pitch → melody → key
          frames → chords → instrument → confidence`,
	Version: version,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze an audio asset into tempo, melody and key",
	Long: `Analyze runs the signal layer over a file. Decodable PCM uses the
onset/pitch estimators; anything else falls back to byte heuristics.

Examples:
  transcriberator analyze -i track.pcm --sample-rate 44100
  transcriberator analyze -i track.mp3 --bytes --json`,
	RunE: runAnalyze,
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Transcribe a frame fixture into chords and instrument",
	Long: `Transcribe runs the symbolic layer over a JSON file holding an
array of simultaneous-pitch frames.

Example:
  transcriberator transcribe -i frames.json --polyphonic --preset auto`,
	RunE: runTranscribe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	Long: `Start the HTTP API for analyze/transcribe requests.

Example:
  transcriberator serve --port 8080`,
	RunE: runServe,
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the analysis profile cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached profiles",
	RunE:  runCacheClear,
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache size and entry count",
	RunE:  runCacheInfo,
}

var (
	inputPath  string
	configPath string
	sampleRate int
	forceBytes bool
	jsonOutput bool
	noCache    bool
	verbose    bool

	polyphonic bool
	preset     string
	sourceURI  string

	servePort int
)

func init() {
	analyzeCmd.Flags().StringVarP(&inputPath, "input", "i", "", "input audio file (required)")
	analyzeCmd.Flags().StringVar(&configPath, "config", "", "YAML settings file")
	analyzeCmd.Flags().IntVar(&sampleRate, "sample-rate", 44100, "sample rate for PCM input")
	analyzeCmd.Flags().BoolVar(&forceBytes, "bytes", false, "treat input as undecodable container bytes")
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON instead of a summary")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the profile cache")
	analyzeCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose progress output")
	_ = analyzeCmd.MarkFlagRequired("input")

	transcribeCmd.Flags().StringVarP(&inputPath, "input", "i", "", "frames JSON file (required)")
	transcribeCmd.Flags().StringVar(&configPath, "config", "", "YAML settings file")
	transcribeCmd.Flags().BoolVar(&polyphonic, "polyphonic", false, "treat the source as polyphonic")
	transcribeCmd.Flags().StringVar(&preset, "preset", symbolic.PresetAuto, "instrument preset")
	transcribeCmd.Flags().StringVar(&sourceURI, "source", "", "source URI recorded in the result")
	transcribeCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON instead of a summary")
	_ = transcribeCmd.MarkFlagRequired("input")

	serveCmd.Flags().IntVar(&servePort, "port", 8080, "listen port")
	serveCmd.Flags().StringVar(&configPath, "config", "", "YAML settings file")

	cacheCmd.AddCommand(cacheClearCmd, cacheInfoCmd)
	rootCmd.AddCommand(analyzeCmd, transcribeCmd, serveCmd, cacheCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	reporter := progress.NewReporter(os.Stderr, verbose)

	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}

	reporter.StartStage(progress.StageValidate)
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	reporter.StageComplete("%d bytes", len(raw))

	var store *cache.ProfileCache
	if !noCache {
		store, err = cache.New()
		if err != nil {
			reporter.Warning("cache unavailable: %v", err)
		}
	}

	key := cache.KeyForBytes(raw)
	if store != nil {
		if entry, ok := store.Get(key); ok {
			reporter.Update("cache hit for %s", key)
			return emitProfile(entry.Profile)
		}
	}

	analyzer := signal.NewAnalyzer(settings.TuningSettings())

	reporter.StartStage(progress.StageTempo)
	var profile *signal.AudioAnalysisProfile
	if forceBytes {
		profile, err = analyzer.AnalyzeBytes(raw)
	} else {
		profile, err = analyzer.AnalyzeSamples(signal.SampleBuffer{
			Samples:    decodePCM16(raw),
			SampleRate: sampleRate,
			Channels:   1,
		})
	}
	if err != nil {
		reporter.Error(err)
		return err
	}
	reporter.StageComplete("tempo %d BPM", profile.TempoBPM)

	reporter.StartStage(progress.StageMelody)
	for _, line := range profile.Trace {
		reporter.Update("%s", line)
	}
	reporter.StageComplete("key %s, %d notes", profile.Key, len(profile.Melody))

	if store != nil {
		if err := store.Put(key, profile); err != nil {
			reporter.Warning("cache write failed: %v", err)
		}
	}

	reporter.Done("")
	return emitProfile(profile)
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read frames: %w", err)
	}
	var frames []symbolic.Frame
	if err := json.Unmarshal(data, &frames); err != nil {
		return fmt.Errorf("parse frames: %w", err)
	}

	if sourceURI == "" {
		sourceURI = "file://" + inputPath
	}

	worker := symbolic.NewWorker()
	result, err := worker.Process(symbolic.Request{
		SourceURI:        sourceURI,
		Polyphonic:       polyphonic,
		Frames:           frames,
		InstrumentPreset: preset,
		Config:           &settings.Pipeline,
	})
	if err != nil {
		return err
	}

	return emitResult(result)
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return server.New(server.Config{Port: servePort, Settings: settings}).Run()
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := cache.New()
	if err != nil {
		return err
	}
	return store.Clear()
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	store, err := cache.New()
	if err != nil {
		return err
	}
	size, count, err := store.Size()
	if err != nil {
		return err
	}
	fmt.Printf("%d entries, %d bytes\n", count, size)
	return nil
}

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
)

func emitProfile(profile *signal.AudioAnalysisProfile) error {
	if jsonOutput {
		return printJSON(profile)
	}

	fmt.Println(labelStyle.Render("Analysis profile"))
	fmt.Printf("  %s %s\n", labelStyle.Render("Fingerprint:"), profile.Fingerprint)
	fmt.Printf("  %s %.2fs (%d bytes)\n", labelStyle.Render("Duration:"), profile.DurationSec, profile.ByteCount)
	fmt.Printf("  %s %d BPM\n", labelStyle.Render("Tempo:"), profile.TempoBPM)
	fmt.Printf("  %s %s\n", labelStyle.Render("Key:"), profile.Key)
	fmt.Printf("  %s %s\n", labelStyle.Render("Melody:"), summarizeMelody(profile.Melody))
	for _, line := range profile.Trace {
		fmt.Println(dimStyle.Render("  · " + line))
	}
	return nil
}

func emitResult(result *symbolic.Result) error {
	if jsonOutput {
		return printJSON(result)
	}

	fmt.Println(labelStyle.Render("Transcription result"))
	fmt.Printf("  %s %d\n", labelStyle.Render("Events:"), result.EventCount)
	fmt.Printf("  %s %.3f\n", labelStyle.Render("Confidence:"), result.Confidence)
	fmt.Printf("  %s %s (preset %s)\n", labelStyle.Render("Instrument:"), result.DetectedInstrument, result.AppliedPreset)
	fmt.Printf("  %s %s\n", labelStyle.Render("Chords:"), strings.Join(result.DetectedChords, " "))
	for _, line := range result.ExecutionPlan {
		fmt.Println(dimStyle.Render("  · " + line))
	}
	for _, flag := range result.ReviewFlags {
		fmt.Println(dimStyle.Render("  ! " + flag))
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func summarizeMelody(melody []int) string {
	const maxShown = 16
	parts := make([]string, 0, maxShown+1)
	for i, p := range melody {
		if i == maxShown {
			parts = append(parts, fmt.Sprintf("… (%d total)", len(melody)))
			break
		}
		parts = append(parts, strconv.Itoa(p))
	}
	return strings.Join(parts, " ")
}

// decodePCM16 reads little-endian signed 16-bit mono samples.
func decodePCM16(raw []byte) []int {
	samples := make([]int, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		v := int(int16(uint16(raw[i]) | uint16(raw[i+1])<<8))
		samples = append(samples, v)
	}
	return samples
}
