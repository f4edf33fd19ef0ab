// Command lidar-detect runs a voxel detection model over a point-cloud file
// and prints the detections.
//
// Usage:
//
//	lidar-detect -config pipeline.yaml -cloud frame.bin
//	lidar-detect -preset pointpillars-kitti -model pointpillars.onnx -cloud frame.bin
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/nvr-ai/go-lidar/config"
	"github.com/nvr-ai/go-lidar/detector"
	"github.com/nvr-ai/go-lidar/inference"
	"github.com/nvr-ai/go-lidar/inference/providers"
	"github.com/nvr-ai/go-lidar/models"
	"github.com/nvr-ai/go-lidar/points"
)

func main() {
	var (
		configPath = flag.String("config", "", "pipeline configuration YAML")
		preset     = flag.String("preset", "", "model preset name (used when no -config is given)")
		modelPath  = flag.String("model", "", "model artifact path (overrides the config file)")
		backend    = flag.String("backend", "", "execution backend (overrides the config file)")
		cloudPath  = flag.String("cloud", "", "point-cloud .bin file to run on")
		verbose    = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *cloudPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(*configPath, *preset, *modelPath, *backend, *cloudPath, *verbose); err != nil {
		log.Fatal(err)
	}
}

func run(configPath, preset, modelPath, backend, cloudPath string, verbose bool) error {
	app, err := assembleConfig(configPath, preset)
	if err != nil {
		return err
	}
	if modelPath != "" {
		app.ModelPath = modelPath
	}
	if backend != "" {
		app.Backend = backend
	}
	if app.ModelPath == "" {
		return fmt.Errorf("no model artifact: set -model or modelpath in the config file")
	}

	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	provider, err := app.Provider()
	if err != nil {
		return err
	}

	signature := app.Signature
	if len(signature.Inputs) == 0 {
		signature = models.DeriveSignature(app.Pipeline)
	}

	session, err := inference.Open(app.ModelPath, signature, provider)
	if err != nil {
		return err
	}

	d, err := detector.New(app.Pipeline, session, detector.WithLogger(logger))
	if err != nil {
		session.Close() //nolint:errcheck
		return err
	}
	defer d.Close() //nolint:errcheck

	pts, err := points.ReadBinFile(cloudPath, app.Pipeline.Voxel.NumFeatures)
	if err != nil {
		return err
	}

	detections, err := d.Detect(pts)
	if err != nil {
		return err
	}

	logger.Info("detection complete",
		zap.String("cloud", cloudPath),
		zap.Int("points", len(pts)),
		zap.Int("detections", len(detections)),
	)
	for i, det := range detections {
		fmt.Printf("%3d %-12s score=%.3f %s\n", i, det.Label, det.Score, det.Box.String())
	}
	return nil
}

// assembleConfig loads the file configuration, or builds one from a preset
// when no file is given.
func assembleConfig(configPath, preset string) (*config.AppConfig, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	if preset == "" {
		return nil, fmt.Errorf("either -config or -preset is required")
	}
	pipeline, err := models.NewPipelineConfig(models.Preset(preset))
	if err != nil {
		return nil, err
	}
	return &config.AppConfig{
		Backend:  string(providers.CPUProviderBackend),
		Pipeline: pipeline,
	}, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
