package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/andreasreinhardt/Linux-Fake-Background-Webcam/config"
	"github.com/andreasreinhardt/Linux-Fake-Background-Webcam/internal/pipeline"
	"github.com/andreasreinhardt/Linux-Fake-Background-Webcam/internal/segmentation"
	"github.com/andreasreinhardt/Linux-Fake-Background-Webcam/logger"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	fmt.Println("================================================================================")
	fmt.Println("🎥 Fake Background Webcam")
	fmt.Println("================================================================================")

	// Load configuration
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	log.Printf("✅ Configuration loaded from %s", *cfgPath)
	log.Printf("   Camera: %s %dx%d @ %d fps (%s)",
		cfg.Camera.Path, cfg.Camera.Width, cfg.Camera.Height, cfg.Camera.FPS, cfg.Camera.Codec)
	log.Printf("   Output: %s (watching %s)", cfg.Output.LoopbackPath, cfg.Output.WatchPath)
	log.Printf("   Images: %s (background %q)", cfg.Images.Folder, cfg.Images.BackgroundPattern)
	log.Printf("   On demand: %t, hologram: %t, tiling: %t",
		!cfg.Output.NoOnDemand, cfg.Effects.Hologram, cfg.Effects.TileBackground)

	// Frame statistics logger
	stats := logger.NewFrameLogger(cfg.Logging.AutoFlush, cfg.Logging.SampleRate)
	stats.SetEnabled(cfg.Logging.Buffered)
	defer stats.Stop()

	// Load the segmentation model
	log.Println("\n📦 Loading segmentation model...")
	seg, err := segmentation.NewONNX(segmentation.Options{
		ModelPath:   cfg.Model.Path,
		LibraryPath: cfg.Model.LibraryPath,
		InputWidth:  cfg.Model.InputWidth,
		InputHeight: cfg.Model.InputHeight,
		InputName:   cfg.Model.InputName,
		OutputName:  cfg.Model.OutputName,
		UseCUDA:     cfg.Model.UseCUDA,
	})
	if err != nil {
		log.Fatalf("❌ Failed to load segmentation model: %v", err)
	}
	defer seg.Close()
	log.Printf("✅ Segmentation model loaded: %s", cfg.Model.Path)

	// Open devices and wire the pipeline
	log.Println("\n🎬 Initializing pipeline...")
	driver, err := pipeline.New(cfg, seg, stats)
	if err != nil {
		log.Fatalf("❌ Failed to initialize pipeline: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGQUIT)
	go func() {
		for range quit {
			driver.RequestToggle()
		}
	}()

	log.Println("✅ Running...")
	log.Println("   Please CTRL-\\ to pause and CTRL-C to exit")

	if err := driver.Run(ctx); err != nil {
		log.Fatalf("❌ Pipeline failed: %v", err)
	}
	log.Println("👋 Shutting down")
}
