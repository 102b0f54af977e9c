package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/curve-digitizer-mcp/internal/config"
	"github.com/ironsheep/curve-digitizer-mcp/internal/ocr"
	"github.com/ironsheep/curve-digitizer-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("curve-digitizer-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			if info := ocr.GetInfo(); info.Available {
				fmt.Printf("  Tesseract:  %s\n", info.Version)
			} else {
				fmt.Printf("  Tesseract:  unavailable (%s)\n", info.Error)
			}
			return
		case "--help", "-h", "help":
			fmt.Println("curve-digitizer-mcp - MCP server for digitizing single-curve charts")
			fmt.Println()
			fmt.Println("Usage: curve-digitizer-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  CURVE_MCP_LOG_LEVEL=debug        Enable debug logging")
			fmt.Println("  CURVE_MCP_SMOOTH_WINDOW=11       Default moving-average window")
			fmt.Println("  CURVE_MCP_AUTOCROP_PADDING=6     Pixels added around the auto-crop box")
			fmt.Println("  CURVE_MCP_BACKGROUND_LUMA=245    Luma at or above which a pixel is background")
			fmt.Println("  CURVE_MCP_OCR_LANGUAGE=eng       Tesseract language for axis labels")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg := config.Load()
	if cfg.Debug() {
		log.Printf("Curve Digitizer MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("defaults: window=%d padding=%d background=%g ocr=%s",
			cfg.SmoothWindow, cfg.AutoCropPadding, cfg.BackgroundLuma, cfg.OCRLanguage)
	}

	server.Version = Version
	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
