package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/vision-tools-mcp/internal/config"
	"github.com/ironsheep/vision-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	var configPath string
	printConfig := false

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version", "-v", "version":
			fmt.Printf("vision-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		case "render":
			if err := runRender(args[i+1:]); err != nil {
				log.Fatalf("render: %v", err)
			}
			return
		case "--config", "-c":
			if i+1 >= len(args) {
				log.Fatalf("%s requires a path", args[i])
			}
			i++
			configPath = args[i]
		case "--print-config":
			printConfig = true
		default:
			fmt.Fprintf(os.Stderr, "unknown option: %s\n\n", args[i])
			printUsage()
			os.Exit(2)
		}
	}

	cfg, err := config.FromEnv(configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	if printConfig {
		data, err := cfg.Marshal()
		if err != nil {
			log.Fatalf("Config error: %v", err)
		}
		os.Stdout.Write(data)
		return
	}

	if cfg.Debug() {
		log.Printf("Vision MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	server.Version = Version
	srv := server.NewWithConfig(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printUsage() {
	fmt.Println("vision-tools-mcp - MCP server for image filtering and detection")
	fmt.Println()
	fmt.Println("Usage: vision-tools-mcp [options]")
	fmt.Println("       vision-tools-mcp render -op <operation> -in <image> [-out <png>]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config, -c <path>    Load tuning parameters from a YAML file")
	fmt.Println("  --print-config         Print the effective configuration and exit")
	fmt.Println("  --version, -v          Print version information")
	fmt.Println("  --help, -h             Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=<path>      Config file used when --config is absent\n", config.EnvConfigPath)
	fmt.Printf("  %s=debug    Enable debug logging\n", config.EnvLogLevel)
	fmt.Println()
	fmt.Println("Without a subcommand the server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Register the binary as a stdio server in your MCP client configuration.")
}
