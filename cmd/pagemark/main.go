package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kpauljoseph/pagemark/internal/config"
	"github.com/kpauljoseph/pagemark/internal/scanner"
	"github.com/kpauljoseph/pagemark/internal/script"
	"github.com/kpauljoseph/pagemark/internal/session"
	"github.com/kpauljoseph/pagemark/internal/workspace"
	"github.com/kpauljoseph/pagemark/pkg/logger"
	"github.com/kpauljoseph/pagemark/pkg/version"
)

func main() {
	configPath := flag.String("config", "pagemark.yaml", "path to config file")
	scriptPath := flag.String("script", "", "YAML annotation script applied to every document")
	outputDir := flag.String("output-dir", "", "directory for annotated output (overrides config)")
	verbose := flag.Bool("verbose", false, "enable verbose logging")
	debug := flag.Bool("debug", false, "enable debug mode with trace logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <document or directory>...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetDetailedVersionInfo())
		return
	}

	log := logger.New(logger.WithPrefix("[pagemark] "))

	if err := config.LoadEnv(); err != nil {
		log.Warn("Loading .env: %v", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Error loading config: %v", err)
	}

	log.SetLevel(logger.ParseLevel(cfg.LogLevel))
	log.SetVerbose(*verbose)
	if *debug {
		log.SetLevel(logger.LevelTrace)
	}

	if *outputDir != "" {
		cfg.Export.OutputDir = *outputDir
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var commands []session.Command
	if *scriptPath != "" {
		s, err := script.Load(*scriptPath)
		if err != nil {
			log.Fatal("Error loading script: %v", err)
		}
		commands = s.Commands
		log.Debug("Loaded %d commands from %s", len(commands), *scriptPath)
	}

	if err := os.MkdirAll(cfg.Export.OutputDir, 0755); err != nil {
		log.Fatal("Error creating output directory: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received interrupt signal, stopping...")
		cancel()
	}()

	paths, err := collect(ctx, scanner.New(log), flag.Args())
	if err != nil {
		log.Fatal("Error finding documents: %v", err)
	}
	log.Info("Found %d documents to process", len(paths))

	editor, err := session.NewEditor(cfg.EditorOptions(), log)
	if err != nil {
		log.Fatal("Error initializing editor: %v", err)
	}
	ws := workspace.New(editor, log)

	report := &Report{StartTime: time.Now()}
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		out, err := annotate(ctx, ws, path, commands, cfg.Export.OutputDir, report, log)
		if err != nil {
			report.Failed++
			log.Error("Error processing %s: %v", path, err)
			continue
		}
		report.Exported++
		log.Info("Wrote %s", out)
	}

	ws.Shutdown()
	report.EndTime = time.Now()
	report.Print(log)
	if report.Failed > 0 {
		os.Exit(1)
	}
}

// collect expands directories into the documents beneath them.
func collect(ctx context.Context, s *scanner.DirectoryScanner, args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		docs, err := s.FindDocuments(ctx, arg)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			paths = append(paths, doc.AbsolutePath)
		}
	}
	return paths, nil
}

// annotate opens one document, replays the script and exports the result.
func annotate(ctx context.Context, ws *workspace.Workspace, path string, commands []session.Command, outputDir string, report *Report, log *logger.Logger) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	info, err := ws.Open(filepath.Base(path), data)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := ws.Close(info.ID); err != nil {
			log.Warn("Closing %s: %v", path, err)
		}
	}()
	report.Pages += info.TotalPages

	for i, cmd := range commands {
		res, err := ws.Dispatch(cmd)
		if err != nil {
			report.Declined++
			log.Warn("%s: command %d (%s) declined: %v", info.Name, i+1, cmd.Name(), err)
			continue
		}
		if res.Highlight != nil {
			report.Highlights++
		}
	}

	out, name, err := ws.Export(ctx, info.ID)
	if err != nil {
		return "", err
	}
	target := filepath.Join(outputDir, name)
	if err := os.WriteFile(target, out, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	return target, nil
}
