// Research agent CLI
// Headless режим: читает запросы из stdin, печатает ответы в stdout.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/deepshard/hyphae/internal/research"
	"github.com/deepshard/hyphae/pkg/config"
	"github.com/deepshard/hyphae/pkg/runtime"
	"github.com/deepshard/hyphae/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to config file")
	question := flag.String("q", "", "single question mode: ask and exit")
	flag.Parse()

	if err := utils.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logger: %v\n", err)
	}
	defer utils.Close()

	utils.Info("Application started", "mode", "cli")

	cfg, err := config.Load(*configPath)
	if err != nil {
		utils.Error("Failed to load config", "error", err, "path", *configPath)
		return err
	}
	utils.Info("Config loaded", "path", *configPath, "default_model", cfg.Models.DefaultChat)

	driver, err := research.NewDriver(cfg, nil)
	if err != nil {
		utils.Error("Driver creation failed", "error", err)
		return fmt.Errorf("driver creation failed: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	defer driver.Disconnect(context.Background())

	// Режим одного вопроса
	if *question != "" {
		return askOnce(ctx, driver, *question)
	}

	// Интерактивный режим
	fmt.Println("Research agent ready. Type your question (Ctrl+D to exit):")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := askOnce(ctx, driver, line); err != nil {
			if ctx.Err() != nil {
				return nil // Прервано сигналом
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return scanner.Err()
}

func askOnce(ctx context.Context, driver *runtime.Driver[*research.State], question string) error {
	answer, err := driver.Run(ctx, question)
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	for _, f := range answer.Files {
		fmt.Printf("Attachment: %s (%s)\n", f.Name, f.URL)
	}
	return nil
}
