// Research agent TUI
// Интерактивный интерфейс на Bubble Tea поверх событий рантайма.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/deepshard/hyphae/internal/research"
	"github.com/deepshard/hyphae/pkg/config"
	"github.com/deepshard/hyphae/pkg/events"
	"github.com/deepshard/hyphae/pkg/tui"
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
	theme := flag.String("theme", "default", "color scheme: default, dark, light")
	flag.Parse()

	if err := utils.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logger: %v\n", err)
	}
	defer utils.Close()

	utils.Info("Application started", "mode", "tui")

	cfg, err := config.Load(*configPath)
	if err != nil {
		utils.Error("Failed to load config", "error", err, "path", *configPath)
		return err
	}

	// Port & Adapter: рантайм пишет в emitter, TUI читает из subscriber
	emitter := events.NewChanEmitter(100)
	defer emitter.Close()

	driver, err := research.NewDriver(cfg, emitter)
	if err != nil {
		utils.Error("Driver creation failed", "error", err)
		return fmt.Errorf("driver creation failed: %w", err)
	}
	defer driver.Disconnect(context.Background())

	chat := tui.NewChatTui(emitter.Subscribe(), tui.ChatUIConfig{
		Colors:        tui.GetColorScheme(*theme),
		Title:         "Research Agent",
		ModelName:     cfg.Models.DefaultChat,
		ShowTimestamp: true,
		WrapText:      true,
	})

	// cancel раньше emitter.Close() (LIFO): зависший на полном буфере
	// Emit отпускается контекстом до закрытия канала
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	chat.OnInput(func(input string) {
		// Ошибки уходят в TUI через EventError, здесь только лог
		if _, err := driver.Run(ctx, input); err != nil {
			utils.Error("run failed", "error", err)
		}
	})

	utils.Info("Starting TUI")
	if err := chat.Run(); err != nil {
		utils.Error("TUI error", "error", err)
		return err
	}

	utils.Info("Application exited normally")
	return nil
}
