package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/frightfate/frightfate/clients/gameapi"
	"github.com/frightfate/frightfate/internal/config"
	"github.com/frightfate/frightfate/internal/game/scenario"
	"github.com/frightfate/frightfate/internal/game/session"
	"github.com/frightfate/frightfate/internal/game/submit"
	"github.com/frightfate/frightfate/internal/game/timelimit"
	"github.com/frightfate/frightfate/internal/game/timer"
	"github.com/frightfate/frightfate/internal/lobby"
	"github.com/frightfate/frightfate/internal/models"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}

	configPath := flag.String("config", "config.yaml", "path to the yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logging. Gameplay goes to stdout, logs to stderr.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	api := gameapi.NewGameAPIClientWithTimeout(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second)
	loader := scenario.NewLoader(api)
	pipeline := submit.NewPipeline(api, submit.Config{
		Penalty:          cfg.Rush.Penalty,
		EliminationFloor: cfg.Rush.EliminationFloor,
		DeathProbability: cfg.Rush.DeathProbability,
	}, nil)

	ui := newTerminalUI(os.Stdout)
	orch := session.New(api, loader, pipeline, ui, session.Options{
		TotalQuestions: cfg.Game.TotalQuestions,
		Theme:          models.Theme(cfg.Game.Theme),
		Limits: timelimit.Config{
			MinSeconds:     cfg.TimeLimit.MinSeconds,
			MaxSeconds:     cfg.TimeLimit.MaxSeconds,
			WordsPerSecond: cfg.TimeLimit.WordsPerSecond,
		},
		TimerConfig: timer.Config{
			WarningSeconds:  cfg.Timer.WarningSeconds,
			CriticalSeconds: cfg.Timer.CriticalSeconds,
		},
	})
	defer orch.Shutdown()

	log.Info().
		Str("api_url", cfg.API.BaseURL).
		Msg("frightfate client starting")

	if err := run(context.Background(), cfg, orch, ui); err != nil {
		log.Fatal().Err(err).Msg("game client failed")
	}
}

func run(ctx context.Context, cfg *config.Config, orch *session.Orchestrator, ui *terminalUI) error {
	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 64*1024), 64*1024)

	ui.banner()

	playerName := prompt(in, "Enter your name: ")
	if playerName == "" {
		return errors.New("a name is required to play")
	}

	if err := enterSession(ctx, in, orch, playerName); err != nil {
		return err
	}

	// Keep the lobby socket up for the whole session so late join
	// announcements still show between replays.
	watcher, err := lobby.Dial(ctx, cfg.API.BaseURL, orch.Session().Code, ui, lobby.Config{})
	if err != nil {
		ui.printf("Could not open the live lobby feed: %v\n", err)
	} else {
		defer watcher.Close()
	}

	for {
		if err := runLobby(ctx, in, orch, watcher, ui); err != nil {
			return err
		}

		runQuestions(ctx, in, orch)

		ui.printf("\nPlay again with the same group? (y/n) ")
		if !in.Scan() || !strings.HasPrefix(strings.ToLower(strings.TrimSpace(in.Text())), "y") {
			ui.printf("Until next time... if there is one.\n")
			return nil
		}
		if err := orch.PlayAgain(); err != nil {
			return err
		}
	}
}

// enterSession walks the home screen: create a new session or join by code.
func enterSession(ctx context.Context, in *bufio.Scanner, orch *session.Orchestrator, playerName string) error {
	for {
		choice := prompt(in, "\n[1] Create a session\n[2] Join a session\n> ")
		switch choice {
		case "1":
			theme := chooseTheme(in, orch.Session().Theme)
			if err := orch.CreateSession(ctx, theme, playerName); err != nil {
				fmt.Printf("Could not create the session: %v\n", err)
				continue
			}
			fmt.Printf("\nSession code: %s. Share it with your victims.\n", orch.Session().Code)
			return nil
		case "2":
			code := prompt(in, "Session code: ")
			if err := orch.JoinSession(ctx, code, playerName); err != nil {
				fmt.Printf("Could not join %s: %v\n", code, err)
				continue
			}
			return nil
		default:
			fmt.Println("Pick 1 or 2.")
		}
	}
}

func chooseTheme(in *bufio.Scanner, fallback models.Theme) models.Theme {
	fmt.Println("\nChoose your nightmare:")
	for i, theme := range models.Themes {
		fmt.Printf("  [%d] %s\n", i+1, theme.DisplayName())
	}
	choice := prompt(in, "> ")
	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(models.Themes) {
		return models.Themes[n-1]
	}
	return fallback
}

// runLobby blocks until the game starts: the host presses enter, a guest
// waits for the broadcast (or forces a solo start).
func runLobby(ctx context.Context, in *bufio.Scanner, orch *session.Orchestrator, watcher *lobby.Watcher, ui *terminalUI) error {
	sess := orch.Session()
	if sess.IsHost {
		prompt(in, "\nPress enter to begin the game...")
		if watcher != nil {
			if err := watcher.AnnounceStart(sess.Theme); err != nil {
				log.Warn().Err(err).Msg("could not announce game start to the lobby")
			}
		}
		return orch.Start(ctx)
	}

	if watcher != nil {
		fmt.Println("\nWaiting for the host to begin...")
		ui.waitStart()
	} else {
		prompt(in, "\nPress enter to begin the game...")
	}
	return orch.Start(ctx)
}

// runQuestions reads answers until the run reaches a terminal screen. The
// orchestrator's countdown may end the run while we are blocked on stdin;
// the screen check after every read picks that up.
func runQuestions(ctx context.Context, in *bufio.Scanner, orch *session.Orchestrator) {
	for orch.Screen() == session.ScreenInProgress {
		fmt.Print("\nYour move > ")
		if !in.Scan() {
			orch.Shutdown()
			return
		}
		text := in.Text()
		orch.UpdateDraft(text)

		if err := orch.SubmitAnswer(ctx, text); err != nil {
			if errors.Is(err, session.ErrWrongScreen) {
				// The clock beat us while we were typing.
				return
			}
			log.Warn().Err(err).Msg("submission failed")
		}
	}
}

func prompt(in *bufio.Scanner, text string) string {
	fmt.Print(text)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}
