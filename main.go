// Command duel is a terminal client for the two-player duel card game.
//
// It talks to a duel server over its room HTTP API and a per-room
// websocket channel:
//
//	duel create             # mint a room and take the first seat
//	duel join <room-id>     # take a seat in an existing room
//	duel rejoin             # re-claim the seat saved from a previous run
//	duel watch <room-id>    # poll a room's snapshot without taking a seat
//	duel mcp                # expose the client as MCP stdio tools
//
// Flags select the server, enable debug logging, and optionally record
// every inbound frame to a transcript file for the analyze and validate
// tools.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"

	"github.com/summerquest/duel-client/api"
	"github.com/summerquest/duel-client/client"
	"github.com/summerquest/duel-client/game/session"
	"github.com/summerquest/duel-client/game/state"
	"github.com/summerquest/duel-client/game/view"
	"github.com/summerquest/duel-client/transport/mcp"
)

const (
	Version = "1.0.0"
	AppName = "duel"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	if err := rootCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

// rootCommand builds the CLI tree. Flags live on the root so every
// subcommand shares them.
func rootCommand() *cli.Command {
	return &cli.Command{
		Name:    AppName,
		Usage:   "terminal client for the duel card game",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "base URL of the duel server",
				Value:   "http://localhost:8000",
				Sources: cli.EnvVars("DUEL_SERVER"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log dropped frames and channel churn",
			},
			&cli.StringFlag{
				Name:  "transcript",
				Usage: "append every inbound frame to this file as JSON lines",
			},
			&cli.BoolFlag{
				Name:  "no-save",
				Usage: "do not persist the seat credential for rejoin",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "create a room, take the first seat, and play",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					c, cleanup, err := newClient(cmd)
					if err != nil {
						return err
					}
					defer cleanup()

					roomID, err := c.CreateRoom(ctx)
					if err != nil {
						return err
					}
					fmt.Printf("Room ID: %s (share it with your opponent)\n", roomID)
					return runPrompt(ctx, c, os.Stdin)
				},
			},
			{
				Name:      "join",
				Usage:     "take a seat in an existing room and play",
				ArgsUsage: "<room-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					roomID := cmd.Args().First()
					if roomID == "" {
						return fmt.Errorf("usage: %s join <room-id>", AppName)
					}

					c, cleanup, err := newClient(cmd)
					if err != nil {
						return err
					}
					defer cleanup()

					if err := c.JoinRoom(ctx, roomID); err != nil {
						return err
					}
					return runPrompt(ctx, c, os.Stdin)
				},
			},
			{
				Name:  "rejoin",
				Usage: "re-claim the seat saved from a previous run",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					persist, err := session.NewFilePersistence("")
					if err != nil {
						return err
					}
					rec, err := persist.Load()
					if err != nil {
						return fmt.Errorf("no seat to rejoin: %w", err)
					}

					// The saved server wins over the flag default so a plain
					// "duel rejoin" goes back where the seat lives.
					if !cmd.IsSet("server") && rec.ServerURL != "" {
						if err := cmd.Set("server", rec.ServerURL); err != nil {
							return err
						}
					}

					c, cleanup, err := newClient(cmd)
					if err != nil {
						return err
					}
					defer cleanup()

					if err := c.Rejoin(ctx, rec.RoomID, rec.PlayerKey); err != nil {
						return err
					}
					return runPrompt(ctx, c, os.Stdin)
				},
			},
			{
				Name:      "watch",
				Usage:     "poll a room's snapshot without taking a seat",
				ArgsUsage: "<room-id>",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "polling interval",
						Value: 2 * time.Second,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					roomID := cmd.Args().First()
					if roomID == "" {
						return fmt.Errorf("usage: %s watch <room-id>", AppName)
					}
					return watchRoom(ctx, api.NewClient(cmd.String("server")), roomID, cmd.Duration("interval"), os.Stdout)
				},
			},
			{
				Name:  "mcp",
				Usage: "run an MCP stdio server exposing the client as tools",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					c, cleanup, err := newClient(cmd)
					if err != nil {
						return err
					}
					defer cleanup()

					log.Printf("MCP stdio server ready (server: %s)", cmd.String("server"))
					return server.ServeStdio(mcp.NewServer(c).GetMCPServer())
				},
			},
		},
	}
}

// newClient builds a client from the shared flags. The returned cleanup
// closes the channel and any open transcript file.
func newClient(cmd *cli.Command) (*client.Client, func(), error) {
	if cmd.Bool("debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	cfg := client.Config{
		ServerURL: cmd.String("server"),
		Out:       os.Stdout,
		Debug:     cmd.Bool("debug"),
	}

	var transcript *os.File
	if path := cmd.String("transcript"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open transcript: %w", err)
		}
		transcript = f
		cfg.Transcript = f
	}

	if !cmd.Bool("no-save") {
		persist, err := session.NewFilePersistence("")
		if err != nil {
			log.Printf("Warning: seat persistence unavailable: %v", err)
		} else {
			cfg.Persist = persist
		}
	}

	c, err := client.New(cfg)
	if err != nil {
		if transcript != nil {
			transcript.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		c.Close()
		if transcript != nil {
			transcript.Close()
		}
	}
	return c, cleanup, nil
}

// runPrompt reads player commands until quit or EOF. Frames arriving on
// the channel print asynchronously; the prompt only drives outbound
// actions.
func runPrompt(ctx context.Context, c *client.Client, in io.Reader) error {
	fmt.Println(promptHelp)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		verb, arg := parseInput(scanner.Text())

		switch verb {
		case "":
			continue
		case "start":
			c.StartGame(ctx)
		case "play":
			if arg == "" {
				fmt.Println("usage: play <card>")
				continue
			}
			c.PlayCard(arg)
		case "pass":
			c.PassTurn()
		case "state":
			c.FetchState(ctx)
		case "help":
			fmt.Println(promptHelp)
		case "quit", "exit":
			return nil
		default:
			fmt.Printf("unknown command %q (try help)\n", verb)
		}
	}
	return scanner.Err()
}

// watchRoom polls the room's snapshot and reprints the board whenever it
// changes. A watcher holds no player key, so nothing renders as playable.
func watchRoom(ctx context.Context, ac *api.Client, roomID string, interval time.Duration, out io.Writer) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *state.GameState
	for {
		snap, err := ac.FetchState(ctx, roomID, "")
		if err != nil {
			return err
		}
		if last == nil || !reflect.DeepEqual(snap, last) {
			view.Fprint(out, view.BuildBoard(snap, false))
			last = snap
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

const promptHelp = `commands:
  start        ask the server to deal
  play <card>  play a card from your hand
  pass         pass the turn
  state        fetch the current snapshot
  quit         leave`

// parseInput splits one prompt line into a verb and its argument.
func parseInput(line string) (verb, arg string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ""
	}
	verb = strings.ToLower(fields[0])
	arg = strings.Join(fields[1:], " ")
	return verb, arg
}
