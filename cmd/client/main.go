package main

import (
	"bufio"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kiryu-dev/chess-puzzle/internal/domain"
	"github.com/kiryu-dev/chess-puzzle/pkg/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var errQuit = errors.New("quit")

func main() {
	var addr, level, key string
	cmd := &cobra.Command{
		Use:           "puzzle-client",
		Short:         "Play target chess puzzles in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(addr, level, key)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "server address")
	cmd.Flags().StringVar(&level, "level", "", "level name, the first level when empty")
	cmd.Flags().StringVar(&key, "key", "", "player key sent in the "+domain.ClientUuidHeader+" header")
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(addr, level, key string) error {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/play"}
	header := http.Header{}
	if key != "" {
		header.Set(domain.ClientUuidHeader, key)
	}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		return errors.WithMessage(err, "dial")
	}
	defer func() {
		_ = conn.Close()
	}()
	c := newClient(conn)
	err = conn.WriteJSON(domain.Message{
		Type:    domain.LoadLevel,
		Payload: domain.LoadLevelPayload{Name: level},
	})
	if err != nil {
		return errors.WithMessage(err, "write json msg")
	}
	if err := c.handleActions(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}

type client struct {
	conn    *websocket.Conn
	scanner *bufio.Scanner
	state   domain.StateUpdatePayload
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn:    conn,
		scanner: bufio.NewScanner(os.Stdin),
	}
}

func (c *client) handleActions() error {
	for {
		msg := new(domain.Message)
		if err := c.conn.ReadJSON(msg); err != nil {
			return errors.WithMessage(err, "read json msg")
		}
		switch msg.Type {
		case domain.StateUpdate:
			v, err := utils.DecodePayload[domain.StateUpdatePayload](msg.Payload)
			if err != nil {
				return errors.WithMessage(err, "decode 'StateUpdatePayload'")
			}
			c.state = v
			c.printBoard()
			if v.State.Solved {
				continue
			}
			if err := c.requestAction(); err != nil {
				return err
			}
		case domain.PuzzleSolved:
			v, err := utils.DecodePayload[domain.PuzzleSolvedPayload](msg.Payload)
			if err != nil {
				return errors.WithMessage(err, "decode 'PuzzleSolvedPayload'")
			}
			fmt.Printf("Puzzle solved in %s!\n", v.Elapsed.Round(100*time.Millisecond))
			return nil
		case domain.TimeOver:
			fmt.Println("Time's up!")
			return nil
		}
	}
}

func (c *client) requestAction() error {
	for {
		fmt.Print("> ")
		msg, err := c.readAction()
		if err == nil {
			if err := c.conn.WriteJSON(msg); err != nil {
				return errors.WithMessage(err, "write json msg")
			}
			return nil
		}
		if errors.Is(err, errQuit) {
			return err
		}
		fmt.Println(err)
	}
}

func (c *client) readAction() (domain.Message, error) {
	if ok := c.scanner.Scan(); !ok {
		if err := c.scanner.Err(); err != nil {
			return domain.Message{}, err
		}
		return domain.Message{}, errQuit
	}
	fields := strings.Fields(c.scanner.Text())
	if len(fields) == 0 {
		return domain.Message{}, errors.New("commands: s <slot> | m <x> <y> | u | r | q")
	}
	switch fields[0] {
	case "s":
		if len(fields) != 2 {
			return domain.Message{}, errors.New("usage: s <slot>")
		}
		slot, err := strconv.Atoi(fields[1])
		if err != nil {
			return domain.Message{}, err
		}
		return domain.Message{Type: domain.SelectPiece, Payload: domain.SelectPiecePayload{Slot: slot - 1}}, nil
	case "m":
		if len(fields) != 3 {
			return domain.Message{}, errors.New("usage: m <x> <y>")
		}
		x, err := strconv.Atoi(fields[1])
		if err != nil {
			return domain.Message{}, err
		}
		y, err := strconv.Atoi(fields[2])
		if err != nil {
			return domain.Message{}, err
		}
		return domain.Message{Type: domain.MovePiece, Payload: domain.MovePiecePayload{Position: domain.Position{X: x, Y: y}}}, nil
	case "u":
		return domain.Message{Type: domain.UndoMove}, nil
	case "r":
		return domain.Message{Type: domain.ResetLevel}, nil
	case "q":
		return domain.Message{}, errQuit
	default:
		return domain.Message{}, errors.Errorf("unknown command '%s'", fields[0])
	}
}

func (c *client) printBoard() {
	state := c.state.State
	fmt.Printf("\033[H\033[J")
	fmt.Printf("Level: %s (time limit %s)\n\n", c.state.Level, c.state.TimeLimit)
	fmt.Print("  ")
	for x := 0; x < domain.BoardSize; x++ {
		fmt.Printf(" %d", x)
	}
	fmt.Println()
	for y := 0; y < domain.BoardSize; y++ {
		fmt.Printf(" %d", y)
		for x := 0; x < domain.BoardSize; x++ {
			pos := domain.Position{X: x, Y: y}
			r := state.Board.At(pos).Rune()
			switch {
			case pos == state.Position:
				r = '@'
			case domain.ContainsPosition(state.MovableTiles, pos) && r == domain.Target.Rune():
				r = '+'
			case domain.ContainsPosition(state.MovableTiles, pos):
				r = '*'
			}
			fmt.Printf(" %c", r)
		}
		fmt.Println()
	}
	fmt.Println()
	for i, slot := range state.Roster {
		mark := " "
		switch {
		case slot.Used:
			mark = "x"
		case state.Selected != nil && *state.Selected == i:
			mark = ">"
		}
		fmt.Printf("%s%d:%s ", mark, i+1, slot.Type)
	}
	fmt.Println()
	if state.CanUndo {
		fmt.Println("(u to undo)")
	}
}
