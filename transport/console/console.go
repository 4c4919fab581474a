package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/rocketscienceinc/mechanical-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/mechanical-tictactoe/internal/entity"
	"github.com/rocketscienceinc/mechanical-tictactoe/internal/usecase"
)

const (
	commandQuit    = "q"
	commandRestart = "r"
)

type gameManager interface {
	Open(ctx context.Context, renderer usecase.ListenerFactory) *usecase.Session
	Close(id string)
}

// Console plays one session in a terminal.
type Console struct {
	logger *slog.Logger
	games  gameManager
	in     io.Reader

	outMu sync.Mutex
	out   io.Writer

	changed chan struct{}
}

func New(logger *slog.Logger, games gameManager, in io.Reader, out io.Writer) *Console {
	return &Console{
		logger:  logger.With("component", "console"),
		games:   games,
		in:      in,
		out:     out,
		changed: make(chan struct{}, 1),
	}
}

// Run plays until the user quits, the input ends or ctx is canceled.
func (that *Console) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	session := that.games.Open(ctx, func(string) usecase.Listener {
		return &renderer{console: that}
	})
	defer that.games.Close(session.ID())

	players := session.Snapshot().Players

	that.printf("Welcome to Mechanical Tic-Tac-Toe Simulation!\n")
	that.printf("You are '%s', the AI is '%s'. Enter 0-8 to make a move, r to restart, q to quit.\n",
		players.Human, players.Opponent)

	session.Start(ctx)

	lines := that.readLines(ctx)

	for {
		game, err := that.waitForHuman(ctx, session)
		if err != nil {
			return err
		}

		that.printf("%s\n", game.Board)

		if game.IsFinished() {
			that.printf("%s\n", resultMessage(game))
			that.printf("Play again? (r = restart, q = quit): ")
		} else {
			that.printf("Your turn (%s). Choose a square (0-8): ", players.Human)
		}

		line, ok := that.nextLine(ctx, lines)
		if !ok {
			log.Info("input closed")
			return nil
		}

		switch line {
		case commandQuit:
			log.Info("user quit")
			return nil
		case commandRestart:
			session.Restart(ctx)
			continue
		}

		if game.IsFinished() {
			continue
		}

		if quit := that.play(ctx, session, lines, line); quit {
			log.Info("user quit")
			return nil
		}
	}
}

// play re-prompts until a square is taken or a command is entered. It reports whether the user quit.
func (that *Console) play(ctx context.Context, session *usecase.Session, lines <-chan string, line string) bool {
	log := that.logger.With("method", "play")
	human := session.Snapshot().Players.Human

	for {
		cell, err := strconv.Atoi(line)

		switch {
		case err != nil:
			that.printf("Invalid input. Please enter a number.\n")
		case !entity.IsValidCell(cell):
			that.printf("Invalid choice. Please enter a number between 0 and 8.\n")
		default:
			err = session.ApplyHumanMove(ctx, cell)
			if err == nil {
				return false
			}

			log.Debug("move rejected", "cell", cell, "error", err)

			if !errors.Is(err, apperror.ErrCellOccupied) {
				return false
			}

			that.printf("That space is already taken. Choose another.\n")
		}

		that.printf("Your turn (%s). Choose a square (0-8): ", human)

		var ok bool
		if line, ok = that.nextLine(ctx, lines); !ok {
			return true
		}

		switch line {
		case commandQuit:
			return true
		case commandRestart:
			session.Restart(ctx)
			return false
		}
	}
}

// waitForHuman blocks while the opponent is thinking.
func (that *Console) waitForHuman(ctx context.Context, session *usecase.Session) (entity.Game, error) {
	for {
		game := session.Snapshot()
		if game.Phase() != entity.PhaseOpponentTurn {
			return game, nil
		}

		select {
		case <-ctx.Done():
			return entity.Game{}, fmt.Errorf("console stopped: %w", ctx.Err())
		case <-that.changed:
		}
	}
}

func (that *Console) readLines(ctx context.Context) <-chan string {
	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(that.in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	return lines
}

func (that *Console) nextLine(ctx context.Context, lines <-chan string) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-lines:
		return line, ok
	}
}

func (that *Console) printf(format string, args ...any) {
	that.outMu.Lock()
	defer that.outMu.Unlock()

	if _, err := fmt.Fprintf(that.out, format, args...); err != nil {
		that.logger.Error("failed to write output", "error", err)
	}
}

func (that *Console) notify() {
	select {
	case that.changed <- struct{}{}:
	default:
	}
}

func resultMessage(game entity.Game) string {
	players := game.Players

	switch {
	case game.Result.Draw:
		return "It's a draw!"
	case game.Result.Winner == players.Human:
		return fmt.Sprintf("Congratulations! You (%s) have won!", players.Human)
	default:
		return fmt.Sprintf("AI (%s) has won!", game.Result.Winner)
	}
}
