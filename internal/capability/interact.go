package capability

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"shout/internal/errors"
	"shout/internal/session"
	"shout/util"
)

// Interact drives the client side of the exchange: lines typed on the
// input source go out as messages, replies from the server are printed
// to the output.
//
// Two cooperating goroutines multiplex console and socket: one pumps
// input lines into the session, the other pumps received frames to
// the output. They are joined by an errgroup; whichever finishes
// first closes the session, which unblocks the other.
type Interact struct {
	Input  io.Reader
	Output io.Writer
	Prompt string // printed before reading input and after each reply; "" = none
	Logger *util.Logger
}

// Handle runs the interactive loop until the user types the sentinel,
// the input reaches EOF, or the session breaks.
func (i *Interact) Handle(ctx context.Context, sess *session.Session) error {
	g, ctx := errgroup.WithContext(ctx)

	stop := context.AfterFunc(ctx, func() { sess.Close() })
	defer stop()

	g.Go(func() error { return i.sendLoop(sess) })
	g.Go(func() error { return i.receiveLoop(sess) })

	err := g.Wait()
	if err != nil && !errors.IsClosed(err) {
		return err
	}
	return nil
}

// sendLoop reads input lines and transmits them. A line that equals
// the sentinel in any letter case sends the literal lowercase sentinel
// and stops sending; so does EOF on the input. The session itself is
// closed by receiveLoop once the server hangs up, so replies still in
// flight are drained rather than dropped.
func (i *Interact) sendLoop(sess *session.Session) error {
	i.prompt()

	scanner := bufio.NewScanner(i.Input)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if strings.EqualFold(line, Sentinel) {
			// Tell the server we are leaving before hanging up.
			if err := sess.Send(Sentinel); err != nil && !errors.IsClosed(err) {
				return err
			}
			return nil
		}

		if err := sess.Send(line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	// Input EOF (piped stdin ran dry or console closed): leave cleanly.
	if err := sess.Send(Sentinel); err != nil && !errors.IsClosed(err) {
		return err
	}
	return nil
}

// receiveLoop prints every reply followed by a fresh prompt. It
// closes the session on the way out so a pending or later Send fails
// fast instead of writing into a dead connection.
func (i *Interact) receiveLoop(sess *session.Session) error {
	defer sess.Close()

	for {
		msg, err := sess.Receive()
		if err != nil {
			if errors.IsClosed(err) || sess.Closed() {
				return nil
			}
			i.Logger.Error("communication failure: %v", err)
			return err
		}

		fmt.Fprintln(i.Output, msg)
		i.prompt()
	}
}

func (i *Interact) prompt() {
	if i.Prompt != "" {
		fmt.Fprint(i.Output, i.Prompt)
	}
}
