package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/roomchat/wire"
)

var rootCmd = &cobra.Command{
	Use:   "roomchat-client",
	Short: "Terminal client for the roomchat relay",
	RunE:  runClient,
}

var (
	flagServer   string
	flagName     string
	flagRoom     string
	flagDataPath string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagServer, "server", "ws://localhost:3000/ws", "websocket endpoint of the roomchat server")
	flags.StringVar(&flagName, "name", "", "display name (prompted when empty)")
	flags.StringVar(&flagRoom, "room", wire.DefaultRoom, "room to join on connect")
	flags.StringVar(&flagDataPath, "data-path", "", "optional directory to persist chat history via PebbleDB")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("execute client command")
	}
}

// termUI renders the façade's output as plain lines on stdout.
type termUI struct{}

func (termUI) Repaint(room string, msgs []wire.Message) {
	fmt.Printf("--- #%s ---\n", room)
	for _, m := range msgs {
		termUI{}.Message(m)
	}
}

func (termUI) Message(m wire.Message) {
	fmt.Printf("[%s] %s: %s\n", m.Time, m.User, m.Msg)
}

func (termUI) Typing(user string) {
	fmt.Printf("(%s is typing...)\n", user)
}

// ClearTyping is a no-op on a line terminal; the typing notice simply ages
// out instead of being erased.
func (termUI) ClearTyping() {}

func (termUI) Notice(text string) {
	fmt.Println("* " + text)
}

func (termUI) Problem(text string) {
	fmt.Println("! " + text)
}

func runClient(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdin := bufio.NewScanner(os.Stdin)
	name := flagName
	for name == "" {
		fmt.Print("Enter your name: ")
		if !stdin.Scan() {
			return fmt.Errorf("no name given")
		}
		name = strings.TrimSpace(stdin.Text())
	}

	var kv kvStore
	if flagDataPath != "" {
		s, err := openPebbleStore(flagDataPath)
		if err != nil {
			log.Warn().Err(err).Msg("[client] open store failed; running in memory only")
			kv = newMemStore()
		} else {
			kv = s
		}
	} else {
		kv = newMemStore()
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Warn().Err(err).Msg("[client] store close error")
		}
	}()

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, flagServer, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", flagServer, err)
	}
	defer ws.Close()

	store := NewHistoryStore(kv)
	send := func(env wire.Envelope) error { return ws.WriteJSON(env) }
	f := NewFacade(store, NewUndoBuffer(), termUI{}, send, flagRoom)

	// announce identity and initial room before the loops start
	f.emit(wire.EventSetUsername, name)
	f.JoinRoom(flagRoom)

	go func() {
		for {
			var env wire.Envelope
			if err := ws.ReadJSON(&env); err != nil {
				log.Debug().Err(err).Msg("[client] read")
				stop()
				return
			}
			f.Deliver(env)
		}
	}()

	go func() {
		defer stop()
		room := flagRoom // shadows the façade's active room for prompts
		for stdin.Scan() {
			line := strings.TrimSpace(stdin.Text())
			if line == "" {
				continue
			}
			if !strings.HasPrefix(line, "/") {
				f.enqueue(func(f *Facade) { f.Send(line) })
				continue
			}
			fields := strings.Fields(line)
			switch fields[0] {
			case "/join":
				if len(fields) < 2 {
					fmt.Println("usage: /join <room>")
					continue
				}
				room = fields[1]
				next := room
				f.enqueue(func(f *Facade) { f.JoinRoom(next) })
			case "/clear":
				fmt.Printf("Clear chat history for #%s? [y/N] ", room)
				if stdin.Scan() && strings.EqualFold(strings.TrimSpace(stdin.Text()), "y") {
					f.enqueue(func(f *Facade) { f.Clear() })
				}
			case "/undo":
				f.enqueue(func(f *Facade) { f.Undo() })
			case "/export":
				f.enqueue(func(f *Facade) { f.Export() })
			case "/import":
				if len(fields) < 2 {
					fmt.Println("usage: /import <file>")
					continue
				}
				path := fields[1]
				f.enqueue(func(f *Facade) { f.Import(path) })
			case "/quit":
				return
			default:
				fmt.Println("commands: /join /clear /undo /export /import /quit")
			}
		}
	}()

	f.Run(ctx)
	_ = ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	log.Info().Msg("[client] shutdown complete")
	return nil
}
