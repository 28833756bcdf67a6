package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/fransk/guess/games"
)

// Options tunes a Server. Zero fields take the defaults.
type Options struct {
	// GuessInterval and GuessBurst control the rate limit applied to
	// the guesses of a single player.
	//
	// Defaults to one guess every 100ms with a burst of 10.
	GuessInterval time.Duration
	GuessBurst    int

	// SessionTimeout bounds how long one connection may play.
	//
	// Defaults to 60 minutes.
	SessionTimeout time.Duration

	// NewGame creates the game for each connection.
	// Defaults to a guessing session with a random secret.
	NewGame NewGame
}

// Server hosts one game per websocket connection.
type Server struct {
	guessInterval  time.Duration
	guessBurst     int
	sessionTimeout time.Duration
	newGame        NewGame

	// writeTimeout bounds every message written to a player.
	writeTimeout time.Duration

	// readLimit is the largest guess message accepted, in bytes.
	readLimit int64

	logger *zap.Logger

	// logf controls where connection errors are sent.
	// Defaults to the sugared logger's Infof.
	logf func(f string, v ...interface{})

	// serveMux routes the various endpoints to the appropriate handler.
	serveMux http.ServeMux

	playersMu sync.Mutex
	players   map[*player]struct{}

	// handlers tracks running play handlers so Serve can wait for them.
	handlers sync.WaitGroup
}

// player is one connected websocket.
type player struct {
	id     string
	remote string
}

// New constructs a Server, filling unset options with the defaults.
func New(logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gs := &Server{
		guessInterval:  100 * time.Millisecond,
		guessBurst:     10,
		sessionTimeout: 60 * time.Minute,
		newGame:        newGuessingGame,
		writeTimeout:   5 * time.Second,
		readLimit:      8192,
		logger:         logger,
		logf:           logger.Sugar().Infof,
		players:        make(map[*player]struct{}),
	}
	if opts.GuessInterval > 0 {
		gs.guessInterval = opts.GuessInterval
	}
	if opts.GuessBurst > 0 {
		gs.guessBurst = opts.GuessBurst
	}
	if opts.SessionTimeout > 0 {
		gs.sessionTimeout = opts.SessionTimeout
	}
	if opts.NewGame != nil {
		gs.newGame = opts.NewGame
	}
	gs.serveMux.HandleFunc("/play", gs.playHandler)

	return gs
}

func (gs *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gs.serveMux.ServeHTTP(w, r)
}

// Active returns the number of connected players.
func (gs *Server) Active() int {
	gs.playersMu.Lock()
	defer gs.playersMu.Unlock()
	return len(gs.players)
}

// ListenAndServe listens on addr and serves until ctx is done.
func (gs *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return gs.Serve(ctx, l)
}

// Serve accepts connections on l until ctx is done, then shuts down and
// waits for every game to end.
func (gs *Server) Serve(ctx context.Context, l net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)
	hs := &http.Server{
		Handler:           gs,
		ReadHeaderTimeout: 10 * time.Second,
		// hijacked websocket connections outlive Shutdown; cancelling
		// their base context is what stops them.
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	gs.logger.Info("serving", zap.Stringer("addr", l.Addr()))
	g.Go(func() error {
		err := hs.Serve(l)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	gs.handlers.Wait()
	gs.logger.Info("stopped serving")
	return err
}

// playHandler accepts the WebSocket connection and plays one game on it.
func (gs *Server) playHandler(w http.ResponseWriter, r *http.Request) {
	gs.handlers.Add(1)
	defer gs.handlers.Done()

	err := gs.play(w, r)
	if errors.Is(err, context.Canceled) {
		return
	}
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(err) == websocket.StatusGoingAway {
		return
	}
	if err != nil {
		gs.logf("game with %v ended: %v", r.RemoteAddr, err)
		return
	}
}

// play greets the player then answers guesses until the connection drops,
// the session times out or a guess cannot be parsed.
func (gs *Server) play(w http.ResponseWriter, r *http.Request) error {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		return err
	}
	defer c.CloseNow()
	c.SetReadLimit(gs.readLimit)

	p := &player{id: uuid.NewString(), remote: r.RemoteAddr}
	gs.addPlayer(p)
	defer gs.deletePlayer(p)

	logger := gs.logger.With(zap.String("player", p.id), zap.String("remote", p.remote))
	logger.Info("player connected")
	defer logger.Info("player disconnected")

	ctx, cancel := context.WithTimeout(r.Context(), gs.sessionTimeout)
	defer cancel()

	game := gs.newGame(logger)
	for _, line := range game.Intro() {
		if err := writeTimeout(ctx, gs.writeTimeout, c, line); err != nil {
			return err
		}
	}

	l := rate.NewLimiter(rate.Every(gs.guessInterval), gs.guessBurst)
	for {
		if err := gs.guess(ctx, c, game, l); err != nil {
			return err
		}
	}
}

// guess reads one guess and writes back its outcome. A guess that is not
// a number closes the connection.
func (gs *Server) guess(ctx context.Context, c *websocket.Conn, game Game, l *rate.Limiter) error {
	err := l.Wait(ctx)
	if err != nil {
		return err
	}

	typ, msg, err := c.Read(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", games.ErrReadLine, err)
	}
	if typ != websocket.MessageText {
		c.Close(websocket.StatusUnsupportedData, games.ErrNotANumber.Error())
		return fmt.Errorf("%w: %v message", games.ErrNotANumber, typ)
	}

	reply, err := game.HandleMsg(msg)
	if err != nil {
		c.Close(websocket.StatusUnsupportedData, games.ErrNotANumber.Error())
		return err
	}
	return writeTimeout(ctx, gs.writeTimeout, c, reply)
}

// addPlayer registers a player.
func (gs *Server) addPlayer(p *player) {
	gs.playersMu.Lock()
	gs.players[p] = struct{}{}
	gs.playersMu.Unlock()
}

// deletePlayer deletes the given player.
func (gs *Server) deletePlayer(p *player) {
	gs.playersMu.Lock()
	delete(gs.players, p)
	gs.playersMu.Unlock()
}

func writeTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, msg string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return c.Write(ctx, websocket.MessageText, []byte(msg))
}
