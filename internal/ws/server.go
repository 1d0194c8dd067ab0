package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"arcade-tournament/internal/stream"
	"arcade-tournament/internal/tournament"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	sendBuffer   = 64
	maxFrameSize = 4096
	writeWait    = 5 * time.Second
)

// Engine is the tournament surface driven by socket commands.
type Engine interface {
	SnapshotAt() (tournament.State, int64)
	Start() error
	Join(name string) (tournament.Participant, error)
	UpdateScore(participantID string, score int64) error
	Complete(participantID string, finalScore int64) error
	Disconnect(participantID string)
	NextGame() error
	Retry() error
	Events() *stream.Buffer
}

type Client struct {
	id            string
	conn          *websocket.Conn
	send          chan []byte
	participantID string
	// after is the last event id covered by the client's first snapshot.
	after int64
}

type Server struct {
	engine   Engine
	upgrader websocket.Upgrader

	mu            sync.Mutex
	clients       map[*Client]struct{}
	byParticipant map[string]*Client
}

// NewServer builds a hub over engine. An empty allowedOrigins accepts any
// origin.
func NewServer(engine Engine, allowedOrigins []string) *Server {
	return &Server{
		engine:        engine,
		upgrader:      websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)},
		clients:       map[*Client]struct{}{},
		byParticipant: map[string]*Client{},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := map[string]struct{}{}
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		if len(set) == 0 {
			return true
		}
		if _, ok := set["*"]; ok {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Run forwards engine events to every connection until ctx is done or the
// event stream closes.
func (s *Server) Run(ctx context.Context) {
	events := s.engine.Events()
	ch := events.SubscribeN(256)
	defer events.Unsubscribe(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			s.broadcast(ev)
		}
	}
}

// Connected reports the number of open sockets.
func (s *Server) Connected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("origin", r.Header.Get("Origin")).Msg("ws_upgrade_failed")
		return
	}
	c := &Client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	s.register(c)

	go s.writeLoop(c)
	s.readLoop(c)
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		s.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxFrameSize)

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if err := s.dispatch(c, msg); err != nil {
			metricCommandsRejected.Add(1)
			log.Debug().Err(err).Str("client_id", c.id).Msg("ws_command_rejected")
			s.sendTo(c, TypeError, ErrorData{Message: errorMessage(err)})
		}
	}
}

func (s *Server) writeLoop(c *Client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			_ = c.conn.Close()
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Server) dispatch(c *Client, msg []byte) error {
	var f Frame
	if err := json.Unmarshal(msg, &f); err != nil {
		return errBadFrame
	}
	switch normalizeType(f.Type) {
	case TypeJoin:
		name, err := decodeName(f.Data)
		if err != nil {
			return err
		}
		p, err := s.engine.Join(name)
		if err != nil {
			return err
		}
		s.bind(c, p.ID)
		s.sendTo(c, TypeJoined, JoinedData{PlayerID: p.ID, Name: p.Name})
		return nil
	case TypeScore:
		var d ScoreData
		if err := decodeInto(f.Data, &d); err != nil {
			return err
		}
		score, err := toScore(d.Score)
		if err != nil {
			return err
		}
		return s.engine.UpdateScore(c.participantID, score)
	case TypeComplete:
		var d CompleteData
		if err := decodeInto(f.Data, &d); err != nil {
			return err
		}
		score, err := toScore(d.FinalScore)
		if err != nil {
			return err
		}
		return s.engine.Complete(c.participantID, score)
	case TypeRetry:
		return s.engine.Retry()
	case TypeStart:
		return s.engine.Start()
	case TypeNextGame:
		return s.engine.NextGame()
	default:
		return errUnknownType
	}
}

// register queues the first snapshot and joins c to broadcasts in one step,
// so c gets every event after the snapshot and none before it.
func (s *Server) register(c *Client) {
	s.mu.Lock()
	state, after := s.engine.SnapshotAt()
	c.after = after
	s.sendTo(c, tournament.EventTournamentState, state)
	s.clients[c] = struct{}{}
	n := len(s.clients)
	s.mu.Unlock()
	metricConnections.Add(1)
	log.Info().Str("client_id", c.id).Int("connected", n).Msg("ws_connected")
}

// bind ties a participant to its newest connection. A socket that joins
// under a new name gives up the participant it held before.
func (s *Server) bind(c *Client, participantID string) {
	s.mu.Lock()
	prev := c.participantID
	released := prev != "" && prev != participantID && s.byParticipant[prev] == c
	if released {
		delete(s.byParticipant, prev)
	}
	c.participantID = participantID
	s.byParticipant[participantID] = c
	s.mu.Unlock()

	if released {
		s.engine.Disconnect(prev)
		log.Debug().Str("client_id", c.id).Str("participant_id", prev).Msg("ws_participant_released")
	}
}

func (s *Server) unregister(c *Client) {
	s.mu.Lock()
	delete(s.clients, c)
	owner := c.participantID != "" && s.byParticipant[c.participantID] == c
	if owner {
		delete(s.byParticipant, c.participantID)
	}
	close(c.send)
	n := len(s.clients)
	s.mu.Unlock()

	if owner {
		s.engine.Disconnect(c.participantID)
	}
	log.Info().Str("client_id", c.id).Int("connected", n).Msg("ws_disconnected")
}

func (s *Server) broadcast(ev stream.Event) {
	msg, err := json.Marshal(OutFrame{Type: ev.Event, Data: ev.Data})
	if err != nil {
		log.Error().Err(err).Str("event", ev.Event).Msg("ws_encode_failed")
		return
	}
	id, _ := strconv.ParseInt(ev.EventID, 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		if id != 0 && id <= c.after {
			continue
		}
		trySend(c, msg)
	}
}

// sendTo queues a frame for a single client. Only the client's own
// goroutine calls it, while registering or from the read loop, so c.send
// is still open.
func (s *Server) sendTo(c *Client, typ string, data any) {
	msg, err := json.Marshal(OutFrame{Type: typ, Data: data})
	if err != nil {
		log.Error().Err(err).Str("event", typ).Msg("ws_encode_failed")
		return
	}
	trySend(c, msg)
}

func trySend(c *Client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		metricDropped.Add(1)
	}
}
