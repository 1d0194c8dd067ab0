package main

import (
	"encoding/json"
	"log"
	"math/rand"
	"os"
	"strconv"
	"sync"
	"time"

	"arcade-tournament/internal/tournament"
	"arcade-tournament/internal/ws"

	"github.com/gorilla/websocket"
)

type frame struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) send(typ string, data any) {
	msg, _ := json.Marshal(frame{Type: typ, Data: data})
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.WriteMessage(websocket.TextMessage, msg)
}

func main() {
	wsURL := getenv("WS_URL", "ws://localhost:8080/ws")
	name := getenv("BOT_NAME", "bot")
	updates := getenvInt("BOT_UPDATES", 5)
	drive := getenv("BOT_DRIVE", "") == "true"

	raw, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer raw.Close()
	c := &conn{ws: raw}

	c.send(ws.TypeJoin, ws.JoinData{Name: name})
	if drive {
		c.send(ws.TypeStart, nil)
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for {
		_, data, err := raw.ReadMessage()
		if err != nil {
			return
		}
		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case ws.TypeJoined:
			log.Printf("joined as %s", msg.Data)
		case tournament.EventGameStarted:
			var started tournament.GameStarted
			_ = json.Unmarshal(msg.Data, &started)
			go play(c, rnd.Int63(), updates, pace(started.Duration, updates))
		case tournament.EventNextGamePrompt:
			if drive {
				c.send(ws.TypeNextGame, nil)
			}
		case tournament.EventTournamentFinished:
			log.Printf("tournament finished: %s", msg.Data)
			if !drive {
				return
			}
		case ws.TypeError:
			log.Printf("server error: %s", msg.Data)
		}
	}
}

// play reports a rising score and then completes the round.
func play(c *conn, seed int64, updates int, every time.Duration) {
	rnd := rand.New(rand.NewSource(seed))
	score := int64(0)
	for i := 0; i < updates; i++ {
		score = nextScore(rnd, score)
		c.send(ws.TypeScore, ws.ScoreData{Score: float64(score)})
		time.Sleep(every)
	}
	c.send(ws.TypeComplete, ws.CompleteData{FinalScore: float64(score)})
}

func nextScore(rnd *rand.Rand, score int64) int64 {
	return score + 10 + rnd.Int63n(90)
}

// pace spreads updates over half the round so the bot finishes early.
func pace(durationSec, updates int) time.Duration {
	if durationSec <= 0 || updates <= 0 {
		return time.Second
	}
	return time.Duration(durationSec) * time.Second / time.Duration(2*updates)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return def
}
