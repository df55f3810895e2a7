package analystapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/trade-analyst/src/data"
	"github.com/jiaming2012/trade-analyst/src/eventpubsub"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	clientSendSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type streamClient struct {
	id     uuid.UUID
	symbol string
	send   chan *data.AnalysisEntry
}

// Stream pushes every analysis update to the connected websocket clients.
// A client may pass ?symbol= to receive one index only. Slow clients drop
// updates instead of blocking the bus.
type Stream struct {
	store   *data.AnalysisStore
	mu      sync.Mutex
	clients map[uuid.UUID]*streamClient
	handler func(entry *data.AnalysisEntry)
}

func NewStream(store *data.AnalysisStore) *Stream {
	s := &Stream{
		store:   store,
		clients: make(map[uuid.UUID]*streamClient),
	}

	s.handler = s.broadcast

	return s
}

func (s *Stream) Start() error {
	return eventpubsub.Subscribe(eventpubsub.OptionAnalysisUpdated, s.handler)
}

func (s *Stream) Stop() error {
	return eventpubsub.Unsubscribe(eventpubsub.OptionAnalysisUpdated, s.handler)
}

func (s *Stream) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.clients)
}

func (s *Stream) broadcast(entry *data.AnalysisEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.clients {
		if c.symbol != "" && c.symbol != entry.Symbol {
			continue
		}

		select {
		case c.send <- entry:
		default:
			log.WithField("client", c.id).Warn("Stream: client too slow, dropping update")
		}
	}
}

func (s *Stream) register(c *streamClient) {
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
}

func (s *Stream) unregister(c *streamClient) {
	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()
}

func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var query StreamQuery
	if err := decodeQuery(&query, r); err != nil {
		respondError(w, "validation", http.StatusBadRequest, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Stream: upgrade failed: %v", err)
		return
	}

	client := &streamClient{
		id:     uuid.New(),
		symbol: query.Symbol,
		send:   make(chan *data.AnalysisEntry, clientSendSize),
	}

	// the latest state goes out before any live update
	for _, symbol := range s.store.Symbols() {
		if client.symbol != "" && client.symbol != symbol {
			continue
		}

		if len(client.send) == cap(client.send) {
			break
		}

		if entry, found := s.store.Get(symbol); found {
			client.send <- &entry
		}
	}

	s.register(client)

	log.WithFields(log.Fields{
		"client": client.id,
		"symbol": client.symbol,
	}).Info("Stream: client connected")

	done := make(chan struct{})
	go s.readLoop(conn, done)
	s.writeLoop(conn, client, done)

	s.unregister(client)
	conn.Close()

	log.WithField("client", client.id).Info("Stream: client disconnected")
}

// readLoop only watches for pongs and the close frame.
func (s *Stream) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Stream) writeLoop(conn *websocket.Conn, client *streamClient, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case entry := <-client.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(entry); err != nil {
				log.WithField("client", client.id).Warnf("Stream: write failed: %v", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
