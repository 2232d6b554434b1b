package pumpfun

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alejandrodnm/pumpbot/internal/domain"
)

const (
	streamReconnectDelay    = 1 * time.Second
	streamMaxReconnectDelay = 30 * time.Second
	streamReadTimeout       = 60 * time.Second
	streamHandshakeTimeout  = 10 * time.Second

	// streamBufferMax acota los anuncios retenidos entre ciclos; los más
	// antiguos se descartan (el fetch HTTP del ciclo los cubre igualmente).
	streamBufferMax = 500
)

// Stream escucha anuncios de lanzamiento por websocket y los retiene hasta que
// el discovery loop los drena en su siguiente ciclo. Se reconecta solo con
// backoff exponencial; un stream caído degrada al polling HTTP sin afectar
// al loop.
type Stream struct {
	endpoint string

	mu     sync.Mutex
	buffer []domain.Candidate
}

// NewStream crea un Stream para el endpoint dado y lanza su listener.
// El listener vive hasta que ctx se cancele.
func NewStream(ctx context.Context, endpoint string) *Stream {
	s := &Stream{endpoint: endpoint}
	go s.listen(ctx)
	return s
}

// Drain devuelve los anuncios acumulados desde el último drenado y limpia el buffer.
func (s *Stream) Drain() []domain.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.buffer
	s.buffer = nil
	return out
}

// listen mantiene la conexión viva, reconectando con backoff.
func (s *Stream) listen(ctx context.Context) {
	delay := streamReconnectDelay
	for ctx.Err() == nil {
		err := s.readLoop(ctx)
		if ctx.Err() != nil {
			return
		}
		slog.Warn("pumpfun: stream disconnected, reconnecting",
			"err", err, "delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
		delay *= 2
		if delay > streamMaxReconnectDelay {
			delay = streamMaxReconnectDelay
		}
	}
}

// readLoop conecta y consume mensajes hasta que la conexión falle.
func (s *Stream) readLoop(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: streamHandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Cerrar la conexión cuando el contexto muera desbloquea ReadMessage.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	slog.Info("pumpfun: stream connected", "endpoint", s.endpoint)

	for {
		conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var payload coinPayload
		if err := json.Unmarshal(msg, &payload); err != nil || payload.Mint == "" {
			continue // mensajes de control u otros eventos del stream
		}
		s.push(payload.toDomain())
	}
}

// push añade un candidato al buffer, descartando el más antiguo si está lleno.
func (s *Stream) push(c domain.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buffer) >= streamBufferMax {
		s.buffer = s.buffer[1:]
	}
	s.buffer = append(s.buffer, c)
}

// Feed combina el polling HTTP con el stream websocket detrás de
// ports.CandidateProvider. stream puede ser nil (solo HTTP).
type Feed struct {
	client *Client
	stream *Stream
}

// NewFeed crea el proveedor combinado.
func NewFeed(client *Client, stream *Stream) *Feed {
	return &Feed{client: client, stream: stream}
}

// FetchCandidates une el fetch HTTP del ciclo con los anuncios acumulados del
// stream, deduplicando por dirección. Un fallo HTTP no pierde los anuncios ya
// drenados.
func (f *Feed) FetchCandidates(ctx context.Context) ([]domain.Candidate, error) {
	var fromStream []domain.Candidate
	if f.stream != nil {
		fromStream = f.stream.Drain()
	}

	fetched, err := f.client.FetchCandidates(ctx)
	if err != nil {
		if len(fromStream) > 0 {
			slog.Warn("pumpfun: fetch failed, serving stream buffer only", "err", err)
			return fromStream, nil
		}
		return nil, err
	}

	seen := make(map[string]bool, len(fetched))
	merged := make([]domain.Candidate, 0, len(fetched)+len(fromStream))
	for _, c := range fetched {
		seen[c.Address] = true
		merged = append(merged, c)
	}
	for _, c := range fromStream {
		if !seen[c.Address] {
			merged = append(merged, c)
		}
	}
	return merged, nil
}
