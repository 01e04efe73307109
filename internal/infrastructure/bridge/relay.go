// Package bridge is the local print daemon: it accepts WebSocket sessions
// from the counter UI and forwards each message to the attached printer.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/star-temple/starprint/pkg/printer"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// maxJobSize caps a single print message. A receipt is well under 1KB.
	maxJobSize = 1 << 20

	defaultWriteTimeout = 15 * time.Second
)

// Relay forwards print jobs received over WebSocket to a device printer.
type Relay struct {
	device       printer.Printer
	deviceType   string
	log          *zap.Logger
	upgrader     websocket.Upgrader
	writeTimeout time.Duration

	// mu serializes device writes so concurrent jobs never interleave on paper.
	mu sync.Mutex
}

// NewRelay creates a relay writing to device.
func NewRelay(device printer.Printer, deviceType string, log *zap.Logger) *Relay {
	r := &Relay{
		device:       device,
		deviceType:   deviceType,
		log:          log,
		writeTimeout: defaultWriteTimeout,
	}
	r.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 1024,
		CheckOrigin:     func(req *http.Request) bool { return AllowedOrigin(req.Header.Get("Origin")) },
	}
	return r
}

// Handler returns the daemon's HTTP handler: WebSocket jobs on "/" and
// device status on "/healthz".
func (r *Relay) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", r.health)
	mux.HandleFunc("/", r.serveWS)
	return mux
}

// ListenAndServe runs the daemon until ctx is cancelled.
func (r *Relay) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.log.Info("Print bridge listening", zap.String("addr", addr), zap.String("device", r.deviceType))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (r *Relay) serveWS(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.log.Warn("Rejected bridge connection",
			zap.String("remote", req.RemoteAddr),
			zap.String("origin", req.Header.Get("Origin")),
			zap.Error(err),
		)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxJobSize)

	session := uuid.New().String()
	log := r.log.With(zap.String("session", session), zap.String("remote", req.RemoteAddr))
	log.Debug("Bridge session opened")

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				log.Warn("Bridge session ended unexpectedly", zap.Error(err))
			} else {
				log.Debug("Bridge session closed")
			}
			return
		}

		if err := r.print(req.Context(), payload); err != nil {
			log.Error("Device write failed", zap.Int("bytes", len(payload)), zap.Error(err))
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "printer error"),
				time.Now().Add(time.Second),
			)
			return
		}
		log.Info("Job printed", zap.Int("bytes", len(payload)))
	}
}

func (r *Relay) print(ctx context.Context, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, r.writeTimeout)
	defer cancel()
	return r.device.Print(ctx, payload)
}

type healthResponse struct {
	Status    string `json:"status"`
	Device    string `json:"device"`
	Connected bool   `json:"connected"`
}

func (r *Relay) health(w http.ResponseWriter, req *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Device:    r.deviceType,
		Connected: r.device.IsConnected(req.Context()),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// AllowedOrigin accepts the origins a local desktop shell presents:
// none at all, "null" and file:// pages, and anything served from loopback.
func AllowedOrigin(origin string) bool {
	if origin == "" || origin == "null" || strings.HasPrefix(origin, "file://") {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
