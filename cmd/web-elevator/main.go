package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"go-elevator-fleet/pkg/elevator"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

//go:embed static/*
var staticFiles embed.FS

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Message types
// 메시지 타입 정의
type ClientMessage struct {
	Action    string `json:"action"`
	Floor     int    `json:"floor,omitempty"`
	Direction string `json:"direction,omitempty"`
	Car       int    `json:"car,omitempty"`
}

type ServerMessage struct {
	Type      string    `json:"type"`
	EventType string    `json:"eventType,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
	Cars      []CarView `json:"cars,omitempty"`
	HallCalls []string  `json:"hallCalls,omitempty"`
	MinFloor  int       `json:"minFloor"`
	MaxFloor  int       `json:"maxFloor"`
}

type CarView struct {
	ID          int    `json:"id"`
	Floor       int    `json:"floor"`
	State       string `json:"state"`
	Direction   string `json:"direction"`
	DoorOpen    bool   `json:"doorOpen"`
	OnboardUp   []int  `json:"onboardUp"`
	OnboardDown []int  `json:"onboardDown"`
	PickupUp    []int  `json:"pickupUp"`
	PickupDown  []int  `json:"pickupDown"`
	Summary     string `json:"summary"`
}

// FleetSession manages one WebSocket connection against the shared simulator.
// FleetSession은 공유 시뮬레이터와의 WebSocket 연결을 관리합니다.
type FleetSession struct {
	conn *websocket.Conn
	sim  *elevator.Simulator
	mu   sync.Mutex // serializes writes to conn
	done chan struct{}
}

func NewFleetSession(conn *websocket.Conn, sim *elevator.Simulator) *FleetSession {
	return &FleetSession{
		conn: conn,
		sim:  sim,
		done: make(chan struct{}),
	}
}

func (s *FleetSession) HandleMessages() {
	slog.Info("Session started", "remote_addr", s.conn.RemoteAddr())

	events, cancel := s.sim.Subscribe(256)
	go s.eventListener(events)

	defer func() {
		close(s.done)
		cancel()
		_ = s.conn.Close()
		slog.Info("Session ended", "remote_addr", s.conn.RemoteAddr())
	}()

	s.sendState()
	for _, e := range s.sim.Tail(20) {
		s.sendEvent(e)
	}

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket read error", "error", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			slog.Warn("Failed to parse message", "error", err)
			continue
		}

		s.handleAction(msg)
	}
}

func (s *FleetSession) handleAction(msg ClientMessage) {
	slog.Debug("Action received", "action", msg.Action, "payload", msg)

	switch msg.Action {
	case "pickup":
		// Rejections are already logged and published as events by the simulator.
		if err := s.sim.RequestPickup(msg.Floor, elevator.Direction(msg.Direction)); err != nil {
			slog.Debug("Pickup rejected via WS", "floor", msg.Floor, "dir", msg.Direction, "error", err)
		}
		s.sendState()
	case "select":
		if err := s.sim.SelectDestination(msg.Car, msg.Floor); err != nil {
			slog.Debug("Destination rejected via WS", "car", msg.Car, "floor", msg.Floor, "error", err)
		}
		s.sendState()
	case "getState":
		s.sendState()
	default:
		slog.Warn("Unknown action", "action", msg.Action)
	}
}

func (s *FleetSession) eventListener(events <-chan elevator.Event) {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.sendEvent(event)
			s.sendState()
		}
	}
}

func (s *FleetSession) sendState() {
	snaps := s.sim.Snapshots()
	cars := make([]CarView, len(snaps))
	for i, snap := range snaps {
		cars[i] = CarView{
			ID:          snap.ID,
			Floor:       snap.Floor,
			State:       snap.State.String(),
			Direction:   string(snap.Direction),
			DoorOpen:    snap.DoorOpen,
			OnboardUp:   snap.Stops.OnboardUp,
			OnboardDown: snap.Stops.OnboardDown,
			PickupUp:    snap.Stops.PickupUp,
			PickupDown:  snap.Stops.PickupDown,
			Summary:     snap.String(),
		}
	}

	pending := s.sim.Pending()
	calls := make([]string, len(pending))
	for i, p := range pending {
		calls[i] = p.String()
	}

	s.writeJSON(ServerMessage{
		Type:      "state",
		Cars:      cars,
		HallCalls: calls,
		MinFloor:  s.sim.Config.MinFloor,
		MaxFloor:  s.sim.Config.MaxFloor,
	})
}

func (s *FleetSession) sendEvent(event elevator.Event) {
	s.writeJSON(ServerMessage{
		Type:      "event",
		EventType: string(event.Type),
		Message:   event.String(),
		Timestamp: event.Timestamp.Format("15:04:05"),
		MinFloor:  s.sim.Config.MinFloor,
		MaxFloor:  s.sim.Config.MaxFloor,
	})
}

func (s *FleetSession) writeJSON(msg ServerMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(msg); err != nil {
		slog.Error("Failed to write JSON message", "error", err)
	}
}

func wsHandler(sim *elevator.Simulator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("WebSocket upgrade failed", "error", err)
			return
		}

		NewFleetSession(conn, sim).HandleMessages()
	}
}

type AppConfig struct {
	Port       string
	ConfigPath string
	Debug      bool
}

// loadConfig reads the process environment, seeded from an optional .env file.
func loadConfig() *AppConfig {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env", "error", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return &AppConfig{
		Port:       port,
		ConfigPath: os.Getenv("ELEVATOR_CONFIG"),
		Debug:      os.Getenv("ELEVATOR_DEBUG") == "1",
	}
}

func loadBankConfig(path string) (elevator.Config, error) {
	if path == "" {
		return elevator.DefaultConfig(), nil
	}
	return elevator.LoadConfig(path)
}

func main() {
	cfg := loadConfig()
	if cfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	bank, err := loadBankConfig(cfg.ConfigPath)
	if err != nil {
		log.Fatal(err)
	}

	sim, err := elevator.NewSimulator(bank, slog.Default())
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		if err := sim.Run(ctx); err != nil {
			slog.Error("Simulator run error", "error", err)
		}
	}()

	// Serve static files from embedded filesystem
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatal(err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(staticFS)))
	mux.HandleFunc("/ws", wsHandler(sim))

	addr := ":" + cfg.Port
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Starting elevator bank web server", "addr", addr)
	slog.Info("Open http://localhost:" + cfg.Port + " in your browser")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
