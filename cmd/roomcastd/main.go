// Command roomcastd is a small standalone fan-out daemon built on the
// roomcast library. It exposes an SSE subscription endpoint per room and
// HTTP endpoints for pushing messages to rooms and users.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/advbet/roomcast"
)

type server struct {
	registry *roomcast.Registry
	cfg      config
	logger   *logrus.Logger
}

// subscribe serves GET /rooms/{room}/events. The subscriber identity comes
// from the user query parameter, anonymous clients get a generated one.
func (s *server) subscribe(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["room"]
	user := r.URL.Query().Get("user")
	if user == "" {
		user = uuid.NewString()
	}

	room := s.registry.GetOrCreate(name, roomcast.RoomOptions{
		PingInterval: time.Duration(s.cfg.PingInterval),
	})

	hooks := roomcast.Hooks{
		OnConnect: func(c *roomcast.Controller) {
			s.logger.WithFields(logrus.Fields{
				"room": name,
				"user": c.User(),
			}).Info("subscriber connected")
		},
		OnDisconnect: func(c *roomcast.Controller) {
			s.logger.WithFields(logrus.Fields{
				"room": name,
				"user": c.User(),
			}).Info("subscriber disconnected")
		},
	}

	if err := room.Subscribe(w, r, user, hooks); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type sendRequest struct {
	ID      string   `json:"id,omitempty"`
	Channel string   `json:"channel"`
	Data    any      `json:"data"`
	User    string   `json:"user,omitempty"`
	Rooms   []string `json:"rooms,omitempty"`
}

// sendRoom serves POST /rooms/{room}/send, delivering to one room.
func (s *server) sendRoom(w http.ResponseWriter, r *http.Request) {
	s.deliver(w, r, mux.Vars(r)["room"])
}

// send serves POST /send, the request body lists the target rooms.
func (s *server) send(w http.ResponseWriter, r *http.Request) {
	s.deliver(w, r, "")
}

func (s *server) deliver(w http.ResponseWriter, r *http.Request, room string) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Channel == "" {
		http.Error(w, "channel is required", http.StatusBadRequest)
		return
	}

	env := roomcast.Envelope{
		Message: roomcast.Message{
			ID:      req.ID,
			Channel: req.Channel,
			Data:    req.Data,
		},
		User:  req.User,
		Room:  room,
		Rooms: req.Rooms,
	}

	err := s.registry.Route(env, nil)
	switch {
	case errors.Is(err, roomcast.ErrBadAddress):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		w.WriteHeader(http.StatusAccepted)
	}
}

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("loading configuration")
	}

	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithError(err).Fatal("parsing log level")
	}
	logger.SetLevel(level)

	s := &server{
		registry: roomcast.NewRegistry(logger),
		cfg:      cfg,
		logger:   logger,
	}

	m := mux.NewRouter()
	m.HandleFunc("/rooms/{room}/events", s.subscribe).Methods(http.MethodGet)
	m.HandleFunc("/rooms/{room}/send", s.sendRoom).Methods(http.MethodPost)
	m.HandleFunc("/send", s.send).Methods(http.MethodPost)

	logger.WithField("listen", cfg.Listen).Info("roomcastd listening")
	if err := http.ListenAndServe(cfg.Listen, m); err != nil {
		logger.WithError(err).Fatal("http server")
	}
}
