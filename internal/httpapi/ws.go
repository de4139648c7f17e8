package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hireloop/ai-interviewer/internal/interview"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Candidate answers are free text; 16KB is generous.
	maxMessageSize = 16 * 1024

	sendBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ConnRegistry enforces at most one live connection per session across
// all instances.
type ConnRegistry interface {
	AcquireConn(ctx context.Context, id string) (bool, error)
	RefreshConn(ctx context.Context, id string) error
	ReleaseConn(ctx context.Context, id string) error
}

// Gateway bridges one websocket connection to one interview session.
// The orchestrator owns all state; the gateway only translates frames.
type Gateway struct {
	orch  *interview.Orchestrator
	conns ConnRegistry
	log   *zap.Logger
}

func NewGateway(orch *interview.Orchestrator, conns ConnRegistry, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{orch: orch, conns: conns, log: log}
}

type inboundFrame struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	ClientMsgID string `json:"client_msg_id"`
}

type messageFrame struct {
	Type        string    `json:"type"`
	Sender      string    `json:"sender"`
	Stage       string    `json:"stage"`
	MessageType string    `json:"message_type"`
	Message     string    `json:"message"`
	AIGenerated bool      `json:"ai_generated"`
	CreatedAt   time.Time `json:"created_at"`
}

type stageChangeFrame struct {
	Type    string `json:"type"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

type completeFrame struct {
	Type            string                       `json:"type"`
	FinalScore      *float64                     `json:"final_score"`
	Summary         *interview.EvaluationSummary `json:"summary"`
	EvaluationSaved bool                         `json:"evaluation_saved"`
}

type abortedFrame struct {
	Type    string                       `json:"type"`
	Summary *interview.EvaluationSummary `json:"summary"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// session is one live connection. writePump owns all writes; everyone
// else goes through send.
type session struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	gw   *Gateway

	// closed by readPump on exit so writePump stops pinging
	done chan struct{}
}

// Handle upgrades the request and runs the session until either side
// disconnects or the interview reaches a terminal state.
func (g *Gateway) Handle(c *gin.Context) {
	id := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.log.Error("websocket upgrade failed", zap.String("interview_id", id), zap.Error(err))
		return
	}

	s := &session{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		gw:   g,
		done: make(chan struct{}),
	}
	go s.writePump()

	ctx := c.Request.Context()

	ok, err := g.conns.AcquireConn(ctx, id)
	if err != nil {
		g.log.Error("conn registry unavailable", zap.String("interview_id", id), zap.Error(err))
		s.sendError("service unavailable, try again")
		s.shutdown()
		return
	}
	if !ok {
		s.sendError(interview.ErrConnectionBusy.Error())
		s.shutdown()
		return
	}
	defer func() {
		if err := g.conns.ReleaseConn(context.Background(), id); err != nil {
			g.log.Warn("conn release failed", zap.String("interview_id", id), zap.Error(err))
		}
	}()

	events, err := g.orch.Open(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, interview.ErrNotFound):
			s.sendError("interview not found")
		case errors.Is(err, interview.ErrAlreadyClosed):
			s.sendError("interview is already finished")
		default:
			g.log.Error("open failed", zap.String("interview_id", id), zap.Error(err))
			s.sendError("failed to open interview")
		}
		s.shutdown()
		return
	}
	s.emit(events)

	s.readPump(ctx)
}

func (s *session) readPump(ctx context.Context) {
	defer s.shutdown()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.gw.log.Warn("websocket closed unexpectedly",
					zap.String("interview_id", s.id), zap.Error(err))
			}
			s.gw.orch.Close(ctx, s.id, "connection dropped")
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			s.sendError("invalid frame: expected JSON")
			continue
		}
		if frame.Type != "candidate_message" {
			s.sendError("unknown frame type: " + frame.Type)
			continue
		}
		if frame.Message == "" {
			s.sendError("message must not be empty")
			continue
		}

		events, err := s.gw.orch.Submit(ctx, s.id, frame.Message, frame.ClientMsgID)
		if err != nil {
			switch {
			case errors.Is(err, interview.ErrSessionClosed):
				s.sendError("interview is already finished")
				return
			case errors.Is(err, interview.ErrNotFound):
				s.sendError("interview not found")
				return
			default:
				s.gw.log.Error("submit failed",
					zap.String("interview_id", s.id), zap.Error(err))
				s.sendError("failed to process your message, please retry")
				continue
			}
		}

		terminal := s.emit(events)
		if terminal {
			return
		}
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			// The liveness lock follows the heartbeat.
			if s.gw.conns != nil {
				if err := s.gw.conns.RefreshConn(context.Background(), s.id); err != nil {
					s.gw.log.Warn("conn refresh failed",
						zap.String("interview_id", s.id), zap.Error(err))
				}
			}
		case <-s.done:
			// Flush whatever is queued before tearing the socket down.
			for {
				select {
				case msg := <-s.send:
					s.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
						return
					}
				default:
					s.conn.SetWriteDeadline(time.Now().Add(writeWait))
					s.conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}

// emit pushes the turn's events in order. Returns true when a terminal
// frame was delivered and the connection should close.
func (s *session) emit(events []interview.Event) bool {
	terminal := false
	for _, ev := range events {
		switch ev.Type {
		case interview.EventMessage:
			if ev.Message == nil {
				continue
			}
			s.push(messageFrame{
				Type:        "message",
				Sender:      string(ev.Message.Sender),
				Stage:       string(ev.Message.Stage),
				MessageType: string(ev.Message.MessageType),
				Message:     ev.Message.Message,
				AIGenerated: ev.Message.AIGenerated,
				CreatedAt:   ev.Message.CreatedAt,
			})
		case interview.EventStageChange:
			f := stageChangeFrame{Type: "stage_change", Stage: string(ev.Stage)}
			if ev.Message != nil {
				f.Message = ev.Message.Message
			}
			s.push(f)
		case interview.EventCompleted:
			s.push(completeFrame{
				Type:            "interview_complete",
				FinalScore:      ev.FinalScore,
				Summary:         ev.Summary,
				EvaluationSaved: true,
			})
			terminal = true
		case interview.EventAborted:
			s.push(abortedFrame{Type: "interview_aborted", Summary: ev.Summary})
			terminal = true
		}
	}
	return terminal
}

func (s *session) sendError(msg string) {
	s.push(errorFrame{Type: "error", Message: msg})
}

// push never blocks the turn: a slow or dead client drops frames, the
// transcript in the store stays authoritative.
func (s *session) push(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case s.send <- b:
	default:
		s.gw.log.Warn("send buffer full, dropping frame", zap.String("interview_id", s.id))
	}
}

func (s *session) shutdown() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}
