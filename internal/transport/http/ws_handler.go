package http

import (
	"encoding/json"
	"log"
	"net/http"

	"quiz-studio-service/internal/app"
	"quiz-studio-service/internal/auth"
	"quiz-studio-service/internal/domain"

	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Index json.RawMessage `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS plays one quiz with one player: each question is pushed without its
// answer, the player replies with an option index (or null to skip) and the
// graded result closes the session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	// Authorization errors are answered before upgrading so the client sees a plain status.
	session, err := h.service.StartPlay(r.Context(), auth.RequesterID(r.Context()), quizID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	out := outbox{send: make(chan outboundMessage[any], 16), done: make(chan struct{})}

	go func() {
		defer close(out.done)
		for msg := range out.send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				// Unblock the reader; nothing more can reach the player.
				_ = conn.Close()
				return
			}
		}
	}()

	h.play(conn, session, out)

	close(out.send)
	<-out.done
}

// outbox hands messages to the writer goroutine. Once the writer is gone
// (done closed) emit drops the message and reports false instead of blocking.
type outbox struct {
	send chan outboundMessage[any]
	done chan struct{}
}

func (o outbox) emit(typ string, payload any) bool {
	select {
	case o.send <- outboundMessage[any]{Type: typ, Payload: payload}:
		return true
	case <-o.done:
		return false
	}
}

func (o outbox) fail(msg string) bool {
	return o.emit("error", errorPayload{Message: msg})
}

func (h *WSHandler) play(conn *websocket.Conn, session *app.PlaySession, out outbox) {
	q, _ := session.Current()
	if !out.emit("question", q) {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		var ok bool
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				ok = out.fail("invalid answer payload")
				break
			}
			choice, err := domain.ParseAnswerIndex(payload.Index)
			if err != nil {
				ok = out.fail(err.Error())
				break
			}
			done, err := session.Answer(choice)
			if err != nil {
				ok = out.fail(err.Error())
				break
			}
			if done {
				h.finish(session, out)
				return
			}
			q, _ := session.Current()
			ok = out.emit("question", q)
		case "finish":
			h.finish(session, out)
			return
		default:
			ok = out.fail("unsupported message type")
		}
		if !ok {
			return
		}
	}
}

func (h *WSHandler) finish(session *app.PlaySession, out outbox) {
	res, err := session.Finish()
	if err != nil {
		out.fail(err.Error())
		return
	}
	out.emit("result", res)
}
