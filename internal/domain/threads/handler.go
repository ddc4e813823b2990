package threads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// ErrUnknownPost: el pet_id pedido para abrir un chat no existe.
var ErrUnknownPost = errors.New("pet not found")

// OwnerLookup resuelve el dueño de una publicación (chat "Adopt me").
// Devuelve ErrUnknownPost si la publicación no existe.
type OwnerLookup func(ctx context.Context, postID string) (Participant, error)

// Intervalo de comentarios keep-alive en el stream SSE.
const streamPing = 25 * time.Second

func RegisterRoutes(r chi.Router, svc *Service, owners OwnerLookup, log logger.Logger) {
	if log == nil {
		log = logger.Nop()
	}
	r.Post("/threads", resolveThreadHandler(svc, owners, log))
	r.Get("/me/threads", listThreadsHandler(svc, log))

	r.Route("/threads/{threadID}", func(tr chi.Router) {
		tr.Get("/", getThreadHandler(svc, log))
		tr.Get("/title", threadTitleHandler(svc))
		tr.Get("/messages", listMessagesHandler(svc, log))
		tr.Post("/messages", sendMessageHandler(svc, log))
		tr.Get("/messages/stream", streamMessagesHandler(svc, log))
	})
}

type resolveThreadRequest struct {
	// pet_id abre el chat con el dueño de la publicación;
	// si no viene, se usan email/name/avatar_url.
	PetID     string `json:"pet_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type participantResponse struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type threadResponse struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Participants []participantResponse `json:"participants"`
	Emails       []string              `json:"emails"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

type titleResponse struct {
	Title string `json:"title"`
}

type sendMessageRequest struct {
	ClientID string `json:"client_id"`
	Body     string `json:"body"`
}

type messageResponse struct {
	ID          string              `json:"id"`
	ThreadID    string              `json:"thread_id"`
	ClientID    string              `json:"client_id"`
	Sender      participantResponse `json:"sender"`
	Body        string              `json:"body"`
	CreatedAt   time.Time           `json:"created_at"`
	DisplayTime string              `json:"display_time"`
}

type snapshotResponse struct {
	ThreadID string            `json:"thread_id"`
	Messages []messageResponse `json:"messages"`
	At       time.Time         `json:"at"`
}

// resolveThreadHandler godoc
// @Summary      Abrir chat
// @Description  Devuelve el thread entre el usuario y otro (o el dueño de pet_id), creándolo si no existe. 201 si se creó.
// @Tags         threads
// @Accept       json
// @Produce      json
// @Param        X-Debug-User-Email  header    string                false  "Email (modo dev)"
// @Param        body                body      resolveThreadRequest  true   "Otro participante"
// @Success      200                 {object}  threadResponse
// @Success      201                 {object}  threadResponse
// @Failure      400                 {string}  string  "invalid input"
// @Failure      401                 {string}  string  "unauthorized"
// @Failure      404                 {string}  string  "pet not found"
// @Router       /threads [post]
func resolveThreadHandler(svc *Service, owners OwnerLookup, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireEmail(w, r)
		if !ok {
			return
		}

		var req resolveThreadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		other := Participant{Email: req.Email, Name: req.Name, AvatarURL: req.AvatarURL}
		if petID := strings.TrimSpace(req.PetID); petID != "" {
			if owners == nil {
				http.Error(w, "pet lookup not available", http.StatusBadRequest)
				return
			}
			owner, err := owners(r.Context(), petID)
			if err != nil {
				writeError(w, r, log, err)
				return
			}
			other = owner
		}

		self := Participant{Email: claims.Email, Name: claims.Name, AvatarURL: claims.AvatarURL}
		t, created, err := svc.ResolveThread(r.Context(), self, other)
		if err != nil {
			writeError(w, r, log, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, status, toThreadResponse(t, claims.Email))
	}
}

// listThreadsHandler godoc
// @Summary      Mis chats
// @Description  Inbox: threads donde participa el usuario, más recientes primero.
// @Tags         threads
// @Produce      json
// @Param        X-Debug-User-Email  header    string  false  "Email (modo dev)"
// @Success      200                 {array}   threadResponse
// @Failure      401                 {string}  string  "unauthorized"
// @Router       /me/threads [get]
func listThreadsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireEmail(w, r)
		if !ok {
			return
		}
		items, err := svc.ListThreads(r.Context(), claims.Email)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		out := make([]threadResponse, 0, len(items))
		for _, t := range items {
			out = append(out, toThreadResponse(t, claims.Email))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getThreadHandler godoc
// @Summary      Ver chat
// @Tags         threads
// @Produce      json
// @Param        X-Debug-User-Email  header    string  false  "Email (modo dev)"
// @Param        threadID            path      string  true   "ID del thread"
// @Success      200                 {object}  threadResponse
// @Failure      401                 {string}  string  "unauthorized"
// @Failure      403                 {string}  string  "forbidden"
// @Failure      404                 {string}  string  "thread not found"
// @Router       /threads/{threadID} [get]
func getThreadHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireEmail(w, r)
		if !ok {
			return
		}
		t, err := svc.GetThread(r.Context(), chi.URLParam(r, "threadID"), claims.Email)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toThreadResponse(t, claims.Email))
	}
}

// threadTitleHandler godoc
// @Summary      Título del chat
// @Description  Nombre del otro participante. Si el thread todavía no existe responde "Chat".
// @Tags         threads
// @Produce      json
// @Param        X-Debug-User-Email  header    string  false  "Email (modo dev)"
// @Param        threadID            path      string  true   "ID del thread"
// @Success      200                 {object}  titleResponse
// @Failure      401                 {string}  string  "unauthorized"
// @Router       /threads/{threadID}/title [get]
func threadTitleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireEmail(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, titleResponse{Title: svc.Title(r.Context(), chi.URLParam(r, "threadID"), claims.Email)})
	}
}

// listMessagesHandler godoc
// @Summary      Mensajes del chat
// @Tags         threads
// @Produce      json
// @Param        X-Debug-User-Email  header    string  false  "Email (modo dev)"
// @Param        threadID            path      string  true   "ID del thread"
// @Success      200                 {array}   messageResponse
// @Failure      401                 {string}  string  "unauthorized"
// @Failure      403                 {string}  string  "forbidden"
// @Failure      404                 {string}  string  "thread not found"
// @Router       /threads/{threadID}/messages [get]
func listMessagesHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireEmail(w, r)
		if !ok {
			return
		}
		items, err := svc.ListMessages(r.Context(), chi.URLParam(r, "threadID"), claims.Email)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toMessageResponses(items))
	}
}

// sendMessageHandler godoc
// @Summary      Enviar mensaje
// @Description  client_id identifica el mensaje del lado cliente: reenviar con el mismo client_id no duplica.
// @Tags         threads
// @Accept       json
// @Produce      json
// @Param        X-Debug-User-Email  header    string              false  "Email (modo dev)"
// @Param        threadID            path      string              true   "ID del thread"
// @Param        body                body      sendMessageRequest  true   "Mensaje"
// @Success      201                 {object}  messageResponse
// @Failure      400                 {string}  string  "invalid input"
// @Failure      401                 {string}  string  "unauthorized"
// @Failure      403                 {string}  string  "forbidden"
// @Failure      404                 {string}  string  "thread not found"
// @Router       /threads/{threadID}/messages [post]
func sendMessageHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireEmail(w, r)
		if !ok {
			return
		}

		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sender := Participant{Email: claims.Email, Name: claims.Name, AvatarURL: claims.AvatarURL}
		m, err := svc.SendMessage(r.Context(), chi.URLParam(r, "threadID"), sender, SendInput{
			ClientID: req.ClientID,
			Body:     req.Body,
		})
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, toMessageResponse(m))
	}
}

// streamMessagesHandler godoc
// @Summary      Stream de mensajes (SSE)
// @Description  text/event-stream. Cada evento "snapshot" trae la lista completa y ordenada de mensajes.
// @Description  EventSource no manda headers: con verifier se puede usar ?access_token=.
// @Tags         threads
// @Produce      text/event-stream
// @Param        X-Debug-User-Email  header    string  false  "Email (modo dev)"
// @Param        threadID            path      string  true   "ID del thread"
// @Success      200                 {object}  snapshotResponse
// @Failure      401                 {string}  string  "unauthorized"
// @Failure      403                 {string}  string  "forbidden"
// @Failure      404                 {string}  string  "thread not found"
// @Router       /threads/{threadID}/messages/stream [get]
func streamMessagesHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireEmail(w, r)
		if !ok {
			return
		}

		sub, err := svc.OpenThreadFeed(r.Context(), chi.URLParam(r, "threadID"), claims.Email)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		defer sub.Close()

		rc := http.NewResponseController(w)
		// El stream vive más que el WriteTimeout del server.
		_ = rc.SetWriteDeadline(time.Time{})

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		if err := rc.Flush(); err != nil {
			return
		}

		ping := time.NewTicker(streamPing)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-ping.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
			case snap, ok := <-sub.Snapshots():
				if !ok {
					return
				}
				data, err := json.Marshal(snapshotResponse{
					ThreadID: snap.ThreadID,
					Messages: toMessageResponses(snap.Messages),
					At:       snap.At,
				})
				if err != nil {
					return
				}
				if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
					return
				}
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

// writeError loguea solo los 500; el resto son errores del cliente.
func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "thread not found", http.StatusNotFound)
	case errors.Is(err, ErrUnknownPost):
		http.Error(w, "pet not found", http.StatusNotFound)
	default:
		middleware.LogRequestError(log, r, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toParticipantResponse(p Participant) participantResponse {
	return participantResponse{Email: p.Email, Name: p.Name, AvatarURL: p.AvatarURL}
}

func toThreadResponse(t Thread, viewer string) threadResponse {
	ps := make([]participantResponse, 0, len(t.Participants))
	for _, p := range t.Participants {
		ps = append(ps, toParticipantResponse(p))
	}
	return threadResponse{
		ID:           t.ID,
		Title:        TitleFor(t, viewer),
		Participants: ps,
		Emails:       t.Emails,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func toMessageResponse(m Message) messageResponse {
	return messageResponse{
		ID:          m.ID,
		ThreadID:    m.ThreadID,
		ClientID:    m.ClientID,
		Sender:      toParticipantResponse(m.Sender),
		Body:        m.Body,
		CreatedAt:   m.CreatedAt,
		DisplayTime: m.DisplayTime(),
	}
}

func toMessageResponses(items []Message) []messageResponse {
	out := make([]messageResponse, 0, len(items))
	for _, m := range items {
		out = append(out, toMessageResponse(m))
	}
	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
// Si más adelante se repite en más módulos, recién conviene extraerlo a un helper común.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
