package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/architect/internal/gateway"
	"github.com/jonathan/architect/internal/navigation"
	"github.com/jonathan/architect/internal/types"
)

// NavigateResponse reports a dispatched command and the resulting view state.
type NavigateResponse struct {
	Command navigation.Command `json:"command"`
	Outcome navigation.Outcome `json:"outcome"`
	State   navigation.State   `json:"state"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// NavigationEvent is streamed for every command the model issues during a chat turn.
type NavigationEvent struct {
	Action  navigation.Action `json:"action"`
	Target  string            `json:"target,omitempty"`
	Applied bool              `json:"applied"`
	Message string            `json:"message,omitempty"`
}

// PricingRequest is the body of POST /pricing/recommendation.
type PricingRequest struct {
	ProductName string  `json:"productName" validate:"required"`
	COGS        float64 `json:"cogs" validate:"gt=0"`
	Category    string  `json:"category"`
}

// LogisticsRequest is the body of POST /logistics/advice.
type LogisticsRequest struct {
	Destination   string  `json:"destination" validate:"required"`
	WeightOz      float64 `json:"weightOz" validate:"gt=0"`
	International bool    `json:"international"`
}

// ResearchRequest is the body of POST /research.
type ResearchRequest struct {
	Query   string                  `json:"query" validate:"required"`
	Sources []types.GroundingSource `json:"sources" validate:"dive,oneof=web maps"`
}

// SpeechRequest is the body of POST /speech.
type SpeechRequest struct {
	Text string `json:"text" validate:"required"`
}

// handleNavigate applies a command directly, the same way the chat model would.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var args map[string]any
	if err := s.readJSON(r, &args); err != nil {
		s.fail(w, err)
		return
	}
	cmd, err := navigation.ParseCommand(args)
	if err != nil {
		s.fail(w, &ErrValidation{Field: "action", Message: err.Error()})
		return
	}
	outcome := s.deps.Dispatcher.Dispatch(cmd)
	s.jsonResponse(w, http.StatusOK, NavigateResponse{Command: cmd, Outcome: outcome, State: s.deps.Dispatcher.State()})
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.deps.Dispatcher.State())
}

// chatSession returns the process-wide chat session, opening it on first use.
func (s *Server) chatSession(r *http.Request) (*gateway.ChatSession, error) {
	s.chatMu.Lock()
	defer s.chatMu.Unlock()
	if s.chat != nil {
		return s.chat, nil
	}
	c, err := s.deps.Gateway.CreateChatSession(r.Context(), s.deps.Store.Prefs().Language, s.deps.Dispatcher)
	if err != nil {
		return nil, err
	}
	s.chat = c
	return c, nil
}

// resetChat drops the chat history so the next message starts a new session.
func (s *Server) resetChat() {
	s.chatMu.Lock()
	s.chat = nil
	s.chatMu.Unlock()
}

// handleChat streams one assistant turn as server-sent events: a navigation event per
// executed command, then the reply text, or an error event.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}

	session, err := s.chatSession(r)
	if err != nil {
		s.deps.Notes.Error("The assistant is unavailable.")
		s.fail(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := session.Send(r.Context(), req.Message, func(cr gateway.CommandResult) {
		sse.WriteEvent(EventNavigation, NavigationEvent{ //nolint:errcheck
			Action:  cr.Command.Action,
			Target:  cr.Command.Target,
			Applied: cr.Outcome.Applied,
			Message: cr.Outcome.Message,
		})
	})
	if err != nil {
		sse.WriteError(err.Error())
		return
	}
	sse.WriteEvent(EventMessage, map[string]string{"text": result.Text}) //nolint:errcheck
	sse.WriteDone()
}

func (s *Server) handleResetChat(w http.ResponseWriter, _ *http.Request) {
	s.resetChat()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePricingRecommendation(w http.ResponseWriter, r *http.Request) {
	var req PricingRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	rec, err := s.deps.Panels.RecommendPrice(r.Context(), req.ProductName, req.COGS, req.Category)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

func (s *Server) handleLogisticsAdvice(w http.ResponseWriter, r *http.Request) {
	var req LogisticsRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	advice, err := s.deps.Panels.LogisticsAdvice(r.Context(), req.Destination, req.WeightOz, req.International)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, advice)
}

// handleResearch answers a free-form question grounded on the requested sources (web by default).
func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req ResearchRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if len(req.Sources) == 0 {
		req.Sources = []types.GroundingSource{types.GroundWeb}
	}
	info, err := s.deps.Gateway.GetGroundedInfo(r.Context(), req.Query, req.Sources)
	if err != nil {
		s.deps.Notes.Error("Research failed")
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, info)
}

// handleSpeech returns synthesized speech as a WAV file.
func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	var req SpeechRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	audio, err := s.deps.Gateway.SynthesizeSpeech(r.Context(), req.Text)
	if err != nil {
		s.fail(w, err)
		return
	}
	wav := audio.WAV()
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(wav)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(wav); err != nil {
		s.logger.Debug().Err(err).Msg("writing audio")
	}
}

// handleSpeechPlay plays speech on the server's audio device, interrupting any current playback.
func (s *Server) handleSpeechPlay(w http.ResponseWriter, r *http.Request) {
	var req SpeechRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.deps.Gateway.Speak(r.Context(), req.Text); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleSpeechStop(w http.ResponseWriter, _ *http.Request) {
	s.deps.Gateway.StopSpeech()
	w.WriteHeader(http.StatusNoContent)
}
