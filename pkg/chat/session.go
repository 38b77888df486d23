package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/skillet-ai/skillet/pkg/rag"
)

// AgentFunc handles a message in agent mode.
type AgentFunc func(ctx context.Context, sessionID, input string) (string, error)

// Session tracks per-session state for the router.
type Session struct {
	ID   string
	Mode Mode
}

// Router dispatches user input to the chat service, the RAG service or
// an agent driver based on each session's mode, and handles the slash
// commands.
type Router struct {
	chat  *Service
	rag   *rag.Service
	agent AgentFunc

	defaultMode Mode

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRouter creates a router. The rag service and agent func may be nil;
// the corresponding modes then report themselves unavailable.
func NewRouter(chatSvc *Service, ragSvc *rag.Service, agent AgentFunc, defaultMode Mode) *Router {
	if defaultMode == "" {
		defaultMode = ModeChat
	}
	return &Router{
		chat:        chatSvc,
		rag:         ragSvc,
		agent:       agent,
		defaultMode: defaultMode,
		sessions:    make(map[string]*Session),
	}
}

func (r *Router) session(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		s = &Session{ID: id, Mode: r.defaultMode}
		r.sessions[id] = s
	}
	return s
}

// SessionMode returns the session's current mode.
func (r *Router) SessionMode(id string) Mode {
	return r.session(id).Mode
}

// Handle processes one user input for the session: commands first, then
// dispatch by mode.
func (r *Router) Handle(ctx context.Context, sessionID, input string) (string, error) {
	sess := r.session(sessionID)

	switch cmd := ParseCommand(input); cmd {
	case CommandNone:
		// fall through to mode dispatch
	case CommandStats:
		return r.stats(ctx, sessionID)
	case CommandClear:
		if r.rag == nil {
			return "The knowledge base is not available.", nil
		}
		if err := r.rag.Clear(ctx); err != nil {
			return "", err
		}
		return "Knowledge base cleared.", nil
	case CommandReset:
		if err := r.chat.Clear(ctx, sessionID); err != nil {
			return "", err
		}
		return "Conversation history cleared.", nil
	case CommandHelp:
		return HelpText(), nil
	default:
		mode, _ := ModeForCommand(cmd)
		r.mu.Lock()
		sess.Mode = mode
		r.mu.Unlock()
		return fmt.Sprintf("Switched to %s mode.", mode), nil
	}

	r.mu.Lock()
	mode := sess.Mode
	r.mu.Unlock()

	switch mode {
	case ModeRAG:
		return r.answerFromKnowledgeBase(ctx, input)
	case ModeAuto:
		return r.route(ctx, sessionID, input)
	case ModeAgent:
		if r.agent == nil {
			return "Agent mode is not available.", nil
		}
		return r.agent(ctx, sessionID, input)
	default:
		return r.chat.Send(ctx, sessionID, input)
	}
}

func (r *Router) answerFromKnowledgeBase(ctx context.Context, input string) (string, error) {
	if r.rag == nil {
		return "The knowledge base is not available.", nil
	}
	ans, err := r.rag.Query(ctx, input)
	if err != nil {
		return "", err
	}
	return ans.Text, nil
}

// route sends the message through RAG when the knowledge base has
// relevant content, otherwise through plain chat.
func (r *Router) route(ctx context.Context, sessionID, input string) (string, error) {
	if r.rag != nil {
		results, err := r.rag.SearchDocuments(ctx, input)
		if err == nil && len(results) > 0 {
			ans, err := r.rag.Query(ctx, input)
			if err != nil {
				return "", err
			}
			return ans.Text, nil
		}
	}
	return r.chat.Send(ctx, sessionID, input)
}

func (r *Router) stats(ctx context.Context, sessionID string) (string, error) {
	count, err := r.chat.MessageCount(ctx, sessionID)
	if err != nil {
		return "", err
	}
	out := fmt.Sprintf("Session %s: %d messages, mode %s.", sessionID, count, r.session(sessionID).Mode)
	if r.rag != nil {
		st, err := r.rag.Stats(ctx)
		if err == nil {
			out += fmt.Sprintf(" Knowledge base: %d chunks in %s (embedder: %s, formats: %s).",
				st.Chunks, st.Collection, st.EmbedderModel, strings.Join(st.Formats, " "))
		}
	}
	return out, nil
}

// HandleImage sends the prompt with the images at the given paths
// attached, encoded for vision models.
func (r *Router) HandleImage(ctx context.Context, sessionID, prompt string, paths ...string) (string, error) {
	if prompt == "" {
		prompt = "Describe this image."
	}
	images := make([]string, 0, len(paths))
	for _, path := range paths {
		encoded, err := EncodeImageFile(path)
		if err != nil {
			return "", err
		}
		images = append(images, encoded)
	}
	return r.chat.Send(ctx, sessionID, prompt, images...)
}
