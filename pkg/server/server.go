package server

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"
	"unicode"

	"github.com/bastiangx/chordserve/internal/logger"
	"github.com/bastiangx/chordserve/internal/utils"
	"github.com/bastiangx/chordserve/pkg/config"
	"github.com/bastiangx/chordserve/pkg/engine"
	"github.com/bastiangx/chordserve/pkg/session"
	"github.com/bastiangx/chordserve/pkg/suggest"
	"github.com/vmihailenco/msgpack/v5"
)

var srvLog = logger.New("ipc")

// Server handles the IPC for chord resolution and completions. Requests
// are processed one at a time, so the session needs no locking.
type Server struct {
	sess    *session.Session
	ranker  *suggest.Ranker
	cfg     *config.Config
	host    *ipcHost
	dataDir string
	reader  io.Reader
	writer  io.Writer
}

// NewServer wires a session over stdin/stdout IPC. The server owns the
// session's host side: each request brings the client's cursor context
// and the response carries the edits back.
func NewServer(eng *engine.Engine, ranker *suggest.Ranker, sources session.Sources, cfg *config.Config, dataDir string) *Server {
	host := &ipcHost{}
	return &Server{
		sess:    session.New(eng, ranker, sources, host),
		ranker:  ranker,
		cfg:     cfg,
		host:    host,
		dataDir: dataDir,
		reader:  os.Stdin,
		writer:  os.Stdout,
	}
}

// Session exposes the server's session, mainly for startup wiring.
func (s *Server) Session() *session.Session { return s.sess }

// Start begins listening for IPC requests. Returns nil on EOF after
// flushing the learned stores.
func (s *Server) Start() error {
	srvLog.Debug("Starting server.")

	enc := msgpack.NewEncoder(s.writer)
	s.sendResponse(enc, StatusResponse{Status: "ready"})

	dec := msgpack.NewDecoder(bufio.NewReader(s.reader))
	for {
		// Decode to a generic value first so a frame that does not match
		// the Request shape is consumed whole and the stream stays
		// aligned for the next one.
		raw, err := dec.DecodeInterface()
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				s.sess.Close()
				return nil
			}
			srvLog.Errorf("Reading from stdin: %v", err)
			s.sess.Close()
			return err
		}

		var req Request
		if data, err := msgpack.Marshal(raw); err != nil {
			s.sendError(enc, "", "Invalid request encoding", 400)
			continue
		} else if err := msgpack.Unmarshal(data, &req); err != nil {
			s.sendError(enc, "", "Invalid request shape", 400)
			srvLog.Errorf("Unmarshaling request: %v", err)
			continue
		}
		s.handleRequest(enc, req)
	}
}

func (s *Server) handleRequest(enc *msgpack.Encoder, req Request) {
	switch req.Op {
	case "complete":
		s.handleComplete(enc, req)
	case "chord":
		s.handleChord(enc, req)
	case "accept":
		s.handleAccept(enc, req)
	case "state":
		st := s.sess.State()
		s.sendResponse(enc, StateResponse{
			ID:          req.ID,
			State:       stateInfo(st),
			CurrentWord: s.sess.CurrentWord(),
			Lang:        s.sess.Language(),
		})
	case "lang":
		if req.Lang == "" {
			s.sendError(enc, req.ID, "Missing 'lang' parameter", 400)
			return
		}
		s.sess.SwitchLanguage(s.dataDir, req.Lang)
		s.sendResponse(enc, StatusResponse{ID: req.ID, Status: "ok"})
	case "health":
		s.sendResponse(enc, StatusResponse{ID: req.ID, Status: "ok"})
	default:
		s.sendError(enc, req.ID, fmt.Sprintf("Unknown op: %s", req.Op), 400)
	}
}

// handleComplete answers a stateless completion query: prefix, optional
// previous word, optional text before the prefix for sentence detection.
func (s *Server) handleComplete(enc *msgpack.Encoder, req Request) {
	prefix := req.Prefix
	if prefix == "" {
		s.sendError(enc, req.ID, "Missing 'p' parameter", 400)
		return
	}
	if len(prefix) < s.cfg.Server.MinPrefix {
		s.sendError(enc, req.ID, fmt.Sprintf("Prefix must be at least %d characters", s.cfg.Server.MinPrefix), 400)
		return
	}
	if len(prefix) > s.cfg.Server.MaxPrefix {
		s.sendError(enc, req.ID, fmt.Sprintf("Prefix exceeds maximum length of %d characters", s.cfg.Server.MaxPrefix), 400)
		return
	}

	limit := req.Limit
	if limit < 1 {
		limit = s.cfg.Suggest.MaxSuggestions
	}
	if limit > s.cfg.Server.MaxLimit {
		limit = s.cfg.Server.MaxLimit
	}

	start := time.Now()
	words := s.ranker.Rank(prefix, req.PrevWord, sentenceStart(req.TextBefore))
	if len(words) > limit {
		words = words[:limit]
	}
	elapsed := time.Since(start)

	s.sendResponse(enc, CompletionResponse{
		ID:          req.ID,
		Suggestions: toSuggestions(words),
		Count:       len(words),
		TimeTaken:   elapsed.Microseconds(),
	})
}

func (s *Server) handleChord(enc *msgpack.Encoder, req Request) {
	if req.Bitmask < 1 || req.Bitmask > 63 {
		s.sendError(enc, req.ID, fmt.Sprintf("Chord bitmask out of range: %d", req.Bitmask), 400)
		return
	}

	start := time.Now()
	s.host.reset(req.TextBefore)
	handled := s.sess.HandleChord(req.Bitmask)
	elapsed := time.Since(start)

	s.sendResponse(enc, s.host.editResponse(req.ID, handled, s.sess.State(), elapsed))
}

func (s *Server) handleAccept(enc *msgpack.Encoder, req Request) {
	if req.Word == "" {
		s.sendError(enc, req.ID, "Missing 'w' parameter", 400)
		return
	}

	start := time.Now()
	s.host.reset(req.TextBefore)
	s.sess.AcceptSuggestion(req.Word)
	elapsed := time.Since(start)

	s.sendResponse(enc, s.host.editResponse(req.ID, true, s.sess.State(), elapsed))
}

func (s *Server) sendResponse(enc *msgpack.Encoder, response any) {
	if err := enc.Encode(response); err != nil {
		srvLog.Errorf("Encoding response: %v", err)
	}
}

func (s *Server) sendError(enc *msgpack.Encoder, id, message string, code int) {
	s.sendResponse(enc, ErrorResponse{ID: id, Error: message, Code: code})
}

func stateInfo(st engine.State) StateInfo {
	return StateInfo{Mode: st.Mode.String(), Shift: st.Shift, Symb: st.Symb}
}

func toSuggestions(words []string) []Suggestion {
	result := make([]Suggestion, len(words))
	for i, w := range words {
		result[i] = Suggestion{Word: w, Rank: uint16(i + 1)}
	}
	return result
}

// sentenceStart reports whether text ending at the completion point ends
// a sentence: empty, or last non-whitespace rune is sentence punctuation.
func sentenceStart(textBefore string) bool {
	runes := []rune(textBefore)
	for i := len(runes) - 1; i >= 0; i-- {
		if !unicode.IsSpace(runes[i]) {
			return utils.IsSentenceEnd(runes[i])
		}
	}
	return true
}

// ipcHost implements session.Host over request/response cycles. Each
// request resets it with the client's text before the cursor; the edits
// the session makes are collected and shipped back in the response.
type ipcHost struct {
	base        []rune // client text before the cursor
	baseDeleted int    // runes removed from base
	inserted    []rune // text committed after the deletions
	delRight    int
	suggestions []string
}

func (h *ipcHost) reset(textBefore string) {
	h.base = []rune(textBefore)
	h.baseDeleted = 0
	h.inserted = h.inserted[:0]
	h.delRight = 0
	h.suggestions = nil
}

func (h *ipcHost) CommitText(t string) {
	h.inserted = append(h.inserted, []rune(t)...)
}

func (h *ipcHost) DeleteSurrounding(before, after int) {
	// Deletions eat freshly inserted text first, then the client's.
	if n := len(h.inserted); n > 0 {
		if before >= n {
			before -= n
			h.inserted = h.inserted[:0]
		} else {
			h.inserted = h.inserted[:n-before]
			before = 0
		}
	}
	if before > len(h.base) {
		before = len(h.base)
	}
	h.base = h.base[:len(h.base)-before]
	h.baseDeleted += before
	h.delRight += after
}

func (h *ipcHost) TextBeforeCursor(n int) string {
	text := append(append([]rune{}, h.base...), h.inserted...)
	if n > len(text) {
		n = len(text)
	}
	return string(text[len(text)-n:])
}

func (h *ipcHost) SetSuggestions(words []string) { h.suggestions = words }

func (h *ipcHost) StateChanged(engine.State) {}

func (h *ipcHost) editResponse(id string, handled bool, st engine.State, elapsed time.Duration) EditResponse {
	return EditResponse{
		ID:          id,
		Handled:     handled,
		Text:        string(h.inserted),
		DeleteLeft:  h.baseDeleted,
		DeleteRight: h.delRight,
		Suggestions: toSuggestions(h.suggestions),
		State:       stateInfo(st),
		TimeTaken:   elapsed.Microseconds(),
	}
}

var _ session.Host = (*ipcHost)(nil)
