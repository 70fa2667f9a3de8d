package server

import (
	"bytes"
	"testing"
	"time"

	"github.com/bastiangx/chordserve/pkg/chord"
	"github.com/bastiangx/chordserve/pkg/config"
	"github.com/bastiangx/chordserve/pkg/engine"
	"github.com/bastiangx/chordserve/pkg/layout"
	"github.com/bastiangx/chordserve/pkg/learned"
	"github.com/bastiangx/chordserve/pkg/session"
	"github.com/bastiangx/chordserve/pkg/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

// runServer feeds the encoded requests through a server and returns a
// decoder positioned after the ready message.
func runServer(t *testing.T, seed func(src session.Sources), requests ...any) *msgpack.Decoder {
	t.Helper()
	dir := t.TempDir()
	uw := learned.NewWordStore(0, time.Hour)
	uw.Load(dir, "en")
	ub := learned.NewBigramStore(time.Hour)
	ub.Load(dir, "en")
	sources := session.Sources{UserWords: uw, UserBigrams: ub}
	if seed != nil {
		seed(sources)
	}

	eng := engine.New()
	eng.SetLayout(layout.Default())
	ranker := suggest.NewRanker(ub, nil, uw, nil, 3)
	srv := NewServer(eng, ranker, sources, config.DefaultConfig(), dir)

	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, req := range requests {
		require.NoError(t, enc.Encode(req))
	}
	var out bytes.Buffer
	srv.reader = &in
	srv.writer = &out
	require.NoError(t, srv.Start())

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	require.Equal(t, "ready", ready.Status)
	return dec
}

func TestCompleteRequest(t *testing.T) {
	dec := runServer(t, func(src session.Sources) {
		src.UserWords.Record("hello", false)
		src.UserWords.Record("hello", false)
		src.UserWords.Record("help", false)
	}, Request{ID: "r1", Op: "complete", Prefix: "hel", TextBefore: "so "})

	var resp CompletionResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "r1", resp.ID)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "hello", resp.Suggestions[0].Word)
	assert.Equal(t, uint16(1), resp.Suggestions[0].Rank)
	assert.Equal(t, "help", resp.Suggestions[1].Word)
}

func TestCompleteSentenceStartCapitalizes(t *testing.T) {
	dec := runServer(t, func(src session.Sources) {
		src.UserWords.Record("the", false)
	}, Request{ID: "r1", Op: "complete", Prefix: "th"})

	var resp CompletionResponse
	require.NoError(t, dec.Decode(&resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "The", resp.Suggestions[0].Word)
}

func TestCompleteBigramContext(t *testing.T) {
	dec := runServer(t, func(src session.Sources) {
		src.UserBigrams.Record("the", "quick")
		src.UserWords.Record("quality", false)
	}, Request{ID: "r1", Op: "complete", Prefix: "qu", PrevWord: "the", TextBefore: "the "})

	var resp CompletionResponse
	require.NoError(t, dec.Decode(&resp))
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "quick", resp.Suggestions[0].Word, "bigram match outranks unigram")
}

func TestCompleteMissingPrefix(t *testing.T) {
	dec := runServer(t, nil, Request{ID: "r1", Op: "complete"})

	var resp ErrorResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, 400, resp.Code)
}

func TestChordCommitsLetter(t *testing.T) {
	// Ref 8 is "h" on the built-in layout.
	dec := runServer(t, nil,
		Request{ID: "c1", Op: "chord", Bitmask: chord.ToChord(8), TextBefore: ""})

	var resp EditResponse
	require.NoError(t, dec.Decode(&resp))
	assert.True(t, resp.Handled)
	assert.Equal(t, "h", resp.Text)
	assert.Equal(t, 0, resp.DeleteLeft)
	assert.Equal(t, "ABC", resp.State.Mode)
}

func TestChordBackspaceDeletes(t *testing.T) {
	// Ref 28 is backspace.
	dec := runServer(t, nil,
		Request{ID: "c1", Op: "chord", Bitmask: chord.ToChord(28), TextBefore: "abc"})

	var resp EditResponse
	require.NoError(t, dec.Decode(&resp))
	assert.True(t, resp.Handled)
	assert.Empty(t, resp.Text)
	assert.Equal(t, 1, resp.DeleteLeft)
}

func TestChordShiftTogglesState(t *testing.T) {
	// Ref 30 is shift.
	dec := runServer(t, nil,
		Request{ID: "c1", Op: "chord", Bitmask: chord.ToChord(30)})

	var resp EditResponse
	require.NoError(t, dec.Decode(&resp))
	assert.True(t, resp.Handled)
	assert.True(t, resp.State.Shift)
}

func TestChordOutOfRange(t *testing.T) {
	dec := runServer(t, nil, Request{ID: "c1", Op: "chord", Bitmask: 64})

	var resp ErrorResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, 400, resp.Code)
}

func TestAcceptReplacesTypedPrefix(t *testing.T) {
	dec := runServer(t, nil,
		// Type "h", then "e", then accept "hello".
		Request{ID: "c1", Op: "chord", Bitmask: chord.ToChord(8)},
		Request{ID: "c2", Op: "chord", Bitmask: chord.ToChord(5), TextBefore: "h"},
		Request{ID: "a1", Op: "accept", Word: "hello", TextBefore: "he"})

	var first, second, accept EditResponse
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	require.NoError(t, dec.Decode(&accept))

	assert.Equal(t, 2, accept.DeleteLeft, "the composed prefix is removed")
	assert.Equal(t, "hello ", accept.Text)
}

func TestStateRequest(t *testing.T) {
	dec := runServer(t, nil,
		Request{ID: "c1", Op: "chord", Bitmask: chord.ToChord(32)}, // mode_toggle
		Request{ID: "s1", Op: "state"})

	var edit EditResponse
	require.NoError(t, dec.Decode(&edit))
	var resp StateResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "s1", resp.ID)
	assert.Equal(t, "NUM", resp.State.Mode)
}

func TestHealthRequest(t *testing.T) {
	dec := runServer(t, nil, Request{ID: "h1", Op: "health"})

	var resp StatusResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestUnknownOp(t *testing.T) {
	dec := runServer(t, nil, Request{ID: "x1", Op: "bogus"})

	var resp ErrorResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, 400, resp.Code)
	assert.Contains(t, resp.Error, "bogus")
}

func TestMalformedFrameDoesNotKillServer(t *testing.T) {
	dec := runServer(t, nil,
		"just a string, not a request map",
		Request{ID: "h1", Op: "health"})

	var errResp ErrorResponse
	require.NoError(t, dec.Decode(&errResp))
	assert.Equal(t, 400, errResp.Code)

	var resp StatusResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
}
