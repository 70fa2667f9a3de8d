/*
Package server implements msgpack IPC for chord resolution and word
completion.

The protocol uses binary msgpack encoding over stdin/stdout. Messages
are processed synchronously with timing info included in responses. Each
request carries an ID, an op, and the fields that op needs; the client
owns the text field, so requests that depend on cursor context carry the
text before the cursor and responses describe the edits to apply.

# IPC

Completion requests use this structure:

	{"id": "req_001", "op": "complete", "p": "qu", "pw": "the", "l": 3}

The server responds with suggestions in rank order:

	{"id": "req_001", "s": [{"w": "quick", "r": 1}], "c": 1, "t": 145}

Chord requests carry the raw six-bit bitmask plus cursor context:

	{"id": "ch_001", "op": "chord", "b": 24, "tb": "the "}

and the response describes the edit: text to insert, runes to delete,
the refreshed suggestion strip, and the mode state after the chord.

Accept requests commit a tapped suggestion; state requests report the
mode state; lang requests switch language; health checks liveness.
*/
package server

// Request is the envelope for every incoming message. Fields beyond ID
// and Op are op-specific and ignored elsewhere.
type Request struct {
	ID string `msgpack:"id"`
	Op string `msgpack:"op"`

	// complete
	Prefix   string `msgpack:"p,omitempty"`
	PrevWord string `msgpack:"pw,omitempty"`
	Limit    int    `msgpack:"l,omitempty"`

	// chord
	Bitmask int `msgpack:"b,omitempty"`

	// accept
	Word string `msgpack:"w,omitempty"`

	// chord, accept, complete: text before the cursor, for sentence and
	// previous-word detection
	TextBefore string `msgpack:"tb,omitempty"`

	// lang
	Lang string `msgpack:"lang,omitempty"`
}

// Suggestion is one ranked completion.
type Suggestion struct {
	Word string `msgpack:"w"`
	Rank uint16 `msgpack:"r"`
}

// CompletionResponse answers a complete request.
type CompletionResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []Suggestion `msgpack:"s"`
	Count       int          `msgpack:"c"`
	TimeTaken   int64        `msgpack:"t"`
}

// StateInfo is the mode state snapshot included in edit responses.
type StateInfo struct {
	Mode  string `msgpack:"m"`
	Shift bool   `msgpack:"sh"`
	Symb  bool   `msgpack:"sy"`
}

// EditResponse answers chord and accept requests. Apply the delete
// first, then insert the text.
type EditResponse struct {
	ID          string       `msgpack:"id"`
	Handled     bool         `msgpack:"ok"`
	Text        string       `msgpack:"txt,omitempty"`
	DeleteLeft  int          `msgpack:"dl,omitempty"`
	DeleteRight int          `msgpack:"dr,omitempty"`
	Suggestions []Suggestion `msgpack:"s,omitempty"`
	State       StateInfo    `msgpack:"st"`
	TimeTaken   int64        `msgpack:"t"`
}

// StateResponse answers a state request.
type StateResponse struct {
	ID          string    `msgpack:"id"`
	State       StateInfo `msgpack:"st"`
	CurrentWord string    `msgpack:"cw,omitempty"`
	Lang        string    `msgpack:"lang,omitempty"`
}

// StatusResponse answers lang and health requests.
type StatusResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
}

// ErrorResponse reports a failed request.
type ErrorResponse struct {
	ID    string `msgpack:"id,omitempty"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
