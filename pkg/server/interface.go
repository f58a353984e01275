/*
Package server implements msgpack IPC for spelling correction.

Clients write msgpack maps to stdin and read one msgpack map per request from
stdout. Requests are handled one at a time in arrival order, and every
response echoes the request id. Timing fields are in microseconds.

# IPC

A correction request names the word and optionally caps the ranked
candidates returned:

	{"id": "req_001", "w": "speling", "l": 3}

The server answers with the chosen word, the tier it came from and the
ranked candidates of that tier:

	{"id": "req_001", "i": "speling", "c": "spelling", "tier": "edit1", "p": 0.00012,
	 "s": [{"w": "spelling", "n": 40, "p": 0.00012}, {"w": "spewing", "n": 2, "p": 0.000006}], "t": 85}

Other actions are selected with the "action" field:

	{"id": "b1", "action": "batch", "ws": ["korrectud", "peotry"]}
	{"id": "v1", "action": "vocab", "p": "spel", "l": 5}
	{"id": "s1", "action": "stats"}
	{"id": "h1", "action": "health"}

Failed requests get {"id", "e", "c"} with code 400 for bad input and 500
for internal errors. The server keeps reading after either.
*/
package server

// Actions understood by the server. An empty action means ActionCorrect.
const (
	ActionCorrect = "correct"
	ActionBatch   = "batch"
	ActionVocab   = "vocab"
	ActionStats   = "stats"
	ActionHealth  = "health"
)

// Request is the single request shape; fields unused by an action are ignored.
type Request struct {
	ID     string   `msgpack:"id"`
	Action string   `msgpack:"action,omitempty"`
	Word   string   `msgpack:"w,omitempty"`
	Words  []string `msgpack:"ws,omitempty"`
	Prefix string   `msgpack:"p,omitempty"`
	Limit  int      `msgpack:"l,omitempty"`
}

// Suggestion is one ranked candidate.
type Suggestion struct {
	Word        string  `msgpack:"w"`
	Count       int     `msgpack:"n"`
	Probability float64 `msgpack:"p"`
}

// CorrectionResponse answers a correct request.
type CorrectionResponse struct {
	ID          string       `msgpack:"id"`
	Input       string       `msgpack:"i"`
	Correction  string       `msgpack:"c"`
	Tier        string       `msgpack:"tier"`
	Probability float64      `msgpack:"p"`
	Suggestions []Suggestion `msgpack:"s"`
	TimeTaken   int64        `msgpack:"t"`
}

// BatchResponse holds one CorrectionResponse per input word, in order.
// Inner responses carry no id.
type BatchResponse struct {
	ID        string               `msgpack:"id"`
	Results   []CorrectionResponse `msgpack:"r"`
	TimeTaken int64                `msgpack:"t"`
}

// VocabEntry is a known word and its count.
type VocabEntry struct {
	Word  string `msgpack:"w"`
	Count int    `msgpack:"n"`
}

// VocabResponse lists known words under a prefix, most frequent first.
type VocabResponse struct {
	ID      string       `msgpack:"id"`
	Entries []VocabEntry `msgpack:"s"`
	Count   int          `msgpack:"c"`
}

// StatsResponse describes the loaded model.
type StatsResponse struct {
	ID    string         `msgpack:"id"`
	Words int            `msgpack:"words"`
	Total int            `msgpack:"total"`
	Top   []VocabEntry   `msgpack:"top"`
	Cache map[string]int `msgpack:"cache,omitempty"`
}

// StatusResponse is sent for health checks and once at startup.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// CorrectionError holds basic error information for failed requests
type CorrectionError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
