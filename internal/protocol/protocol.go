package protocol

// Every frame on the wire is an object whose "type" field names the message.
//
//   Client → Server:
//     join   {"type":"join","name":"blob","mode":"casual"}
//     input  {"type":"input","vx":0.7,"vy":-0.7,"t":1712.5}   (t optional, echoed in pong)
//   Server → Client:
//     welcome     {"type":"welcome","id":"…","world":{"w":3000,"h":3000},"tickMs":50}
//     joined      {"type":"joined","roomId":"casual","mode":"casual"}
//     state       {"type":"state","you":{…},"players":[…],"pellets":[…],"board":[…],"meta":{…},"serverTime":…}
//     kicked      {"type":"kicked","reason":"afk"}
//     afk_warn    {"type":"afk_warn","secondsRemaining":2}
//     pong        {"type":"pong","t":1712.5,"serverTime":…}
//     match_start {"type":"match_start","endsAt":…}
//     match_end   {"type":"match_end","winnerId":"…","winnerName":"…"}
//     error       {"type":"error","message":"Server full"}
//
// Times on the wire are Unix milliseconds. Coordinates are rounded to one
// decimal place.

const (
	TypeJoin  = "join"
	TypeInput = "input"

	TypeWelcome    = "welcome"
	TypeJoined     = "joined"
	TypeState      = "state"
	TypeKicked     = "kicked"
	TypeAFKWarn    = "afk_warn"
	TypePong       = "pong"
	TypeMatchStart = "match_start"
	TypeMatchEnd   = "match_end"
	TypeError      = "error"
)

// Room modes
const (
	ModeCasual       = "casual"
	ModeBattleRoyale = "battle-royale"
)

// Room states
const (
	StateWaiting = "waiting"
	StateActive  = "active"
)

// Kick reasons
const (
	KickAFK   = "afk"
	KickEaten = "eaten"
)

// ParseMode maps a requested mode onto a known one. Anything that is not
// battle-royale joins the casual room.
func ParseMode(s string) string {
	if s == ModeBattleRoyale {
		return ModeBattleRoyale
	}
	return ModeCasual
}

// JoinRequest is a validated join message
type JoinRequest struct {
	Name string
	Mode string
}

// InputRequest is a validated input message. HasT reports whether the client
// supplied a numeric timestamp to be echoed back.
type InputRequest struct {
	VX, VY float64
	T      float64
	HasT   bool
}

// Inbound is one decoded client message. Exactly one of Join or Input is
// meaningful, selected by Type.
type Inbound struct {
	Type  string
	Join  JoinRequest
	Input InputRequest
}

// Player is the wire form of a blob, used both for "you" and for neighbours
type Player struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Mass   float64 `json:"mass"`
	Radius float64 `json:"r"`
	Alive  bool    `json:"alive"`
}

type Pellet struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// BoardEntry is a single leaderboard row
type BoardEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Mass int    `json:"mass"`
}

type Zone struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// Meta describes the room. Required, TimeLeft and Zone are only filled for
// battle-royale rooms; TimeLeft is in seconds and only set while a match runs.
type Meta struct {
	Mode     string  `json:"mode"`
	State    string  `json:"state"`
	Alive    int     `json:"alive"`
	Required int     `json:"required,omitempty"`
	TimeLeft float64 `json:"timeLeft,omitempty"`
	Zone     *Zone   `json:"zone,omitempty"`
}

// State is the per-tick, per-recipient snapshot
type State struct {
	Type       string       `json:"type"`
	You        Player       `json:"you"`
	Players    []Player     `json:"players"`
	Pellets    []Pellet     `json:"pellets"`
	Board      []BoardEntry `json:"board"`
	Meta       Meta         `json:"meta"`
	ServerTime int64        `json:"serverTime"`
}

type WorldSize struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Welcome is sent once, right after the connection is accepted
type Welcome struct {
	Type   string    `json:"type"`
	ID     string    `json:"id"`
	World  WorldSize `json:"world"`
	TickMS int64     `json:"tickMs"`
}

type Joined struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	Mode   string `json:"mode"`
}

type Kicked struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type AFKWarn struct {
	Type             string `json:"type"`
	SecondsRemaining int    `json:"secondsRemaining"`
}

type Pong struct {
	Type       string  `json:"type"`
	T          float64 `json:"t"`
	ServerTime int64   `json:"serverTime"`
}

type MatchStart struct {
	Type   string `json:"type"`
	EndsAt int64  `json:"endsAt"`
}

// MatchEnd names the winner, if the match produced one
type MatchEnd struct {
	Type       string `json:"type"`
	WinnerID   string `json:"winnerId,omitempty"`
	WinnerName string `json:"winnerName,omitempty"`
}

type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
