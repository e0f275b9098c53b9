package server

// joinResponse seeds a client with its id and the opening snapshot.
type joinResponse struct {
	ID        string        `json:"id"`
	Snapshot  WorldSnapshot `json:"snapshot"`
	Config    WorldConfig   `json:"config"`
	TickRate  int           `json:"tickRate"`
	Heartbeat int64         `json:"heartbeatMillis"`
}

// stateMessage is broadcast to every subscriber once per tick.
type stateMessage struct {
	Type       string         `json:"type"`
	Snapshot   WorldSnapshot  `json:"snapshot"`
	Sounds     []SoundTrigger `json:"sounds,omitempty"`
	ServerTime int64          `json:"serverTime"`
}

// clientMessage is the union of everything a client can send over the socket.
type clientMessage struct {
	Type   string  `json:"type"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Slot   string  `json:"slot,omitempty"`
	SentAt int64   `json:"sentAt,omitempty"`
}

type heartbeatMessage struct {
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rtt"`
}

type diagnosticsPayload struct {
	Status        string `json:"status"`
	ServerTime    int64  `json:"serverTime"`
	Tick          uint64 `json:"tick"`
	Phase         Phase  `json:"phase"`
	TickRate      int    `json:"tickRate"`
	Heartbeat     int64  `json:"heartbeatMillis"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rttMillis"`
	Subscribers   int    `json:"subscribers"`
}
