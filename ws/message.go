package ws

import "encoding/json"

// InboundEnvelope is the generic envelope for all client-to-server messages.
// The Type field is used for routing; Raw holds the full JSON payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture the raw payload.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// --- Client-to-Server intent payloads ---

// JoinMsg is sent by the client to take a seat. Name is optional.
type JoinMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// StartGameMsg requests a new deal. Difficulty is optional ("easy"/"hard").
type StartGameMsg struct {
	Type       string `json:"type"`
	Difficulty string `json:"difficulty"`
}

// FlipCardMsg requests a flip of the card at CardID (deck index).
type FlipCardMsg struct {
	Type   string `json:"type"`
	CardID int    `json:"cardId"`
}

// EndTurnMsg passes the turn to the other seat. No payload.
type EndTurnMsg struct {
	Type string `json:"type"`
}

// ResetGameMsg returns the room to its idle state. No payload.
type ResetGameMsg struct {
	Type string `json:"type"`
}
