package livelink

import "time"

// BrainStatus is the execution state of the remote brain as mirrored
// locally. The mirror is not authoritative; it only reflects what the
// link has been told.
type BrainStatus string

const (
	StatusInitializing BrainStatus = "initializing"
	StatusActive       BrainStatus = "active"
	StatusThinking     BrainStatus = "thinking"
	StatusStopped      BrainStatus = "stopped"
	StatusError        BrainStatus = "error"
)

// FlowNode is one node of the brain's active flow graph
type FlowNode struct {
	ID    string                 `json:"id"`
	Type  string                 `json:"type,omitempty"`
	Label string                 `json:"label,omitempty"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// FlowEdge is one directed edge of the brain's active flow graph
type FlowEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// BrainState is the local mirror of the remote brain
type BrainState struct {
	ID            string      `json:"id"`
	Status        BrainStatus `json:"state"`
	CurrentFlowID string      `json:"currentFlowId,omitempty"`
	ThoughtCount  int         `json:"thoughtCount"`
	LastThought   time.Time   `json:"lastThought,omitempty"`
	Nodes         []FlowNode  `json:"nodes,omitempty"`
	Edges         []FlowEdge  `json:"edges,omitempty"`
	LastError     string      `json:"lastError,omitempty"`
}

// clone returns a copy safe to hand outside the client's lock
func (s *BrainState) clone() *BrainState {
	if s == nil {
		return nil
	}
	dup := *s
	dup.Nodes = append([]FlowNode(nil), s.Nodes...)
	dup.Edges = append([]FlowEdge(nil), s.Edges...)
	return &dup
}

// brainSnapshot is the payload shape of a full-state command reply
type brainSnapshot struct {
	ID           string `json:"id"`
	State        string `json:"state"`
	ThoughtCount int    `json:"thoughtCount"`
	CurrentFlow  *struct {
		ID    string     `json:"id"`
		Nodes []FlowNode `json:"nodes"`
		Edges []FlowEdge `json:"edges"`
	} `json:"currentFlow"`
}
