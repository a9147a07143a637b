package livelink

// The exposed operations are thin envelope builders over Send and
// inherit its failure mode: on a closed link they are logged and
// dropped.

// ConnectToBrain asks the brain for its full state, which rebuilds
// the local mirror when the reply arrives
func (c *Client) ConnectToBrain(brainID string) {
	c.Send(Envelope{
		Type:    TypeCommand,
		BrainID: brainID,
		Payload: map[string]interface{}{
			"command": "connect-brain",
		},
	})
}

// SaveFlow pushes the mirrored nodes and edges back to the brain
func (c *Client) SaveFlow() {
	state := c.State()
	if state == nil {
		c.logger.Warn("No brain mirrored, nothing to save")
		return
	}

	c.Send(Envelope{
		Type: TypeCommand,
		Payload: map[string]interface{}{
			"command": "save-flow",
			"flowId":  state.CurrentFlowID,
			"nodes":   state.Nodes,
			"edges":   state.Edges,
		},
	})
}

// NavigateToFlow moves the brain to another flow
func (c *Client) NavigateToFlow(flowID string) {
	c.Send(Envelope{
		Type: TypeCommand,
		Payload: map[string]interface{}{
			"command": "navigate-to-flow",
			"flowId":  flowID,
		},
	})
}

// AddNode adds a node to the brain's active flow
func (c *Client) AddNode(node FlowNode) {
	c.Send(Envelope{
		Type: TypeCommand,
		Payload: map[string]interface{}{
			"command": "add-node",
			"node":    node,
		},
	})
}

// AddEdge adds an edge to the brain's active flow
func (c *Client) AddEdge(edge FlowEdge) {
	c.Send(Envelope{
		Type: TypeCommand,
		Payload: map[string]interface{}{
			"command": "add-edge",
			"edge":    edge,
		},
	})
}

// SubscribeToThoughts subscribes to the brain's thought stream
func (c *Client) SubscribeToThoughts() {
	c.Send(Envelope{
		Type: TypeStream,
		Payload: map[string]interface{}{
			"stream": StreamThought,
			"action": "subscribe",
		},
	})
}

// ListBrains queries the remote process for its known brains
func (c *Client) ListBrains() {
	c.Send(Envelope{
		Type: TypeQuery,
		Payload: map[string]interface{}{
			"query": "list-brains",
		},
	})
}
