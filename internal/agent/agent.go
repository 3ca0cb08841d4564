package agent

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed agent.json
var agentCardJSON []byte

// AgentCardData holds the validated agent card once LoadAgentCard succeeds.
var AgentCardData []byte

var (
	loadOnce sync.Once
	loadErr  error
)

// LoadAgentCard validates the embedded card and publishes it in AgentCardData.
func LoadAgentCard() error {
	loadOnce.Do(func() {
		var card map[string]interface{}
		if err := json.Unmarshal(agentCardJSON, &card); err != nil {
			loadErr = fmt.Errorf("invalid agent card: %w", err)
			return
		}
		AgentCardData = agentCardJSON
	})
	return loadErr
}
