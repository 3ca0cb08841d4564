package agent

import (
	"encoding/json"
	"testing"
)

func TestLoadAgentCard(t *testing.T) {
	if err := LoadAgentCard(); err != nil {
		t.Fatalf("LoadAgentCard() error = %v", err)
	}

	var card map[string]interface{}
	if err := json.Unmarshal(AgentCardData, &card); err != nil {
		t.Fatalf("agent card is not valid JSON: %v", err)
	}

	for _, field := range []string{"name", "description", "version", "capabilities", "endpoints", "skills"} {
		if _, ok := card[field]; !ok {
			t.Errorf("agent card is missing %q", field)
		}
	}
}
