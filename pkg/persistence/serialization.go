package persistence

import (
	"encoding/json"
	"fmt"
)

// MarshalChannelState serializes a ChannelState to JSON bytes.
func MarshalChannelState(cs *ChannelState) ([]byte, error) {
	if cs == nil {
		return nil, fmt.Errorf("cannot marshal nil ChannelState")
	}

	data, err := json.Marshal(cs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ChannelState to JSON: %w", err)
	}

	return data, nil
}

// UnmarshalChannelState deserializes a ChannelState from JSON bytes.
func UnmarshalChannelState(data []byte) (*ChannelState, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var cs ChannelState
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to ChannelState: %w", err)
	}
	if _, err := cs.NonceValue(); err != nil {
		return nil, err
	}

	return &cs, nil
}
