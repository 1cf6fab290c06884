package testutil

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/InfringeScope/internal/domain/analysis"
)

// MockOracle is a testify mock for analysis.Oracle.
type MockOracle struct {
	mock.Mock
}

func (m *MockOracle) Score(ctx context.Context, prompt string, shape analysis.OutputShape) (json.RawMessage, error) {
	args := m.Called(ctx, prompt, shape)
	var raw json.RawMessage
	switch v := args.Get(0).(type) {
	case json.RawMessage:
		raw = v
	case string:
		raw = json.RawMessage(v)
	case []byte:
		raw = v
	}
	return raw, args.Error(1)
}

//Personal.AI order the ending
