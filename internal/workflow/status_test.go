package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nurpe/linen-admin/internal/model"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		from, to model.BatchStatus
		ok       bool
	}{
		{model.BatchStatusPickup, model.BatchStatusWashing, true},
		{model.BatchStatusWashing, model.BatchStatusCompleted, true},
		{model.BatchStatusWashing, model.BatchStatusDelivered, true},
		{model.BatchStatusCompleted, model.BatchStatusDelivered, true},

		{model.BatchStatusPickup, model.BatchStatusDelivered, false},
		{model.BatchStatusPickup, model.BatchStatusCompleted, false},
		{model.BatchStatusPickup, model.BatchStatusPickup, false},
		{model.BatchStatusWashing, model.BatchStatusPickup, false},
		{model.BatchStatusCompleted, model.BatchStatusWashing, false},
		{model.BatchStatusDelivered, model.BatchStatusPickup, false},
		{model.BatchStatusDelivered, model.BatchStatusWashing, false},
		{model.BatchStatusDelivered, model.BatchStatusCompleted, false},
		{model.BatchStatusDelivered, model.BatchStatusDelivered, false},
		{model.BatchStatusWashing, "dried", false},
		{"unknown", model.BatchStatusWashing, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := Validate(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidTransition)
		})
	}
}

func TestNextStates(t *testing.T) {
	assert.Equal(t, []model.BatchStatus{model.BatchStatusWashing}, NextStates(model.BatchStatusPickup))
	assert.Equal(t, []model.BatchStatus{model.BatchStatusCompleted, model.BatchStatusDelivered}, NextStates(model.BatchStatusWashing))
	assert.Empty(t, NextStates(model.BatchStatusDelivered))

	next := NextStates(model.BatchStatusWashing)
	next[0] = model.BatchStatusPickup
	assert.Equal(t, model.BatchStatusCompleted, NextStates(model.BatchStatusWashing)[0])
}

func TestTerminal(t *testing.T) {
	assert.True(t, Terminal(model.BatchStatusDelivered))
	assert.False(t, Terminal(model.BatchStatusCompleted))
	assert.False(t, Terminal("unknown"))
	assert.Equal(t, model.BatchStatusPickup, Initial)
}
