package models

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestTimerStateRemainingAt(t *testing.T) {
    base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
    state := TimerState{RemainingSeconds: 100, LastUpdate: base}

    assert.Equal(t, 100, state.RemainingAt(base), "no elapsed time, no decay")
    assert.Equal(t, 70, state.RemainingAt(base.Add(30*time.Second)))
    assert.Equal(t, 0, state.RemainingAt(base.Add(100*time.Second)))
    assert.Equal(t, 0, state.RemainingAt(base.Add(5*time.Hour)), "clamps at zero, never negative")
}

func TestTimerStateRemainingAtClockSkew(t *testing.T) {
    base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
    state := TimerState{RemainingSeconds: 60, LastUpdate: base}

    // A reader clock behind the writer clock must not inflate the value.
    assert.Equal(t, 60, state.RemainingAt(base.Add(-10*time.Second)))
}
