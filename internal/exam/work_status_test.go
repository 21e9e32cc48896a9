package exam

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestIsWorking(t *testing.T) {
    assert.True(t, IsWorking("Mengerjakan Ujian Matematika"))
    assert.True(t, IsWorking(StatusWorkingPrefix))
    assert.False(t, IsWorking(StatusIdle))
    assert.False(t, IsWorking(""))
    assert.False(t, IsWorking("Selesai"))
}

func TestLapseDelayWindow(t *testing.T) {
    now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

    tests := []struct {
        name      string
        start     time.Time
        wantDelay time.Duration
        wantArmed bool
    }{
        {"start in the past", now.Add(-5 * time.Minute), 0, false},
        {"start right now", now, 0, false},
        {"just under one minute", now.Add(59 * time.Second), 0, false},
        {"exactly one minute", now.Add(1 * time.Minute), 11 * time.Minute, true},
        {"five minutes out", now.Add(5 * time.Minute), 15 * time.Minute, true},
        {"exactly ten minutes", now.Add(10 * time.Minute), 20 * time.Minute, true},
        {"just over ten minutes", now.Add(10*time.Minute + time.Second), 0, false},
        {"an hour out", now.Add(time.Hour), 0, false},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            delay, armed := lapseDelay(tt.start, now)
            assert.Equal(t, tt.wantArmed, armed)
            if armed {
                assert.Equal(t, tt.wantDelay, delay)
            }
        })
    }
}
