package utils

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestCompareVersions(t *testing.T) {
    tests := []struct {
        current string
        target  string
        want    int
    }{
        {"1.2.3", "1.2.3", 0},
        {"1.2.4", "1.2.3", 1},
        {"1.2.2", "1.2.3", -1},
        {"2.0", "1.9.9", 1},
        {"1.2", "1.2.0", 0},
        {"1.2.3-beta", "1.2.3", 0},
        {"", "1.0", -1},
        {"1.0", "", 1},
        {"", "", 0},
        {"10.0", "9.9", 1},
    }
    for _, tt := range tests {
        assert.Equal(t, tt.want, CompareVersions(tt.current, tt.target),
            "CompareVersions(%q, %q)", tt.current, tt.target)
    }
}
