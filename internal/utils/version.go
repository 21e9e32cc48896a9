package utils

import (
    "strconv"
    "strings"
)

// CompareVersions compares dotted version strings like "1.2.3". Returns 1
// when current > target, 0 when equal, -1 when current < target. Missing
// segments count as zero; a non-numeric segment counts as its leading digits.
func CompareVersions(current, target string) int {
    cur := splitVersion(current)
    tgt := splitVersion(target)
    n := len(cur)
    if len(tgt) > n {
        n = len(tgt)
    }
    for i := 0; i < n; i++ {
        var cv, tv int
        if i < len(cur) {
            cv = cur[i]
        }
        if i < len(tgt) {
            tv = tgt[i]
        }
        if cv != tv {
            if cv > tv {
                return 1
            }
            return -1
        }
    }
    return 0
}

func splitVersion(v string) []int {
    v = strings.TrimSpace(v)
    if v == "" {
        return []int{0}
    }
    parts := strings.Split(v, ".")
    out := make([]int, 0, len(parts))
    for _, p := range parts {
        out = append(out, leadingInt(strings.TrimSpace(p)))
    }
    return out
}

func leadingInt(s string) int {
    end := 0
    for end < len(s) && s[end] >= '0' && s[end] <= '9' {
        end++
    }
    n, err := strconv.Atoi(s[:end])
    if err != nil {
        return 0
    }
    return n
}
