// Package sqlutil holds query helpers shared by the table repos.
package sqlutil

import (
	"strconv"
	"strings"
)

// LikeEscape is the ESCAPE clause matching EscapeLike. SQLite has no default
// escape character, so every LIKE built from user text must name one.
const LikeEscape = ` ESCAPE '\'`

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike quotes LIKE wildcards so s matches literally.
func EscapeLike(s string) string {
	return likeReplacer.Replace(s)
}

// Contains builds a case-folded "%s%" pattern for a LIKE ... ESCAPE query.
func Contains(s string) string {
	return "%" + EscapeLike(strings.ToLower(s)) + "%"
}

// MaxSuffix returns the highest numeric suffix among numbers that start with
// prefix. Numbers with a non-numeric suffix are skipped.
func MaxSuffix(numbers []string, prefix string) int {
	highest := 0
	for _, n := range numbers {
		rest, ok := strings.CutPrefix(n, prefix)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		if v > highest {
			highest = v
		}
	}
	return highest
}
