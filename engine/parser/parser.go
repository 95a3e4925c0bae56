// Package parser converts battle command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching. Numbers become
// coordinates, everything else is split on prepositions.
package parser

import (
	"strconv"
	"strings"

	"github.com/kangjianbin/mengde/types"
)

var verbAliases = map[string]string{
	// Move
	"m":    "move",
	"mv":   "move",
	"go":   "move",
	"walk": "move",

	// Attack
	"a":      "attack",
	"hit":    "attack",
	"strike": "attack",
	"fight":  "attack",
	"charge": "attack",

	// Magic
	"c":     "cast",
	"magic": "cast",
	"spell": "cast",

	// Stay
	"s":    "stay",
	"wait": "stay",
	"hold": "stay",
	"rest": "stay",

	// Turn
	"e":    "end",
	"pass": "end",
	"done": "end",

	// Queries
	"u":       "units",
	"list":    "units",
	"roster":  "units",
	"i":       "info",
	"x":       "info",
	"inspect": "info",
	"examine": "info",
	"look":    "info",
	"reach":   "moves",
	"range":   "moves",
	"board":   "map",

	// Deployment
	"pick":    "deploy",
	"select":  "deploy",
	"dismiss": "undeploy",
	"begin":   "start",
	"submit":  "start",

	"g": "again",
}

var prepositions = map[string]bool{
	"to": true, "at": true, "from": true,
	"on": true, "with": true, "onto": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))
	words = expandMultiWordVerbs(words)

	// "a" is an article everywhere except as the verb.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}
	verb := words[0]
	rest := stripArticles(words[1:])

	var intent types.Intent
	intent.Verb = verb

	// The spell comes first: "cast fire zhuge at rebel".
	if verb == "cast" && len(rest) > 0 {
		intent.Extra = append(intent.Extra, rest[0])
		rest = rest[1:]
	}

	rest, intent.Coords = extractCoords(rest)
	intent.Object, intent.Target = splitOnPreposition(rest)
	return intent
}

// expandMultiWordVerbs handles "end turn", "look at" and similar.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "end", "finish":
		if words[1] == "turn" {
			return append([]string{"end"}, words[2:]...)
		}
	case "look":
		if words[1] == "at" {
			return append([]string{"info"}, words[2:]...)
		}
	case "move":
		if words[1] == "range" {
			return append([]string{"moves"}, words[2:]...)
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// extractCoords pulls integer words out of the list, keeping their order.
func extractCoords(words []string) (rest []string, coords []int) {
	rest = make([]string, 0, len(words))
	for _, w := range words {
		if n, err := strconv.Atoi(strings.Trim(w, "(),")); err == nil {
			coords = append(coords, n)
			continue
		}
		rest = append(rest, w)
	}
	return rest, coords
}

// splitOnPreposition splits words on the first preposition. Words before
// it become the object; words after it, up to the next preposition, become
// the target. Without a preposition all words are the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if !prepositions[w] {
			continue
		}
		object = strings.Join(words[:i], " ")
		tail := words[i+1:]
		for j, t := range tail {
			if prepositions[t] {
				tail = tail[:j]
				break
			}
		}
		return object, strings.Join(tail, " ")
	}
	return strings.Join(words, " "), ""
}
