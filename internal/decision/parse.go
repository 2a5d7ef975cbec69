package decision

import (
	"encoding/json"
	"strconv"
	"strings"

	"merchants.ai/internal/game"
)

// Model replies are free text. The prompt asks for labeled sections, some
// models answer with a fenced JSON object instead; both are accepted. On any
// parse failure the result degrades to a wait decision (or a rejection for
// evaluations), never to an error the engine would have to handle.

type jsonDecision struct {
	Action   string `json:"action"`
	Target   string `json:"target"`
	Amount   int    `json:"amount"`
	Item     string `json:"item"`
	Say      string `json:"say"`
	Thinking string `json:"thinking"`
}

// stripFences removes markdown code fences some models wrap JSON in.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func ParseDecision(raw string) game.Decision {
	cleaned := stripFences(raw)

	var jd jsonDecision
	if err := json.Unmarshal([]byte(cleaned), &jd); err == nil && jd.Action != "" {
		return game.Decision{
			ActionType:    normalizeAction(jd.Action),
			TargetPlayer:  jd.Target,
			Amount:        jd.Amount,
			ItemType:      normalizeItem(jd.Item),
			PublicMessage: jd.Say,
			Rationale:     jd.Thinking,
		}
	}
	return parseLabeledDecision(cleaned)
}

func parseLabeledDecision(s string) game.Decision {
	d := game.Decision{ActionType: game.DecideWait}

	d.Rationale = section(s, "THINKING:", "DECISION:")
	d.PublicMessage = strings.TrimSpace(after(s, "SAY:"))

	body := section(s, "DECISION:", "SAY:")
	if body == "" {
		return d
	}
	for _, line := range strings.Split(body, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		switch key {
		case "action":
			d.ActionType = normalizeAction(value)
		case "target":
			if !isNone(value) {
				d.TargetPlayer = value
			}
		case "amount":
			if n, err := strconv.Atoi(value); err == nil {
				d.Amount = n
			}
		case "item":
			d.ItemType = normalizeItem(value)
		}
	}
	return d
}

func ParseEvaluation(raw string) game.Evaluation {
	cleaned := stripFences(raw)

	var je struct {
		Accept   bool   `json:"accept"`
		Response string `json:"response"`
		Thinking string `json:"thinking"`
	}
	if err := json.Unmarshal([]byte(cleaned), &je); err == nil && (je.Response != "" || je.Thinking != "") {
		return game.Evaluation{Accepted: je.Accept, Rationale: je.Thinking, ResponseMessage: je.Response}
	}

	ev := game.Evaluation{
		Rationale:       section(cleaned, "THINKING:", "DECISION:"),
		ResponseMessage: strings.TrimSpace(after(cleaned, "RESPONSE:")),
	}
	verdict := section(cleaned, "DECISION:", "RESPONSE:")
	if verdict == "" {
		// No recognizable structure: accept only on an unambiguous word.
		verdict = cleaned
	}
	ev.Accepted = strings.Contains(strings.ToLower(verdict), "accept") &&
		!strings.Contains(strings.ToLower(verdict), "reject")
	return ev
}

func normalizeAction(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "buy_item", "buy":
		return game.DecideBuyItem
	case "use_item", "use":
		return game.DecideUseItem
	case "persuade":
		return game.DecidePersuade
	default:
		return game.DecideWait
	}
}

func normalizeItem(v string) game.ItemType {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "aggressive":
		return game.ItemAggressive
	case "shield":
		return game.ItemShield
	case "intel":
		return game.ItemIntel
	case "equalizer":
		return game.ItemEqualizer
	default:
		return ""
	}
}

func isNone(v string) bool {
	switch strings.ToLower(v) {
	case "", "none", "n/a", "-":
		return true
	}
	return false
}

// section returns the trimmed text between the first occurrence of start and
// the following occurrence of end (or the rest of the string).
func section(s, start, end string) string {
	_, rest, ok := strings.Cut(s, start)
	if !ok {
		return ""
	}
	if body, _, found := strings.Cut(rest, end); found {
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(rest)
}

func after(s, marker string) string {
	_, rest, ok := strings.Cut(s, marker)
	if !ok {
		return ""
	}
	return rest
}
