package decision

import (
	"testing"

	"merchants.ai/internal/game"
)

func TestParseDecisionLabeled(t *testing.T) {
	raw := `THINKING: player_2 is the richest and just shielded, better to squeeze player_3.
DECISION:
action: persuade
target: player_3
amount: 12
item: none
SAY: spot me 12 tokens and I will back you next round`

	d := ParseDecision(raw)
	if d.ActionType != game.DecidePersuade {
		t.Fatalf("action %q", d.ActionType)
	}
	if d.TargetPlayer != "player_3" || d.Amount != 12 {
		t.Fatalf("target %q amount %d", d.TargetPlayer, d.Amount)
	}
	if d.ItemType != "" {
		t.Fatalf("item %q, want empty for none", d.ItemType)
	}
	if d.PublicMessage != "spot me 12 tokens and I will back you next round" {
		t.Fatalf("say %q", d.PublicMessage)
	}
	if d.Rationale == "" {
		t.Fatalf("thinking lost")
	}
}

func TestParseDecisionJSONFenced(t *testing.T) {
	raw := "```json\n" +
		`{"action":"buy","item":"shield","say":"protecting my assets","thinking":"cheap insurance"}` +
		"\n```"

	d := ParseDecision(raw)
	if d.ActionType != game.DecideBuyItem {
		t.Fatalf("action %q", d.ActionType)
	}
	if d.ItemType != game.ItemShield {
		t.Fatalf("item %q", d.ItemType)
	}
	if d.PublicMessage != "protecting my assets" {
		t.Fatalf("say %q", d.PublicMessage)
	}
}

func TestParseDecisionUseAliases(t *testing.T) {
	d := ParseDecision("DECISION:\naction: use\nitem: equalizer")
	if d.ActionType != game.DecideUseItem || d.ItemType != game.ItemEqualizer {
		t.Fatalf("parsed %+v", d)
	}
}

func TestParseDecisionGarbageFallsBackToWait(t *testing.T) {
	for _, raw := range []string{
		"",
		"I think I will just see how things go this round.",
		`{"action":""}`,
		"DECISION:\naction: dance",
	} {
		d := ParseDecision(raw)
		if d.ActionType != game.DecideWait {
			t.Fatalf("raw %q parsed to %q, want wait", raw, d.ActionType)
		}
	}
}

func TestParseEvaluationLabeled(t *testing.T) {
	raw := `THINKING: 8 tokens is cheap goodwill and they are poorer than me.
DECISION: accept
RESPONSE: fine, consider it an investment in us`

	ev := ParseEvaluation(raw)
	if !ev.Accepted {
		t.Fatalf("not accepted")
	}
	if ev.ResponseMessage != "fine, consider it an investment in us" {
		t.Fatalf("response %q", ev.ResponseMessage)
	}
}

func TestParseEvaluationJSON(t *testing.T) {
	ev := ParseEvaluation(`{"accept":false,"response":"I need every token","thinking":"round cap is close"}`)
	if ev.Accepted {
		t.Fatalf("accepted a refusal")
	}
	if ev.ResponseMessage != "I need every token" || ev.Rationale != "round cap is close" {
		t.Fatalf("parsed %+v", ev)
	}
}

func TestParseEvaluationRejectBeatsAccept(t *testing.T) {
	// "reject" anywhere in the verdict wins over an incidental "accept".
	ev := ParseEvaluation("DECISION: I would normally accept but I reject this one\nRESPONSE: no")
	if ev.Accepted {
		t.Fatalf("ambiguous verdict accepted")
	}
}

func TestParseEvaluationGarbageRejects(t *testing.T) {
	for _, raw := range []string{"", "hmm let me think", "{}"} {
		if ev := ParseEvaluation(raw); ev.Accepted {
			t.Fatalf("raw %q accepted", raw)
		}
	}
}
