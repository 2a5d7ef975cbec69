package decision

import (
	"fmt"
	"strings"

	"merchants.ai/internal/game"
)

func buildDecidePrompt(player game.Player, state game.GameState, phase string, available []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are playing a token economy game. Current situation:\n")
	fmt.Fprintf(&b, "- round: %d\n- phase: %s\n- your balance: %d\n- prize pool: %d\n",
		state.Round, phase, player.Balance, state.PrizePool)
	fmt.Fprintf(&b, "- your unused items: %s\n", itemList(player))
	fmt.Fprintf(&b, "- other players:\n%s", otherPlayers(player.ID, state))
	fmt.Fprintf(&b, "\nAvailable actions: %s\n", strings.Join(available, ", "))
	b.WriteString(`
Think first, then decide. Answer in exactly this format:

THINKING:
<your analysis>

DECISION:
action: <one of the available actions>
target: <player id or none>
amount: <number or none>
item: <aggressive|shield|intel|equalizer or none>

SAY:
<one short public statement to all players>
`)
	return b.String()
}

func buildEvaluatePrompt(target game.Player, req game.PersuasionRequest, state game.GameState) string {
	var b strings.Builder
	b.WriteString("Another player asks you to transfer tokens to them.\n")
	fmt.Fprintf(&b, "- your balance: %d\n- requested amount: %d\n- their message: %q\n",
		target.Balance, req.Amount, req.Message)
	fmt.Fprintf(&b, "- other players:\n%s", otherPlayers(target.ID, state))
	b.WriteString(`
Weigh the request, then answer in exactly this format:

THINKING:
<your analysis>

DECISION:
<accept or reject>

RESPONSE:
<one short reply to the requester>
`)
	return b.String()
}

func itemList(p game.Player) string {
	var names []string
	for _, it := range p.Items {
		if !it.Used {
			names = append(names, string(it.Type))
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func otherPlayers(selfID string, state game.GameState) string {
	var b strings.Builder
	for _, p := range state.Players {
		if p.ID == selfID || !p.Active {
			continue
		}
		fmt.Fprintf(&b, "  - %s (%s): balance %d\n", p.ID, p.Name, p.Balance)
	}
	return b.String()
}
