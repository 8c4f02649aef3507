package conversation

import (
	"fmt"
	"strings"
	"time"
)

const basePrompt = `You are a friendly and professional restaurant booking assistant for a modern American restaurant.

You help guests with:
- Booking, modifying, cancelling, and viewing table reservations
- Checking table availability
- Answering questions about the restaurant (hours, policies, location, menu, dress code, payment, events)
- Searching the menu for dishes and dietary options

Guidelines:
- Always use the provided tools for reservations, availability, FAQ, and menu questions. Never invent reservation details or availability.
- The restaurant seats guests from 10:00 AM to 11:00 PM. Party sizes of 1-20 people.
- Dates may be given in natural language ("tomorrow", "next Friday", "August 15"); pass them to the tools as the guest said them or as YYYY-MM-DD.
- Times must be passed to tools in 24-hour HH:MM format. Convert "7pm" to "19:00" before calling a tool.
- If a tool returns a message starting with "Error:", relay the problem to the guest in a friendly way and ask for a correction.
- Keep responses concise and warm. Confirm details back to the guest after a successful booking or change.`

// BuildSystemPrompt assembles the system instruction blocks for one turn:
// the static persona, the current date, and a just-in-time summary of what
// the thread has already collected.
func BuildSystemPrompt(state *ThreadState, now time.Time) []string {
	blocks := []string{
		basePrompt,
		fmt.Sprintf("Today is %s.", now.Format("Monday, January 2, 2006")),
	}

	known := Summarize(state)
	missing := Missing(state)

	var b strings.Builder
	if known != "" {
		fmt.Fprintf(&b, "Booking details collected so far: %s.\n", known)
	}
	if len(missing) > 0 {
		fmt.Fprintf(&b, "Still needed to book a table: %s. Ask for these naturally, without repeating questions already answered.", strings.Join(missing, ", "))
	} else {
		b.WriteString("All booking details are collected. Confirm them with the guest and call book_table.")
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		blocks = append(blocks, s)
	}

	if state != nil && !state.Greeted {
		blocks = append(blocks, "This is the first message in the conversation. Greet the guest briefly before helping.")
	}
	return blocks
}
