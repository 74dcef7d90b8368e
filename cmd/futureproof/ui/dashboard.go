package ui

import (
	"fmt"
	"strings"
	"time"

	"futureproof/internal/api"
)

// RenderProfile draws the dashboard summary for a signed-in user.
func RenderProfile(u *api.User, styles Styles, md *Markdown) string {
	if u == nil {
		return styles.Muted.Render("No profile loaded.")
	}

	name := u.FullName
	if name == "" {
		name = u.Email
	}
	intro := fmt.Sprintf("# Welcome back, %s\n", name)
	if u.HasTakenOnboarding {
		intro += "Your learning path is being prepared from your onboarding answers."
	} else {
		intro += "You have not finished onboarding yet. Run `futureproof onboard` to get your path."
	}

	onboarded := "pending"
	if u.HasTakenOnboarding {
		onboarded = "complete"
	}

	table := NewSimpleTable("Profile", "Field", "Value").
		AddRow("Email", u.Email).
		AddRow("Role", u.Role).
		AddRow("Onboarding", onboarded).
		AddRow("Member since", memberSince(u.CreatedAt))

	var sb strings.Builder
	sb.WriteString(md.Render(intro))
	sb.WriteString("\n\n")
	sb.WriteString(styles.Card.Render(statusLine(u, styles)))
	sb.WriteString("\n")
	sb.WriteString(table.View(styles))
	return sb.String()
}

// statusLine shows the role badge next to the onboarding state.
func statusLine(u *api.User, styles Styles) string {
	role := u.Role
	if role == "" {
		role = "member"
	}
	state := styles.Warning.Render("Onboarding pending")
	if u.HasTakenOnboarding {
		state = styles.Success.Render("Onboarding complete")
	}
	return styles.Badge.Render(strings.ToUpper(role)) + "  " + state
}

// memberSince formats the API timestamp as a date, keeping unknown formats as is.
func memberSince(ts string) string {
	if ts == "" {
		return "-"
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("2 Jan 2006")
		}
	}
	return ts
}
