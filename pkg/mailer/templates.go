package mailer

import (
	"fmt"
	"strings"

	"github.com/hackfesthq/hackfest-backend/pkg/config"
)

// WelcomeEmail renders the post-registration email. The subject and intro
// come from the editable welcome message; the event block is appended from
// configuration.
func WelcomeEmail(event config.EventConfig, subject, intro, fullName string) (string, string) {
	if subject == "" {
		subject = fmt.Sprintf("Welcome to %s!", event.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", fullName)
	if intro != "" {
		b.WriteString(intro)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Event: %s\n", event.Name)
	fmt.Fprintf(&b, "Dates: %s\n", event.Dates)
	fmt.Fprintf(&b, "Location: %s\n", event.Location)
	if event.Contact != "" {
		fmt.Fprintf(&b, "\nQuestions? Reach us at %s.\n", event.Contact)
	}
	b.WriteString("\nSee you there!\n")
	return subject, b.String()
}

// JoinRequestEmail renders the notification sent to a team leader when
// someone asks to join their team.
func JoinRequestEmail(teamName, requesterName, message string) (string, string) {
	subject := fmt.Sprintf("New join request for %s", teamName)

	var b strings.Builder
	fmt.Fprintf(&b, "%s has asked to join your team %s.\n", requesterName, teamName)
	if message != "" {
		fmt.Fprintf(&b, "\nTheir message:\n%s\n", message)
	}
	b.WriteString("\nLog in to accept or reject the request.\n")
	return subject, b.String()
}

// JoinResolvedEmail renders the notification sent to a requester when their
// join request is accepted or rejected.
func JoinResolvedEmail(teamName string, accepted bool) (string, string) {
	if accepted {
		return fmt.Sprintf("You're in: %s", teamName),
			fmt.Sprintf("Your request to join %s was accepted. Welcome aboard!\n", teamName)
	}
	return fmt.Sprintf("Update on your request to join %s", teamName),
		fmt.Sprintf("Your request to join %s was not accepted this time. You can still request to join another team.\n", teamName)
}

// PasswordResetEmail renders the reset email carrying a one-time token.
func PasswordResetEmail(eventName, token string, ttlMinutes int) (string, string) {
	subject := fmt.Sprintf("%s password reset", eventName)

	var b strings.Builder
	b.WriteString("A password reset was requested for your account.\n\n")
	fmt.Fprintf(&b, "Reset token: %s\n", token)
	fmt.Fprintf(&b, "The token expires in %d minutes.\n", ttlMinutes)
	b.WriteString("\nIf you did not request this, you can ignore this email.\n")
	return subject, b.String()
}
