package orchestrators

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gymhub/internal/application/validation"
	"gymhub/internal/domain/member"
	"gymhub/internal/domain/outbox"
	"gymhub/internal/domain/payment"
)

// GymName is used in outbound email subjects and signatures.
const GymName = "GymHub"

const dateDisplay = "Mon 2 Jan 2006"

func signature() string {
	return "\n\nSee you at the gym,\nThe " + GymName + " team\n"
}

func welcomeMemberEmail(m member.Member, loginEmail string) outbox.EmailPayload {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", m.Name)
	fmt.Fprintf(&b, "Welcome to %s! Your %s membership has been set up.\n", GymName, m.Plan)
	fmt.Fprintf(&b, "You can sign in to the member portal with %s using the temporary password the front desk gave you.\n", loginEmail)
	b.WriteString("You will be asked to choose a new password the first time you sign in.")
	b.WriteString(signature())
	return outbox.EmailPayload{
		Kind:    outbox.KindWelcomeMember,
		To:      loginEmail,
		Subject: "Welcome to " + GymName,
		Text:    b.String(),
	}
}

func welcomeTrainerEmail(name, loginEmail string) outbox.EmailPayload {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "You have been added to the %s trainer team.\n", GymName)
	fmt.Fprintf(&b, "Sign in to the trainer portal with %s using the temporary password from your manager to schedule classes and see your rosters.", loginEmail)
	b.WriteString(signature())
	return outbox.EmailPayload{
		Kind:    outbox.KindWelcomeTrainer,
		To:      loginEmail,
		Subject: "Welcome to the " + GymName + " team",
		Text:    b.String(),
	}
}

func paymentReceiptEmail(m member.Member, p payment.Payment) outbox.EmailPayload {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", m.Name)
	fmt.Fprintf(&b, "We received your payment of %s by %s on %s.\n",
		payment.FormatCents(p.AmountCents), strings.ReplaceAll(p.Method, "_", " "), p.PaidAt.Format(dateDisplay))
	fmt.Fprintf(&b, "Plan: %s, %d month(s).\n", p.Plan, p.PeriodMonths)
	fmt.Fprintf(&b, "Your membership is now active until %s.", m.ExpiresOn.Format(dateDisplay))
	if p.Reference != "" {
		fmt.Fprintf(&b, "\nReference: %s", p.Reference)
	}
	b.WriteString(signature())
	return outbox.EmailPayload{
		Kind:    outbox.KindPaymentReceipt,
		To:      m.Email,
		Subject: GymName + " payment receipt",
		Text:    b.String(),
	}
}

func classCancelledEmail(memberName, to, className string, startsAt time.Time) outbox.EmailPayload {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", memberName)
	fmt.Fprintf(&b, "Unfortunately %s on %s at %s has been cancelled and your booking has been released.\n",
		className, startsAt.Format(dateDisplay), startsAt.Format("15:04"))
	b.WriteString("Check the schedule in the member portal for other sessions.")
	b.WriteString(signature())
	return outbox.EmailPayload{
		Kind:    outbox.KindClassCancelled,
		To:      to,
		Subject: "Class cancelled: " + className,
		Text:    b.String(),
	}
}

func storyReviewedEmail(memberName, to, title string, published bool) outbox.EmailPayload {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", memberName)
	if published {
		fmt.Fprintf(&b, "Your story %q is now live on our success stories page. Thanks for sharing it!", title)
	} else {
		fmt.Fprintf(&b, "Thanks for sending us %q. We decided not to publish it this time, but you are welcome to submit another.", title)
	}
	b.WriteString(signature())
	return outbox.EmailPayload{
		Kind:    outbox.KindStoryReviewed,
		To:      to,
		Subject: "Your success story",
		Text:    b.String(),
	}
}

// TestEmailInput carries input for sending a test email from the admin outbox page.
type TestEmailInput struct {
	To string `validate:"required,email" label:"Email"`
}

// TestEmailDeps holds dependencies for QueueTestEmail.
type TestEmailDeps struct {
	Outbox     OutboxWriter
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteQueueTestEmail queues a test email so admins can check delivery.
// PRE: caller is admin
// POST: A pending outbox entry exists for input.To
func ExecuteQueueTestEmail(ctx context.Context, input TestEmailInput, deps TestEmailDeps) (string, error) {
	input.To = strings.TrimSpace(input.To)
	if err := validation.Struct(input); err != nil {
		return "", err
	}
	id := newID(deps.GenerateID)
	err := enqueueEmail(ctx, deps.Outbox, id, outbox.EmailPayload{
		Kind:    outbox.KindTest,
		To:      input.To,
		Subject: GymName + " test email",
		Text:    "This is a test email. If you can read it, outbound mail is working." + signature(),
	}, clock(deps.Now))
	if err != nil {
		return "", err
	}
	return id, nil
}
