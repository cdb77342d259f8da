package notify

// Notifier delivers SMS notifications to end users.
type Notifier interface {
	// SendAuthCode delivers a one-time verification code.
	SendAuthCode(phone, code string) error
	// SendSiteReady tells the user their page is live. target names what was
	// published ("profile", "blog post").
	SendSiteReady(phone, target, url string) error
}
