package notify

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioNotifier sends SMS messages through the Twilio REST API.
type TwilioNotifier struct {
	accountSID string
	authToken  string
	from       string
	appName    string
	apiBase    string
	client     *http.Client
}

// NewTwilioNotifier creates a notifier backed by Twilio. When credentials are
// missing a no-op notifier is returned so local development works without an
// account; sent messages are logged instead.
func NewTwilioNotifier(accountSID, authToken, from, appName string) Notifier {
	if accountSID == "" || authToken == "" || from == "" {
		log.Warn().Msg("Twilio credentials not configured, SMS delivery disabled")
		return &noopNotifier{}
	}
	return &TwilioNotifier{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		appName:    appName,
		apiBase:    twilioAPIBase,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// SendAuthCode delivers a one-time verification code.
func (n *TwilioNotifier) SendAuthCode(phone, code string) error {
	body := fmt.Sprintf("%s: Your one time code is: %s. Please say or enter the code in the %s app to complete verification", n.appName, code, n.appName)
	return n.send(phone, body)
}

// SendSiteReady tells the user their page is live.
func (n *TwilioNotifier) SendSiteReady(phone, target, siteURL string) error {
	body := fmt.Sprintf("%s: Your %s page can be accessed using this link: %s", n.appName, target, siteURL)
	return n.send(phone, body)
}

func (n *TwilioNotifier) send(to, body string) error {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", n.apiBase, n.accountSID)

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", n.from)
	form.Set("Body", body)

	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(n.accountSID, n.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("twilio returned status %d: %s", resp.StatusCode, string(detail))
	}

	log.Info().Str("to", to).Msg("Sent SMS notification")
	return nil
}

type noopNotifier struct{}

func (*noopNotifier) SendAuthCode(phone, code string) error {
	log.Info().Str("phone", phone).Msg("SMS delivery disabled, skipping auth code message")
	return nil
}

func (*noopNotifier) SendSiteReady(phone, target, siteURL string) error {
	log.Info().Str("phone", phone).Str("url", siteURL).Msg("SMS delivery disabled, skipping site ready message")
	return nil
}
