package notifier

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
	"github.com/pfrederiksen/boatrace-collector/internal/collector"
)

// ErrMissingCredentials is returned when a Twitter credential variable is unset
var ErrMissingCredentials = errors.New("missing required Twitter credentials in environment variables")

// Credentials are the OAuth1 keys of the posting account
type Credentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// CredentialsFromEnv reads TWITTER_API_KEY, TWITTER_API_SECRET,
// TWITTER_ACCESS_TOKEN and TWITTER_ACCESS_SECRET
func CredentialsFromEnv() (Credentials, error) {
	c := Credentials{
		APIKey:       os.Getenv("TWITTER_API_KEY"),
		APISecret:    os.Getenv("TWITTER_API_SECRET"),
		AccessToken:  os.Getenv("TWITTER_ACCESS_TOKEN"),
		AccessSecret: os.Getenv("TWITTER_ACCESS_SECRET"),
	}
	if c.APIKey == "" || c.APISecret == "" || c.AccessToken == "" || c.AccessSecret == "" {
		return Credentials{}, ErrMissingCredentials
	}
	return c, nil
}

// TwitterNotifier posts run summaries to Twitter
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a Twitter notifier using environment credentials
func NewTwitterNotifier() (*TwitterNotifier, error) {
	creds, err := CredentialsFromEnv()
	if err != nil {
		return nil, err
	}

	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	return newTwitterNotifier(config.Client(oauth1.NoContext, token)), nil
}

func newTwitterNotifier(httpClient *http.Client) *TwitterNotifier {
	return &TwitterNotifier{client: twitter.NewClient(httpClient)}
}

// Notify posts the summary as one status update
func (n *TwitterNotifier) Notify(s collector.Summary) error {
	if _, _, err := n.client.Statuses.Update(formatSummary(s), nil); err != nil {
		return fmt.Errorf("failed to post summary for %s: %w", s.Date, err)
	}
	return nil
}
