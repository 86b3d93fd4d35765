package aws

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/aws/aws-sdk-go/service/sts/stsiface"

	"cloudsweep/internal/logging"
)

// regionalHTTPTimeout bounds every API call made from a regional session
const regionalHTTPTimeout = 25 * time.Second

// Identity is the caller identity a session resolves to
type Identity struct {
	AccountID string
	ARN       string
}

// NewSession creates a new AWS session with the specified profile and region
func NewSession(profile string, region string) (*session.Session, error) {
	cfg := aws.NewConfig()
	if region != "" {
		cfg = cfg.WithRegion(region)
	}

	opts := session.Options{
		Config:            *cfg,
		Profile:           profile,
		SharedConfigState: session.SharedConfigEnable,
	}

	sess, err := session.NewSessionWithOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session for profile %s: %w", profile, err)
	}
	return sess, nil
}

// GetSessionInRegion creates a new session in the specified region using credentials from an existing session
func GetSessionInRegion(sess *session.Session, region string) (*session.Session, error) {
	if region == "" {
		return sess, nil
	}

	httpClient := &http.Client{Timeout: regionalHTTPTimeout}

	newSess, err := session.NewSession(sess.Config.Copy().WithRegion(region).WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create session in %s: %w", region, err)
	}
	return newSess, nil
}

// GetCallerIdentity resolves the account behind a session
func GetCallerIdentity(client stsiface.STSAPI) (*Identity, error) {
	out, err := client.GetCallerIdentity(&sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to get caller identity: %w", err)
	}
	id := &Identity{
		AccountID: aws.StringValue(out.Account),
		ARN:       aws.StringValue(out.Arn),
	}
	logging.Debug("Resolved caller identity", map[string]interface{}{
		"account_id": id.AccountID,
		"arn":        id.ARN,
	})
	return id, nil
}
