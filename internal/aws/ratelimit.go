package aws

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"cloudsweep/internal/config"
	"cloudsweep/internal/logging"
)

// RateLimiter throttles outgoing API calls with a token bucket and backs off
// exponentially while the service keeps answering with throttling errors.
type RateLimiter struct {
	limiter *rate.Limiter

	mu           sync.Mutex
	backoff      *backoff.ExponentialBackOff
	delay        time.Duration
	failureCount int
	maxRetries   int
}

// NewRateLimiter creates a new rate limiter with the specified rate and backoff settings.
// If cfg is nil, it uses the DefaultRateLimitConfig.
func NewRateLimiter(cfg *config.RateLimitConfig) *RateLimiter {
	if cfg == nil {
		cfg = &config.DefaultRateLimitConfig
	}

	burst := int(cfg.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.BaseDelay
	b.MaxInterval = cfg.MaxDelay
	b.MaxElapsedTime = 0
	b.Reset()

	return &RateLimiter{
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		backoff:    b,
		maxRetries: cfg.MaxRetries,
	}
}

// Wait blocks until a call may proceed, honouring any active backoff
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if delay := rl.CurrentBackoff(); delay > 0 {
		logging.Debug("Rate limiter applying backoff", map[string]interface{}{
			"backoff_ms": delay.Milliseconds(),
		})
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return rl.limiter.Wait(ctx)
}

// OnSuccess records a successful API call and resets backoff
func (rl *RateLimiter) OnSuccess() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.failureCount > 0 {
		logging.Debug("Rate limiter resetting backoff after success", map[string]interface{}{
			"previous_failure_count": rl.failureCount,
		})
	}
	rl.failureCount = 0
	rl.delay = 0
	rl.backoff.Reset()
}

// OnFailure records a throttled API call and grows the backoff delay
func (rl *RateLimiter) OnFailure() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.failureCount++
	rl.delay = rl.backoff.NextBackOff()

	logging.Debug("Rate limiter recorded failure", map[string]interface{}{
		"failure_count":   rl.failureCount,
		"next_backoff_ms": rl.delay.Milliseconds(),
	})
}

// CurrentBackoff returns the delay applied before the next call
func (rl *RateLimiter) CurrentBackoff() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.delay
}

// MaxRetries is the retry budget sessions using this limiter are given
func (rl *RateLimiter) MaxRetries() int {
	return rl.maxRetries
}

var throttleCodes = map[string]struct{}{
	"Throttling":                             {},
	"ThrottlingException":                    {},
	"ThrottledException":                     {},
	"RequestThrottled":                       {},
	"RequestThrottledException":              {},
	"RequestLimitExceeded":                   {},
	"TooManyRequestsException":               {},
	"ProvisionedThroughputExceededException": {},
	"SlowDown":                               {},
}

// IsThrottleError reports whether err means the service is rate limiting us
func IsThrottleError(err error) bool {
	if err == nil {
		return false
	}
	if aerr, ok := err.(awserr.Error); ok {
		if _, ok := throttleCodes[aerr.Code()]; ok {
			return true
		}
	}
	if request.IsErrorThrottle(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "throttling") ||
		strings.Contains(msg, "rate exceeded") ||
		strings.Contains(msg, "too many requests")
}

// Install hooks the limiter into every request made through handlers:
// each attempt waits for a token and throttling responses feed the backoff.
func (rl *RateLimiter) Install(handlers *request.Handlers) {
	handlers.Sign.PushFrontNamed(request.NamedHandler{
		Name: "cloudsweep.RateLimitWait",
		Fn: func(r *request.Request) {
			if err := rl.Wait(r.Context()); err != nil {
				r.Error = err
			}
		},
	})
	handlers.Complete.PushBackNamed(request.NamedHandler{
		Name: "cloudsweep.RateLimitResult",
		Fn: func(r *request.Request) {
			switch {
			case r.Error == nil:
				rl.OnSuccess()
			case IsThrottleError(r.Error):
				rl.OnFailure()
			}
		},
	})
}

// RateLimiterRegistry manages rate limiters per account/region
type RateLimiterRegistry struct {
	limiters sync.Map
}

var globalRegistry = &RateLimiterRegistry{}

// GetRateLimiter gets or creates a rate limiter for the given key
func (r *RateLimiterRegistry) GetRateLimiter(key string, cfg *config.RateLimitConfig) *RateLimiter {
	if limiter, ok := r.limiters.Load(key); ok {
		return limiter.(*RateLimiter)
	}

	limiter := NewRateLimiter(cfg)
	actual, _ := r.limiters.LoadOrStore(key, limiter)
	return actual.(*RateLimiter)
}

// ThrottleSession installs the shared limiter for key on sess and caps its retries
func ThrottleSession(sess *session.Session, key string, cfg *config.RateLimitConfig) *RateLimiter {
	rl := globalRegistry.GetRateLimiter(key, cfg)
	rl.Install(&sess.Handlers)
	sess.Config.MaxRetries = aws.Int(rl.MaxRetries())
	return rl
}
