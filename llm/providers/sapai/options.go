package sapai

import (
	"os"
	"strings"
	"time"

	"github.com/BaSui01/sapaicore/llm"
	"go.uber.org/zap"
)

const (
	// ProviderName is stamped into every RequestContext.
	ProviderName = "sap-ai"

	// DefaultBaseURL is the production AI API endpoint used when neither an
	// explicit base URL nor a service key is given.
	DefaultBaseURL = "https://api.ai.prod.eu-central-1.aws.ml.hana.ondemand.com/v2"

	// DefaultDeploymentID names the orchestration deployment used when none is given.
	DefaultDeploymentID = "d65d81e7c077e583"

	// DefaultResourceGroup is sent as ai-resource-group when none is given.
	DefaultResourceGroup = "default"

	// TokenEnvVar is read by the environment token source.
	TokenEnvVar = "SAP_AI_TOKEN"

	// HeaderResourceGroup scopes requests to a resource group.
	HeaderResourceGroup = "ai-resource-group"

	defaultTokenTimeout = 30 * time.Second
)

// TokenSource yields a bearer token from somewhere outside the options,
// typically the process environment. ok is false when no token is available.
type TokenSource func() (token string, ok bool)

// EnvTokenSource reads a token from the named environment variable.
func EnvTokenSource(name string) TokenSource {
	return func() (string, bool) {
		v := strings.TrimSpace(os.Getenv(name))
		return v, v != ""
	}
}

// StaticTokenSource always yields the given token. An empty token yields nothing.
func StaticTokenSource(token string) TokenSource {
	return func() (string, bool) {
		return token, token != ""
	}
}

// Options is the inbound configuration surface of a provider.
//
// Credentials are tried in order: Token, then ServiceKey / ServiceKeyBundle
// (OAuth client-credentials exchange), then TokenSource.
type Options struct {
	// ServiceKey is the service key in its JSON form.
	ServiceKey string
	// ServiceKeyBundle is an already decoded service key. Ignored when ServiceKey is set.
	ServiceKeyBundle *ServiceKey
	// Token is used verbatim as bearer token.
	Token string
	// TokenSource is the fallback when neither Token nor a service key is
	// given. Defaults to EnvTokenSource(TokenEnvVar).
	TokenSource TokenSource

	DeploymentID  string
	ResourceGroup string
	// BaseURL overrides the API base URL; trailing slashes are stripped.
	BaseURL string
	// CompletionPath replaces the deployment-scoped path and is appended to
	// the base URL verbatim.
	CompletionPath string
	// Headers are merged last into every request and win on collision. The
	// map is read on every header computation, not copied.
	Headers map[string]string

	// HTTPClient is used for the token exchange and forwarded unchanged to
	// every model handle.
	HTTPClient llm.Doer
	// TokenTimeout bounds the token exchange when HTTPClient is nil.
	TokenTimeout time.Duration

	// DefaultSettings are merged under every per-call settings bag.
	DefaultSettings llm.CallSettings
	// NewChatModel builds model handles. Defaults to NewChatModel.
	NewChatModel llm.ChatModelConstructor

	Logger  *zap.Logger
	Metrics MetricsRecorder
}

// MetricsRecorder receives provider level measurements.
type MetricsRecorder interface {
	RecordTokenExchange(outcome string, duration time.Duration)
	RecordModelCreated(model string)
	RecordChatRequest(model string, status int, duration time.Duration)
}

func (o Options) withDefaults() Options {
	if o.TokenSource == nil {
		o.TokenSource = EnvTokenSource(TokenEnvVar)
	}
	if o.ResourceGroup == "" {
		o.ResourceGroup = DefaultResourceGroup
	}
	if o.DeploymentID == "" {
		o.DeploymentID = DefaultDeploymentID
	}
	if o.TokenTimeout <= 0 {
		o.TokenTimeout = defaultTokenTimeout
	}
	if o.NewChatModel == nil {
		o.NewChatModel = NewChatModel
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

func (o Options) hasServiceKey() bool {
	return o.ServiceKey != "" || o.ServiceKeyBundle != nil
}

// serviceKey returns the parsed service key, or nil when none was supplied.
func (o Options) serviceKey() (*ServiceKey, error) {
	if o.ServiceKey != "" {
		return ParseServiceKey(o.ServiceKey)
	}
	return o.ServiceKeyBundle, nil
}
