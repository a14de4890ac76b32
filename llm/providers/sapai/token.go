package sapai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BaSui01/sapaicore/internal/metrics"
	"github.com/BaSui01/sapaicore/internal/tlsutil"
	"github.com/BaSui01/sapaicore/llm"
	"github.com/BaSui01/sapaicore/llm/providers"
	"github.com/BaSui01/sapaicore/types"
	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	instrumentationName = "github.com/BaSui01/sapaicore/llm/providers/sapai"
	maxTokenBodyBytes   = 1 << 20
)

// AuthMode 标识 token 的来源
type AuthMode string

const (
	AuthModeToken       AuthMode = "token"
	AuthModeServiceKey  AuthMode = "service_key"
	AuthModeTokenSource AuthMode = "token_source"
)

// Credentials 是一次解析得到的凭据
type Credentials struct {
	Token string
	Mode  AuthMode
	// ServiceKey 为解析得到的 service key，未提供时为 nil。
	ServiceKey *ServiceKey
	// ExpiresAt 仅在 OAuth 交换时填充，零值表示未知。
	ExpiresAt time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope"`
}

// ResolveCredentials 按优先级解析凭据：显式 token、service key 的
// client-credentials 交换、TokenSource。service key 只要提供就会被解析，
// 即使最终使用显式 token，其 AI_API_URL 仍参与 base URL 的推导。
func ResolveCredentials(ctx context.Context, opts Options) (*Credentials, error) {
	opts = opts.withDefaults()
	key, err := opts.serviceKey()
	if err != nil {
		return nil, err
	}
	if opts.Token != "" {
		return &Credentials{Token: opts.Token, Mode: AuthModeToken, ServiceKey: key}, nil
	}
	if key != nil {
		client := opts.HTTPClient
		if client == nil {
			client = tlsutil.SecureHTTPClient(opts.TokenTimeout)
		}
		token, expiresAt, err := exchangeToken(ctx, client, key, opts.Logger, opts.Metrics)
		if err != nil {
			return nil, err
		}
		return &Credentials{Token: token, Mode: AuthModeServiceKey, ServiceKey: key, ExpiresAt: expiresAt}, nil
	}
	return credentialsFromSource(opts)
}

// resolveCredentialsSync 不做任何网络调用；只有 service key 时返回配置错误。
func resolveCredentialsSync(opts Options) (*Credentials, error) {
	opts = opts.withDefaults()
	key, err := opts.serviceKey()
	if err != nil {
		return nil, err
	}
	if opts.Token != "" {
		return &Credentials{Token: opts.Token, Mode: AuthModeToken, ServiceKey: key}, nil
	}
	if key != nil {
		return nil, types.NewConfigurationError(
			"service key authentication requires an OAuth token exchange; use sapai.New instead of NewWithToken")
	}
	return credentialsFromSource(opts)
}

func credentialsFromSource(opts Options) (*Credentials, error) {
	if token, ok := opts.TokenSource(); ok {
		return &Credentials{Token: token, Mode: AuthModeTokenSource}, nil
	}
	return nil, types.NewConfigurationError(
		"SAP AI Core credentials not found: provide a token, a service key or set " + TokenEnvVar)
}

// exchangeToken 用 service key 的 client credentials 换取 access token。
func exchangeToken(ctx context.Context, client llm.Doer, key *ServiceKey, logger *zap.Logger, rec MetricsRecorder) (string, time.Time, error) {
	if err := key.Validate(); err != nil {
		return "", time.Time{}, err
	}
	tokenURL := key.TokenURL()

	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "sapai.oauth.token",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.url", tokenURL)),
	)
	defer span.End()

	start := time.Now()
	tr, status, outcome, err := doTokenRequest(ctx, client, key, tokenURL)
	elapsed := time.Since(start)

	if status != 0 {
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
	if rec != nil {
		rec.RecordTokenExchange(outcome, elapsed)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token exchange failed")
		logger.Warn("oauth token exchange failed",
			zap.String("token_url", tokenURL),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		return "", time.Time{}, err
	}

	expiresAt := tokenExpiry(tr, start)
	logger.Debug("oauth token acquired",
		zap.String("token_url", tokenURL),
		zap.Duration("duration", elapsed),
		zap.Time("expires_at", expiresAt))
	return tr.AccessToken, expiresAt, nil
}

func doTokenRequest(ctx context.Context, client llm.Doer, key *ServiceKey, tokenURL string) (*tokenResponse, int, string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, metrics.OutcomeError, types.NewConfigurationError("invalid OAuth token URL").WithCause(err)
	}
	req.Header.Set("Authorization", "Basic "+basicCredentials(key.ClientID, key.ClientSecret))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, metrics.OutcomeError,
			types.NewError(types.ErrAuthentication, "OAuth token request failed").WithCause(err).WithRetryable(true)
	}
	defer providers.SafeCloseBody(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, metrics.OutcomeError,
			types.NewError(types.ErrAuthentication, "failed to read OAuth token response").
				WithCause(err).WithHTTPStatus(resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, metrics.OutcomeRejected,
			types.NewAuthenticationError(resp.StatusCode, statusText(resp), string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, resp.StatusCode, metrics.OutcomeError,
			types.NewError(types.ErrAuthentication, "invalid OAuth token response").
				WithCause(err).WithHTTPStatus(resp.StatusCode)
	}
	if tr.AccessToken == "" {
		return nil, resp.StatusCode, metrics.OutcomeError,
			types.NewError(types.ErrAuthentication, "OAuth token response has no access_token").
				WithHTTPStatus(resp.StatusCode)
	}
	return &tr, resp.StatusCode, metrics.OutcomeSuccess, nil
}

// basicCredentials 按 base64(clientid:clientsecret) 编码，不做 URL 编码。
func basicCredentials(clientID, clientSecret string) string {
	return base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// tokenExpiry 优先读取 JWT 的 exp（不验签，仅用于日志），其次 expires_in。
func tokenExpiry(tr *tokenResponse, issuedAt time.Time) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tr.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	if tr.ExpiresIn > 0 {
		return issuedAt.Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return time.Time{}
}
