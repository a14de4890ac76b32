package sapai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BaSui01/sapaicore/types"
)

// ServiceURLs holds the routing section of a service key.
type ServiceURLs struct {
	AIAPIURL string `json:"AI_API_URL"`
}

// ServiceKey is the credential bundle issued by SAP BTP for an AI Core
// service instance. It carries the OAuth client credentials, the
// authorization server and the API base URL.
type ServiceKey struct {
	ServiceURLs    ServiceURLs `json:"serviceurls"`
	ClientID       string      `json:"clientid"`
	ClientSecret   string      `json:"clientsecret"`
	URL            string      `json:"url"`
	IdentityZone   string      `json:"identityzone,omitempty"`
	IdentityZoneID string      `json:"identityzoneid,omitempty"`
	AppName        string      `json:"appname,omitempty"`
	CredentialType string      `json:"credential-type,omitempty"`
}

// ParseServiceKey decodes a service key from its JSON form.
func ParseServiceKey(raw string) (*ServiceKey, error) {
	var key ServiceKey
	if err := json.Unmarshal([]byte(raw), &key); err != nil {
		return nil, types.NewConfigurationError("Invalid service key JSON format").WithCause(err)
	}
	return &key, nil
}

// Validate reports missing fields required for the client-credentials exchange.
func (k *ServiceKey) Validate() error {
	if k == nil {
		return types.NewConfigurationError("service key is nil")
	}
	var missing []string
	if strings.TrimSpace(k.ServiceURLs.AIAPIURL) == "" {
		missing = append(missing, "serviceurls.AI_API_URL")
	}
	if strings.TrimSpace(k.ClientID) == "" {
		missing = append(missing, "clientid")
	}
	if strings.TrimSpace(k.ClientSecret) == "" {
		missing = append(missing, "clientsecret")
	}
	if strings.TrimSpace(k.URL) == "" {
		missing = append(missing, "url")
	}
	if len(missing) > 0 {
		return types.NewConfigurationError(fmt.Sprintf("service key is missing required fields: %s", strings.Join(missing, ", ")))
	}
	return nil
}

// APIURL returns AI_API_URL without trailing slashes.
func (k *ServiceKey) APIURL() string {
	if k == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(k.ServiceURLs.AIAPIURL), "/")
}

// TokenURL returns the OAuth token endpoint of the authorization server.
func (k *ServiceKey) TokenURL() string {
	return strings.TrimRight(strings.TrimSpace(k.URL), "/") + "/oauth/token"
}

// String masks the client secret.
func (k ServiceKey) String() string {
	secret := ""
	if k.ClientSecret != "" {
		secret = "***"
	}
	return fmt.Sprintf("ServiceKey{ClientID:%s, ClientSecret:%s, URL:%s, AI_API_URL:%s}",
		k.ClientID, secret, k.URL, k.ServiceURLs.AIAPIURL)
}
