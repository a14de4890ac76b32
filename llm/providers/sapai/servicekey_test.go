package sapai

import (
	"fmt"
	"testing"

	"github.com/BaSui01/sapaicore/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServiceKey(t *testing.T) {
	raw := `{
		"serviceurls": {"AI_API_URL": "https://api.ai.example.com/"},
		"clientid": "sb-abc!b1|aicore!b540",
		"clientsecret": "secret",
		"url": "https://tenant.authentication.example.com",
		"identityzone": "tenant",
		"appname": "aicore"
	}`

	key, err := ParseServiceKey(raw)
	require.NoError(t, err)
	assert.Equal(t, "sb-abc!b1|aicore!b540", key.ClientID)
	assert.Equal(t, "secret", key.ClientSecret)
	assert.Equal(t, "tenant", key.IdentityZone)
	assert.Equal(t, "https://api.ai.example.com", key.APIURL())
	assert.Equal(t, "https://tenant.authentication.example.com/oauth/token", key.TokenURL())
	assert.NoError(t, key.Validate())
}

func TestParseServiceKey_Malformed(t *testing.T) {
	for _, raw := range []string{"", "{", "not json", `{"clientid": 42}`} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseServiceKey(raw)
			require.Error(t, err)
			assert.True(t, types.IsConfigurationError(err))
			assert.Contains(t, err.Error(), "Invalid service key JSON format")
		})
	}
}

func TestServiceKey_Validate(t *testing.T) {
	tests := []struct {
		name    string
		key     *ServiceKey
		missing []string
	}{
		{name: "nil key", key: nil, missing: []string{"nil"}},
		{name: "empty key", key: &ServiceKey{}, missing: []string{"serviceurls.AI_API_URL", "clientid", "clientsecret", "url"}},
		{
			name: "missing secret",
			key: &ServiceKey{
				ServiceURLs: ServiceURLs{AIAPIURL: "https://api"},
				ClientID:    "id",
				URL:         "https://auth",
			},
			missing: []string{"clientsecret"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate()
			require.Error(t, err)
			assert.True(t, types.IsConfigurationError(err))
			for _, m := range tt.missing {
				assert.Contains(t, err.Error(), m)
			}
		})
	}
}

func TestServiceKey_TokenURLTrimsSlash(t *testing.T) {
	key := &ServiceKey{URL: "https://auth.example.com//"}
	assert.Equal(t, "https://auth.example.com/oauth/token", key.TokenURL())
}

func TestServiceKey_StringMasksSecret(t *testing.T) {
	key := ServiceKey{ClientID: "id", ClientSecret: "very-secret", URL: "https://auth"}

	assert.NotContains(t, key.String(), "very-secret")
	assert.NotContains(t, fmt.Sprintf("%v", key), "very-secret")
	assert.NotContains(t, fmt.Sprintf("%v", &key), "very-secret")
	assert.Contains(t, key.String(), "***")
}
