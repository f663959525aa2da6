package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnabledProviders(t *testing.T) {
	tests := []struct {
		name     string
		clientID string
		secret   string
		want     []string
	}{
		{name: "No VK credentials", want: []string{ProviderCredentials}},
		{name: "Only client id", clientID: "123", want: []string{ProviderCredentials}},
		{name: "Only secret", secret: "s3cr3t", want: []string{ProviderCredentials}},
		{name: "Both present", clientID: "123", secret: "s3cr3t", want: []string{ProviderCredentials, ProviderVK}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oauth := OAuthConfig{Providers: enabledProviders(tt.clientID, tt.secret)}
			assert.Equal(t, tt.want, oauth.Names())
		})
	}
}

func TestOAuthConfig_Get(t *testing.T) {
	oauth := OAuthConfig{Providers: enabledProviders("app-id", "app-secret")}

	vk, ok := oauth.Get(ProviderVK)
	require.True(t, ok)
	assert.Equal(t, "app-id", vk.ClientID)
	assert.Equal(t, "app-secret", vk.ClientSecret)
	assert.True(t, oauth.Enabled(ProviderCredentials))
	assert.False(t, oauth.Enabled("google"))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("VK_CLIENT_ID", "")
	t.Setenv("VK_CLIENT_SECRET", "")
	t.Setenv("VERIFICATION_STORE", "")
	t.Setenv("VERIFICATION_CODE_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, VerificationStoreDatabase, cfg.Verification.Store)
	assert.Equal(t, 15*time.Minute, cfg.Verification.CodeTTL)
	assert.False(t, cfg.OAuth.Enabled(ProviderVK))
}

func TestLoad_UnknownVerificationStore(t *testing.T) {
	t.Setenv("VERIFICATION_STORE", "memcached")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestParseSlice(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, parseSlice("http://a, http://b,"))
	assert.Empty(t, parseSlice(""))
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "Discrete fields",
			cfg:  DatabaseConfig{Host: "db", Port: "5432", User: "portal", Password: "pw", DBName: "portal", SSLMode: "disable"},
			want: "host=db port=5432 user=portal password=pw dbname=portal sslmode=disable",
		},
		{
			name: "URL wins",
			cfg:  DatabaseConfig{URL: "postgres://u:p@db:5432/portal", Host: "ignored"},
			want: "postgres://u:p@db:5432/portal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}
