package domain

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserJSON = `{"id":12345,"first_name":"Ada","last_name":"Lovelace","username":"ada","language_code":"en"}`

func bareInitData() string {
	return "query_id=AAE123xyz&user=" + url.QueryEscape(testUserJSON) + "&auth_date=1718000000&hash=9f2c4e"
}

func TestParseIdentityRecoversFieldsRegardlessOfWrapper(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "bare init data", raw: bareInitData()},
		{name: "bare init data with surrounding whitespace", raw: "  " + bareInitData() + "\n"},
		{
			name: "web app url fragment",
			raw:  "https://tg-app.memefi.club/#tgWebAppData=" + url.QueryEscape(bareInitData()) + "&tgWebAppVersion=7.6&tgWebAppPlatform=android",
		},
		{
			name: "fragment without version suffix",
			raw:  "tgWebAppData=" + url.QueryEscape(bareInitData()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			identity, err := ParseIdentity(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, int64(12345), identity.UserID)
			assert.Equal(t, "ada", identity.Username)
			assert.Equal(t, "Ada", identity.FirstName)
			assert.Equal(t, "Lovelace", identity.LastName)
			assert.Equal(t, int64(1718000000), identity.AuthDate)
			assert.Equal(t, "9f2c4e", identity.Hash)
			assert.Equal(t, "AAE123xyz", identity.QueryID)
			assert.JSONEq(t, testUserJSON, identity.RawUser)
		})
	}
}

func TestParseIdentityRejectsMalformedTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: "   "},
		{name: "no query id", raw: "user=" + url.QueryEscape(testUserJSON) + "&auth_date=1&hash=x"},
		{name: "no hash", raw: "query_id=a&user=" + url.QueryEscape(testUserJSON) + "&auth_date=1"},
		{name: "non numeric auth date", raw: "query_id=a&user=" + url.QueryEscape(testUserJSON) + "&auth_date=soon&hash=x"},
		{name: "invalid user json", raw: "query_id=a&user=not-json&auth_date=1&hash=x"},
		{name: "user without id", raw: "query_id=a&user=" + url.QueryEscape(`{"username":"ghost"}`) + "&auth_date=1&hash=x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseIdentity(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedCredential)
			assert.True(t, errors.Is(err, ErrInvalidSession), "malformed credentials must be session fatal")
			assert.True(t, IsSessionFatal(err))
		})
	}
}

func TestIdentitySessionNameFallsBackToUserID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ada", Identity{UserID: 1, Username: "ada"}.SessionName())
	assert.Equal(t, "12345", Identity{UserID: 12345}.SessionName())
}

func TestIdentityCheckDataString(t *testing.T) {
	t.Parallel()

	identity, err := ParseIdentity(bareInitData())
	require.NoError(t, err)

	assert.Equal(t, "auth_date=1718000000\nquery_id=AAE123xyz\nuser="+testUserJSON, identity.CheckDataString())
}
