package lark

import (
	"context"
	"strings"
	"time"

	"scribe/internal/services"
)

// tokenRefreshMargin renews the cached tenant token before it actually
// expires so in-flight calls never race the deadline.
const tokenRefreshMargin = 5 * time.Minute

// tenantAccessToken returns a cached bot-scoped token, fetching a fresh one
// when the cache is empty or near expiry.
func (c *Client) tenantAccessToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	if c.tenantToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenRefreshMargin)) {
		return c.tenantToken, nil
	}

	body := map[string]string{
		"app_id":     c.appID,
		"app_secret": c.appSecret,
	}
	var result struct {
		Code              int    `json:"code"`
		Msg               string `json:"msg"`
		TenantAccessToken string `json:"tenant_access_token"`
		Expire            int    `json:"expire"`
	}
	raw, err := c.doRaw(ctx, "POST", "/open-apis/auth/v3/tenant_access_token/internal", "", body)
	if err != nil {
		return "", err
	}
	if err := decodeInto(raw, &result); err != nil {
		return "", services.Wrap(services.ErrRemoteCall, "lark", "tenant token", "decode response", err)
	}
	if result.Code != 0 || strings.TrimSpace(result.TenantAccessToken) == "" {
		return "", services.Wrap(services.ErrRemoteCall, "lark", "tenant token",
			"token request rejected: "+result.Msg, nil)
	}
	c.tenantToken = result.TenantAccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.Expire) * time.Second)
	return c.tenantToken, nil
}

// UserToken is the result of exchanging an OAuth authorization code.
type UserToken struct {
	AccessToken string `json:"access_token"`
	OpenID      string `json:"open_id"`
}

// ExchangeUserToken trades an authorization code for the user's access token.
func (c *Client) ExchangeUserToken(ctx context.Context, code string) (UserToken, error) {
	tenant, err := c.tenantAccessToken(ctx)
	if err != nil {
		return UserToken{}, err
	}
	body := map[string]string{
		"grant_type": "authorization_code",
		"code":       code,
	}
	var token UserToken
	if err := c.postJSON(ctx, "/open-apis/authen/v1/access_token", tenant, body, &token); err != nil {
		return UserToken{}, err
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		return UserToken{}, services.Wrap(services.ErrRemoteCall, "lark", "user token", "empty access token", nil)
	}
	return token, nil
}
