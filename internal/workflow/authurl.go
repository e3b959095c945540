package workflow

import (
	"net/url"

	"scribe/internal/config"
)

// minutesScope covers reading and downloading the minutes resources the
// summary pipeline touches.
const minutesScope = "minutes:minute:download minutes:minutes minutes:minutes:readonly"

// CallbackPath is where the OAuth redirect lands on this service.
const CallbackPath = "/oauth/callback"

// AuthorizeURL builds the link behind the authorize button. The serialized
// workflow state rides inside the redirect URI so the callback can
// reconstruct the meeting context; the whole authorize URL is wrapped in an
// applink so it opens inside the client.
func AuthorizeURL(app config.App, stateStr string) string {
	redirect := app.RedirectBase + CallbackPath +
		"?app_id=" + url.QueryEscape(app.AppID) +
		"&state=" + url.QueryEscape(stateStr)

	authorize := app.APIHost + "/open-apis/authen/v1/authorize" +
		"?app_id=" + url.QueryEscape(app.AppID) +
		"&redirect_uri=" + url.QueryEscape(redirect) +
		"&scope=" + url.QueryEscape(minutesScope) +
		"&state=" + url.QueryEscape(app.AppID)

	return app.AppLinkHost + "/client/web_url/open?mode=appCenter&url=" + url.QueryEscape(authorize)
}
