// Package client is the ModSentry Go SDK.
//
// It covers the two surfaces the moderation service exposes: the platform
// event webhook and the moderator admin API.
//
// # Delivering platform events
//
// A platform integration forwards each message event to the service. Direct
// messages return the reply lines to relay back to the user:
//
//	c := client.New("http://localhost:8080")
//	replies, err := c.SubmitEvent(ctx, client.Event{
//	    Type:     "dm",
//	    UserID:   "u_9f2",
//	    UserName: "alice",
//	    Content:  "report",
//	})
//
// Channel and moderator events are fire-and-forget; SubmitEvent returns nil
// replies for them.
//
// # Moderator admin surface
//
// Admin calls require a bearer token, minted from the shared admin secret:
//
//	token, err := c.Token(ctx, secret, "mod1")
//	reports, err := c.ListReports(ctx, 50, 0)
//	err = c.Flag(ctx, "acct_7")
//
// Token attaches the minted token to the client; alternatively pass an
// existing token at construction with WithBearerToken.
package client
