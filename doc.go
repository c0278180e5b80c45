// Package omnibar wires the host side of the omnibar: token acquisition,
// session tracking, user settings and the embedded navigation widgets.
//
// A Host is built from a Config, which can be loaded from YAML at any afs
// URL, and a frame.Document representing the host page.
//
// Example:
//
//	host, _ := omnibar.New(ctx, omnibar.WithConfig(config), omnibar.WithDocument(doc))
//	token, _ := host.GetToken(ctx, &auth.TokenArgs{EnvironmentID: "p-123"})
//	_ = host.StartTracking(ctx, session.Options{})
//	defer host.Destroy()
package omnibar
