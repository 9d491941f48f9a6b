//go:build tools

// Pins Caddy and the plugin set so the module graph resolves them as
// direct dependencies. geninfo reads this graph via go list -m -json all.
package main

import (
	_ "github.com/LeenHawk/caddy-edgeone-ip"
	_ "github.com/WeidiDeng/caddy-cloudflare-ip"
	_ "github.com/caddyserver/caddy/v2"
	_ "github.com/caddyserver/forwardproxy"
	_ "github.com/fvbommel/caddy-combine-ip-ranges"
	_ "github.com/imgk/caddy-trojan"
	_ "github.com/mholt/caddy-l4"
	_ "github.com/monobilisim/caddy-ip-list"
	_ "github.com/xcaddyplugins/caddy-trusted-cloudfront"
)
