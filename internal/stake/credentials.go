package stake

import (
	"fmt"
	"net/http"

	"github.com/yourusername/stakebot/internal/config"
)

// DefaultUserAgent is sent when no user agent is configured. It must match the
// browser the Cloudflare cookies were issued to.
const DefaultUserAgent = "Mozilla/5.0 (Linux; Android 10; K) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Mobile Safari/537.36"

// Credentials are the account token and the Cloudflare cookies copied from a browser session
type Credentials struct {
	AccessToken string
	CFClearance string
	CFBM        string
	CFUVID      string
}

// CredentialsFromConfig extracts credentials from the stake section
func CredentialsFromConfig(cfg config.StakeConfig) Credentials {
	return Credentials{
		AccessToken: cfg.AccessToken,
		CFClearance: cfg.CFClearance,
		CFBM:        cfg.CFBM,
		CFUVID:      cfg.CFUVID,
	}
}

// Validate returns a *ConfigurationError naming every missing credential
func (c Credentials) Validate() error {
	var missing []string
	if c.AccessToken == "" {
		missing = append(missing, config.EnvAccessToken)
	}
	if c.CFClearance == "" {
		missing = append(missing, config.EnvCFClearance)
	}
	if c.CFBM == "" {
		missing = append(missing, config.EnvCFBM)
	}
	if c.CFUVID == "" {
		missing = append(missing, config.EnvCFUVID)
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// Cookie renders the Cloudflare cookie header value
func (c Credentials) Cookie() string {
	return fmt.Sprintf("cf_clearance=%s; __cf_bm=%s; _cfuvid=%s", c.CFClearance, c.CFBM, c.CFUVID)
}

// Header builds the headers sent with every request
func (c Credentials) Header(userAgent string) http.Header {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("User-Agent", userAgent)
	h.Set("Cookie", c.Cookie())
	h.Set("X-Access-Token", c.AccessToken)
	return h
}
