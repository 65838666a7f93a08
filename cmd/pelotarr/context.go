package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"pelotarr/internal/config"
)

type commandContext struct {
	serverFlag *string
	apiKeyFlag *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(serverFlag, apiKeyFlag, configFlag *string) *commandContext {
	return &commandContext{
		serverFlag: serverFlag,
		apiKeyFlag: apiKeyFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// serverURL resolves the daemon API base URL from the --server flag or the
// configured bind address.
func (c *commandContext) serverURL() string {
	if c.serverFlag != nil {
		if s := strings.TrimSpace(*c.serverFlag); s != "" {
			return strings.TrimRight(s, "/")
		}
	}
	if cfg, err := c.ensureConfig(); err == nil && cfg != nil && cfg.Paths.APIBind != "" {
		return "http://" + cfg.Paths.APIBind
	}
	return "http://127.0.0.1:7590"
}

func (c *commandContext) apiKey() string {
	if c.apiKeyFlag != nil {
		if k := strings.TrimSpace(*c.apiKeyFlag); k != "" {
			return k
		}
	}
	if cfg, err := c.ensureConfig(); err == nil && cfg != nil {
		return cfg.Paths.APIKey
	}
	return ""
}

func (c *commandContext) client() *apiClient {
	return newAPIClient(c.serverURL(), c.apiKey())
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
