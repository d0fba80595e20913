package config

import (
	"io"

	"github.com/NomadCrew/neoevents/logger"
	"gopkg.in/yaml.v3"
)

// WriteYAML writes the effective configuration as YAML with secrets masked.
// The output can be fed back through CONFIG_FILE once the secrets are filled in.
func (c *Config) WriteYAML(w io.Writer) error {
	redacted := *c
	redacted.Database.Password = logger.MaskSensitiveString(c.Database.Password, 0, 0)
	redacted.Redis.Password = logger.MaskSensitiveString(c.Redis.Password, 0, 0)
	redacted.Ticketmaster.APIKey = logger.MaskAPIKey(c.Ticketmaster.APIKey)
	redacted.Notification.APIKey = logger.MaskAPIKey(c.Notification.APIKey)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&redacted); err != nil {
		return err
	}
	return enc.Close()
}
