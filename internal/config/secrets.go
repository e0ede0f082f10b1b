package config

const redactedValue = "[REDACTED]"

// Redacted returns a copy safe to log, with every secret masked
func (c Config) Redacted() Config {
	out := c
	out.Server.CORSOrigins = append([]string(nil), c.Server.CORSOrigins...)
	redact(&out.Server.HookSecret)
	redact(&out.Redis.Password)
	redact(&out.Shopify.AccessToken)
	redact(&out.Shopify.APISecret)
	redact(&out.Mongo.URI)
	return out
}

func redact(s *string) {
	if *s != "" {
		*s = redactedValue
	}
}
