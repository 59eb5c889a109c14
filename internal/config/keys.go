package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.host", typ: kString, env: "QBOT_SERVER_HOST",
		apply:   func(cfg *Config, v any) { cfg.Server.Host = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.Host },
	},
	{
		key: "server.port", typ: kInt, env: "QBOT_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "storage.profiles_dir", typ: kString, env: "QBOT_STORAGE_PROFILES_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.ProfilesDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.ProfilesDir },
	},
	{
		key: "storage.data_dir", typ: kString, env: "QBOT_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "ner.model_path", typ: kString, env: "QBOT_NER_MODEL_PATH",
		apply:   func(cfg *Config, v any) { cfg.NER.ModelPath = v.(string) },
		extract: func(cfg Config) any { return cfg.NER.ModelPath },
	},
	{
		key: "wati.api_url", typ: kString, env: "QBOT_WATI_API_URL",
		apply:   func(cfg *Config, v any) { cfg.Wati.APIURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Wati.APIURL },
	},
	{
		key: "wati.api_key", typ: kString, env: "QBOT_WATI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Wati.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Wati.APIKey },
	},
	{
		key: "wati.webhook_url", typ: kString, env: "QBOT_WATI_WEBHOOK_URL",
		apply:   func(cfg *Config, v any) { cfg.Wati.WebhookURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Wati.WebhookURL },
	},
	{
		key: "log.level", typ: kString, env: "QBOT_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b *fileBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
