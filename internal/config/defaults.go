package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/rentassist/data/db/catalog.db"
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 30
	}
	if cfg.Search.DefaultLimit == 0 || cfg.Search.DefaultLimit > cfg.Search.MaxLimit {
		cfg.Search.DefaultLimit = cfg.Search.MaxLimit
	}
	if cfg.Search.CandidatePool == 0 {
		cfg.Search.CandidatePool = 200
	}
	if cfg.Search.DefaultSortLimit == 0 {
		cfg.Search.DefaultSortLimit = 5
	}
	if cfg.Recommend.DefaultLimit == 0 {
		cfg.Recommend.DefaultLimit = 1
	}
	if cfg.Recommend.MaxLimit == 0 {
		cfg.Recommend.MaxLimit = 10
	}
	if cfg.Recommend.SourceLimit == 0 {
		cfg.Recommend.SourceLimit = 30
	}
	if cfg.Chat.HistoryTurns == 0 {
		cfg.Chat.HistoryTurns = 10
	}
	if cfg.Chat.FallbackSuggestions == 0 {
		cfg.Chat.FallbackSuggestions = 5
	}
	if cfg.Chat.MaxMessageLength == 0 {
		cfg.Chat.MaxMessageLength = 2000
	}
	if cfg.Conversation.TTLHours == 0 {
		cfg.Conversation.TTLHours = 72
	}
	if cfg.Conversation.MaxTurns == 0 {
		cfg.Conversation.MaxTurns = 50
	}
	if cfg.Generation.APIKeyEnv == "" {
		cfg.Generation.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = "gpt-4o-mini"
	}
	if cfg.Generation.Temperature == 0 {
		cfg.Generation.Temperature = 0.3
	}
	if cfg.Generation.TimeoutSeconds == 0 {
		cfg.Generation.TimeoutSeconds = 30
	}
	// Watch defaults to true when a tables file is configured.
	if cfg.Lexicon.TablesPath != "" && cfg.Lexicon.Watch == nil {
		t := true
		cfg.Lexicon.Watch = &t
	}
}
