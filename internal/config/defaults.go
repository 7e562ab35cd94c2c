package config

const (
	defaultDataDir               = "~/.local/share/marquee"
	defaultLogDir                = "~/.local/share/marquee/logs"
	defaultAPIBind               = "127.0.0.1:7490"
	defaultTMDBBaseURL           = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL      = "https://image.tmdb.org/t/p/original"
	defaultTMDBRequestsPerSecond = 40
	defaultOMDbBaseURL           = "https://www.omdbapi.com/"
	defaultLLMBaseURL            = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel              = "gpt-4o-mini"
	defaultLLMTitle              = "marquee"
	defaultLLMTimeoutSeconds     = 30
	defaultDiscoveryTarget       = 50
	defaultDiscoveryMaxPages     = 10
	defaultWorkers               = 30
	defaultFreshnessDays         = 7
	defaultResultLimit           = 30
	defaultContextWindow         = 4
	defaultRequestTimeoutSeconds = 10
	defaultNtfyTimeoutSeconds    = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		TMDB: TMDB{
			BaseURL:           defaultTMDBBaseURL,
			ImageBaseURL:      defaultTMDBImageBaseURL,
			RequestsPerSecond: defaultTMDBRequestsPerSecond,
		},
		OMDb: OMDb{
			BaseURL: defaultOMDbBaseURL,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Pipeline: Pipeline{
			DiscoveryTarget:       defaultDiscoveryTarget,
			DiscoveryMaxPages:     defaultDiscoveryMaxPages,
			Workers:               defaultWorkers,
			FreshnessDays:         defaultFreshnessDays,
			ResultLimit:           defaultResultLimit,
			ContextWindow:         defaultContextWindow,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
