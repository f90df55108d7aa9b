package logger

// LogStages defines standardized stage names for consistent logging
var LogStages = struct {
	Initialization   string
	Configuration    string
	RequestReceived  string
	RequestDecoded   string
	RequestCompleted string
	RequestFailed    string
	PromptBuilt      string
	ProviderRequest  string
	ProviderResponse string
	ProviderError    string
	Retry            string
	CacheInstall     string
	CacheHit         string
	CacheMiss        string
	TrackingSetup    string
	Shutdown         string
}{
	Initialization:   "Initialization",
	Configuration:    "Configuration",
	RequestReceived:  "RequestReceived",
	RequestDecoded:   "RequestDecoded",
	RequestCompleted: "RequestCompleted",
	RequestFailed:    "RequestFailed",
	PromptBuilt:      "PromptBuilt",
	ProviderRequest:  "ProviderRequest",
	ProviderResponse: "ProviderResponse",
	ProviderError:    "ProviderError",
	Retry:            "Retry",
	CacheInstall:     "CacheInstall",
	CacheHit:         "CacheHit",
	CacheMiss:        "CacheMiss",
	TrackingSetup:    "TrackingSetup",
	Shutdown:         "Shutdown",
}

// ComponentNames defines standardized component names
var ComponentNames = struct {
	App        string
	Config     string
	Middleware string
	Handler    string
	Analyzer   string
	Gemini     string
	ShellCache string
	Monitoring string
	Router     string
}{
	App:        "App",
	Config:     "Config",
	Middleware: "Middleware",
	Handler:    "Handler",
	Analyzer:   "Analyzer",
	Gemini:     "GeminiClient",
	ShellCache: "ShellCache",
	Monitoring: "Monitoring",
	Router:     "Router",
}
