package provider

// Supported provider type constants
const (
	Anthropic = "anthropic"
	OpenAI    = "openai"
	Ollama    = "ollama"
	Google    = "google"
	WorkersAI = "workersai"
)

// SupportedProviders returns the list of all supported provider type names.
func SupportedProviders() []string {
	return []string{Anthropic, OpenAI, Ollama, Google, WorkersAI}
}

// APIKeyEnv returns the environment variable holding the credential for a
// provider, or "" when the provider needs none.
func APIKeyEnv(providerType string) string {
	switch providerType {
	case OpenAI:
		return "OPENAI_API_KEY"
	case Anthropic:
		return "ANTHROPIC_API_KEY"
	case Google:
		return "GEMINI_API_KEY"
	case WorkersAI:
		return "CLOUDFLARE_API_TOKEN"
	default:
		return ""
	}
}
