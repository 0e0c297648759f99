package djelia

import "os"

// ResolveAPIKey returns explicit when set, otherwise the value of DJELIA_API_KEY.
// It fails with a KindAuthentication error when neither is present.
//
// Clients call it once at construction; the key never changes afterwards.
func ResolveAPIKey(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key, nil
	}
	return "", newError(KindAuthentication,
		"API key is required. Provide it as an argument or set the %s environment variable.", EnvAPIKey)
}
