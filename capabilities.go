package djelia

import "sort"

const (
	// DefaultBaseURL is the default Djelia API base URL.
	DefaultBaseURL = "https://djelia.cloud"

	// APIKeyHeader carries the credential on every request.
	APIKeyHeader = "x-api-key"

	// EnvAPIKey is the environment variable consulted when no key is passed explicitly.
	EnvAPIKey = "DJELIA_API_KEY"

	// DefaultVersion is used when a request leaves Version at zero.
	DefaultVersion = 1

	// DefaultSpeaker is the speaker used by NewSpeechRequest.
	DefaultSpeaker = 1
)

// Operation names one capability of the remote service.
type Operation string

const (
	OpTranslate          Operation = "translate"
	OpSupportedLanguages Operation = "supported_languages"
	OpTranscribe         Operation = "transcribe"
	OpTranscribeStream   Operation = "transcribe_stream"
	OpTextToSpeech       Operation = "text_to_speech"
)

var endpoints = map[Operation]map[int]string{
	OpTranslate: {
		1: "/api/v1/models/translate",
	},
	OpSupportedLanguages: {
		1: "/api/v1/models/translate/supported-languages",
	},
	OpTranscribe: {
		1: "/api/v1/models/transcribe",
		2: "/api/v2/models/transcribe",
	},
	OpTranscribeStream: {
		1: "/api/v1/models/transcribe/stream",
		2: "/api/v2/models/transcribe/stream",
	},
	OpTextToSpeech: {
		1: "/api/v1/models/tts",
	},
}

// supportedLanguages maps public language codes to the service's wire codes.
var supportedLanguages = map[string]string{
	"fr":  "fra_Latn",
	"en":  "eng_Latn",
	"bam": "bam_Latn",
}

var validSpeakers = map[int]struct{}{0: {}, 1: {}, 2: {}, 3: {}, 4: {}}

// ResolvePath returns the URL path serving op at version.
func ResolvePath(op Operation, version int) (string, bool) {
	versions, ok := endpoints[op]
	if !ok {
		return "", false
	}
	path, ok := versions[version]
	return path, ok
}

// IsSupportedVersion reports whether op is served at version.
func IsSupportedVersion(op Operation, version int) bool {
	_, ok := ResolvePath(op, version)
	return ok
}

// SupportedVersions returns the versions of op in ascending order.
func SupportedVersions(op Operation) []int {
	versions := make([]int, 0, len(endpoints[op]))
	for v := range endpoints[op] {
		versions = append(versions, v)
	}
	sort.Ints(versions)
	return versions
}

// IsSupportedLanguage reports whether code is a public language code the service accepts.
func IsSupportedLanguage(code string) bool {
	_, ok := supportedLanguages[code]
	return ok
}

// WireCode translates a public language code ("en") to the service identifier ("eng_Latn").
func WireCode(code string) (string, bool) {
	wire, ok := supportedLanguages[code]
	return wire, ok
}

// Languages returns the public language codes in sorted order.
func Languages() []string {
	codes := make([]string, 0, len(supportedLanguages))
	for code := range supportedLanguages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// IsValidSpeaker reports whether id names one of the service's voices.
func IsValidSpeaker(id int) bool {
	_, ok := validSpeakers[id]
	return ok
}

// Speakers returns the valid speaker ids in ascending order.
func Speakers() []int {
	ids := make([]int, 0, len(validSpeakers))
	for id := range validSpeakers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func versionOrDefault(version int) int {
	if version == 0 {
		return DefaultVersion
	}
	return version
}
