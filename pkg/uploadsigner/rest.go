package uploadsigner

import "strings"

// SigningVersion selects the signature scheme
type SigningVersion int

const (
	// SigningV2 is the legacy HMAC-SHA1/base64 scheme
	SigningV2 SigningVersion = 2
	// SigningV4 is the SigV4 derived-key HMAC-SHA256/hex scheme
	SigningV4 SigningVersion = 4
)

func (v SigningVersion) String() string {
	if v == SigningV4 {
		return "v4"
	}
	return "v2"
}

// IsValidRestRequest performs a shallow check that a REST string-to-sign
// targets the expected bucket (v2) or host (v4). It is not a full
// authentication of the request.
func IsValidRestRequest(headers string, version SigningVersion, expectedBucket, expectedHost string) bool {
	if version == SigningV4 {
		return hasHostLine(headers, expectedHost)
	}
	return hasBucketResource(headers, expectedBucket)
}

// hasBucketResource checks that the canonical resource, the last line of a
// v2 string-to-sign, is /<bucket>/<something>.
func hasBucketResource(headers, bucket string) bool {
	if bucket == "" {
		return false
	}
	lines := strings.Split(strings.TrimSuffix(headers, "\n"), "\n")
	resource := lines[len(lines)-1]

	prefix := "/" + bucket + "/"
	idx := strings.Index(resource, prefix)
	return idx >= 0 && len(resource) > idx+len(prefix)
}

func hasHostLine(headers, host string) bool {
	if host == "" {
		return false
	}
	want := "host:" + host
	for _, line := range strings.Split(headers, "\n") {
		if strings.TrimSpace(line) == want {
			return true
		}
	}
	return false
}
