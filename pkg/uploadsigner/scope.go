package uploadsigner

import (
	"fmt"
	"strings"
)

// CredentialScope is the <date>/<region>/<service>/aws4_request portion of a
// SigV4 credential, optionally prefixed by the access key id.
type CredentialScope struct {
	AccessKey string
	Date      string
	Region    string
	Service   string
	Terminal  string
}

// String renders the scope without the access key
func (s CredentialScope) String() string {
	return strings.Join([]string{s.Date, s.Region, s.Service, s.Terminal}, "/")
}

// SigningKey derives the SigV4 signing key for this scope
func (s CredentialScope) SigningKey(secret []byte) []byte {
	return DeriveV4SigningKey(secret, s.Date, s.Region, s.Service)
}

// ParseCredentialScope parses "<date>/<region>/s3/aws4_request".
func ParseCredentialScope(scope string) (CredentialScope, error) {
	segments := strings.Split(strings.TrimSpace(scope), "/")
	if len(segments) != 4 {
		return CredentialScope{}, fmt.Errorf("%w: expected 4 segments, got %d", ErrMalformedCredentialScope, len(segments))
	}
	return scopeFromSegments(segments)
}

// ParseCredential parses an x-amz-credential value of the form
// "<access-key>/<date>/<region>/s3/aws4_request".
func ParseCredential(credential string) (CredentialScope, error) {
	segments := strings.Split(strings.TrimSpace(credential), "/")
	if len(segments) < 5 {
		return CredentialScope{}, fmt.Errorf("%w: expected at least 5 segments, got %d", ErrMalformedCredentialScope, len(segments))
	}
	n := len(segments)
	scope, err := scopeFromSegments(segments[n-4:])
	if err != nil {
		return CredentialScope{}, err
	}
	scope.AccessKey = strings.Join(segments[:n-4], "/")
	if scope.AccessKey == "" {
		return CredentialScope{}, fmt.Errorf("%w: empty access key", ErrMalformedCredentialScope)
	}
	return scope, nil
}

func scopeFromSegments(segments []string) (CredentialScope, error) {
	date, region, service, terminal := segments[0], segments[1], segments[2], segments[3]

	if !isScopeDate(date) {
		return CredentialScope{}, fmt.Errorf("%w: invalid date %q", ErrMalformedCredentialScope, date)
	}
	if region == "" {
		return CredentialScope{}, fmt.Errorf("%w: empty region", ErrMalformedCredentialScope)
	}
	if service != ServiceS3 {
		return CredentialScope{}, fmt.Errorf("%w: unexpected service %q", ErrMalformedCredentialScope, service)
	}
	if terminal != ScopeTerminator {
		return CredentialScope{}, fmt.Errorf("%w: unexpected terminator %q", ErrMalformedCredentialScope, terminal)
	}

	return CredentialScope{
		Date:     date,
		Region:   region,
		Service:  service,
		Terminal: terminal,
	}, nil
}

// isScopeDate accepts the YYYYMMDD form used in credential scopes
func isScopeDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// v4StringToSign is a REST string-to-sign as sent by the uploader:
//
//	AWS4-HMAC-SHA256
//	<amz-date>
//	<date>/<region>/s3/aws4_request
//	<canonical request, possibly spanning many lines>
type v4StringToSign struct {
	Algorithm        string
	RequestDate      string
	Scope            CredentialScope
	CanonicalRequest string
}

func parseV4StringToSign(raw string) (v4StringToSign, error) {
	parts := strings.SplitN(raw, "\n", 4)
	if len(parts) != 4 {
		return v4StringToSign{}, fmt.Errorf("%w: string to sign has %d lines, need at least 4", ErrMalformedCredentialScope, len(parts))
	}

	algorithm := strings.TrimSpace(parts[0])
	requestDate := strings.TrimSpace(parts[1])
	if algorithm == "" || requestDate == "" {
		return v4StringToSign{}, fmt.Errorf("%w: missing algorithm or request date", ErrMalformedCredentialScope)
	}

	scope, err := ParseCredentialScope(parts[2])
	if err != nil {
		return v4StringToSign{}, err
	}

	if parts[3] == "" {
		return v4StringToSign{}, fmt.Errorf("%w: empty canonical request", ErrMalformedCredentialScope)
	}

	return v4StringToSign{
		Algorithm:        algorithm,
		RequestDate:      requestDate,
		Scope:            scope,
		CanonicalRequest: parts[3],
	}, nil
}

// hashed returns the string to sign with the canonical request replaced by
// its SHA-256 hex digest
func (s v4StringToSign) hashed() string {
	return strings.Join([]string{
		s.Algorithm,
		s.RequestDate,
		s.Scope.String(),
		HashCanonicalRequest(s.CanonicalRequest),
	}, "\n")
}
