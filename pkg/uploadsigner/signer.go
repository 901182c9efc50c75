package uploadsigner

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
)

// SigningMode tells which kind of document was signed
type SigningMode string

const (
	ModePolicy SigningMode = "policy"
	ModeRest   SigningMode = "rest"
)

// SigningResult is the response to a signing request. Exactly one of
// Signature or Invalid is set.
type SigningResult struct {
	Policy    string `json:"policy,omitempty"`
	Signature string `json:"signature,omitempty"`
	Invalid   bool   `json:"invalid,omitempty"`

	Mode    SigningMode    `json:"-"`
	Version SigningVersion `json:"-"`
}

func invalidResult(mode SigningMode, version SigningVersion) *SigningResult {
	return &SigningResult{Invalid: true, Mode: mode, Version: version}
}

// Signer validates upload policies and REST strings-to-sign and signs them
// with the client secret. A Signer is immutable and safe for concurrent use.
type Signer struct {
	clientSecret   []byte
	expectedBucket string
	expectedHost   string
	maxSize        *int64
	logger         *slog.Logger
}

// NewSigner creates a new Signer with the given options
func NewSigner(opts ...SignerOption) *Signer {
	s := &Signer{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Sign handles a raw signing request body. A body with a "headers" field is a
// REST signing request; anything else is a policy document. Version 4 is used
// when v4 is true or the body carries a top-level "v4" field.
func (s *Signer) Sign(body []byte, v4 bool) (*SigningResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrMalformedInput)
	}

	version := SigningV2
	if _, ok := fields["v4"]; v4 || ok {
		version = SigningV4
	}

	if raw, ok := fields["headers"]; ok {
		var headers string
		if err := json.Unmarshal(raw, &headers); err != nil {
			return nil, fmt.Errorf("%w: headers must be a string", ErrMalformedInput)
		}
		return s.SignRest(headers, version)
	}
	return s.SignPolicy(body, version)
}

// SignPolicy validates a policy document and signs its base64 encoding.
// The document is encoded exactly as received.
func (s *Signer) SignPolicy(policyJSON []byte, version SigningVersion) (*SigningResult, error) {
	if len(s.clientSecret) == 0 {
		return nil, ErrNoClientSecret
	}

	policy, err := DecodePolicy(policyJSON)
	if err != nil {
		return nil, err
	}

	if !IsPolicyValid(policy, s.expectedBucket, s.maxSize) {
		bucket, _ := policy.Bucket()
		s.logger.Warn("Rejected upload policy", "bucket", bucket, "version", version.String())
		return invalidResult(ModePolicy, version), nil
	}

	encoded := base64.StdEncoding.EncodeToString(policyJSON)

	var signature string
	if version == SigningV4 {
		credential, ok := policy.Credential()
		if !ok {
			return nil, fmt.Errorf("%w: policy has no %s condition", ErrMalformedCredentialScope, conditionCredential)
		}
		scope, err := ParseCredential(credential)
		if err != nil {
			return nil, err
		}
		signature = SignV4(scope.SigningKey(s.clientSecret), encoded)
	} else {
		signature = SignLegacy(encoded, s.clientSecret)
	}

	return &SigningResult{
		Policy:    encoded,
		Signature: signature,
		Mode:      ModePolicy,
		Version:   version,
	}, nil
}

// SignRest validates a REST string-to-sign and signs it. For version 4 the
// canonical request is replaced by its SHA-256 hash before signing.
func (s *Signer) SignRest(headers string, version SigningVersion) (*SigningResult, error) {
	if len(s.clientSecret) == 0 {
		return nil, ErrNoClientSecret
	}

	if !IsValidRestRequest(headers, version, s.expectedBucket, s.expectedHost) {
		s.logger.Warn("Rejected REST signing request", "version", version.String())
		return invalidResult(ModeRest, version), nil
	}

	var signature string
	if version == SigningV4 {
		sts, err := parseV4StringToSign(headers)
		if err != nil {
			return nil, err
		}
		signature = SignV4(sts.Scope.SigningKey(s.clientSecret), sts.hashed())
	} else {
		signature = SignLegacy(headers, s.clientSecret)
	}

	return &SigningResult{
		Signature: signature,
		Mode:      ModeRest,
		Version:   version,
	}, nil
}
