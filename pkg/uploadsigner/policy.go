package uploadsigner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	conditionBucket             = "bucket"
	conditionCredential         = "x-amz-credential"
	conditionContentLengthRange = "content-length-range"
)

// Condition is one entry of an upload policy's conditions list
type Condition interface {
	isCondition()
}

// BucketCondition is the {"bucket": "<name>"} condition
type BucketCondition struct {
	Bucket string
}

// ContentLengthRangeCondition is the ["content-length-range", min, max] condition
type ContentLengthRangeCondition struct {
	Min int64
	Max int64
}

// CredentialCondition is the {"x-amz-credential": "<key>/<scope>"} condition
// present in SigV4 policies
type CredentialCondition struct {
	Credential string
}

// OtherCondition holds any condition the validator does not inspect
type OtherCondition struct {
	Raw json.RawMessage
}

func (BucketCondition) isCondition()             {}
func (ContentLengthRangeCondition) isCondition() {}
func (CredentialCondition) isCondition()         {}
func (OtherCondition) isCondition()              {}

// UploadPolicy is a decoded POST policy document
type UploadPolicy struct {
	Expiration string
	Conditions []Condition
}

// DecodePolicy decodes a policy document, tagging every condition in one pass
func DecodePolicy(data []byte) (*UploadPolicy, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: policy: %v", ErrMalformedInput, err)
	}

	policy := &UploadPolicy{}
	if raw, ok := doc["expiration"]; ok {
		// Non-string expirations are left to the storage service to reject
		_ = json.Unmarshal(raw, &policy.Expiration)
	}

	raw, ok := doc["conditions"]
	if !ok || isJSONNull(raw) {
		return policy, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: policy conditions: %v", ErrMalformedInput, err)
	}

	policy.Conditions = make([]Condition, 0, len(entries))
	for _, entry := range entries {
		policy.Conditions = append(policy.Conditions, decodeCondition(entry))
	}
	return policy, nil
}

func decodeCondition(raw json.RawMessage) Condition {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return OtherCondition{Raw: raw}
	}

	switch trimmed[0] {
	case '{':
		var m map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return OtherCondition{Raw: raw}
		}
		if v, ok := m[conditionBucket]; ok {
			var bucket string
			if json.Unmarshal(v, &bucket) == nil {
				return BucketCondition{Bucket: bucket}
			}
		}
		if v, ok := m[conditionCredential]; ok {
			var credential string
			if json.Unmarshal(v, &credential) == nil {
				return CredentialCondition{Credential: credential}
			}
		}
	case '[':
		var tuple []json.RawMessage
		if err := json.Unmarshal(trimmed, &tuple); err != nil || len(tuple) < 3 {
			return OtherCondition{Raw: raw}
		}
		var field string
		if json.Unmarshal(tuple[0], &field) != nil || field != conditionContentLengthRange {
			return OtherCondition{Raw: raw}
		}
		lo, okLo := parseSize(tuple[1])
		hi, okHi := parseSize(tuple[2])
		if okLo && okHi {
			return ContentLengthRangeCondition{Min: lo, Max: hi}
		}
	}
	return OtherCondition{Raw: raw}
}

// parseSize accepts a JSON integer or a JSON string holding a base-10 integer.
// Fractions and exponents are rejected.
func parseSize(raw json.RawMessage) (int64, bool) {
	s := string(bytes.TrimSpace(raw))
	if len(s) > 0 && s[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Bucket returns the value of the last bucket condition
func (p *UploadPolicy) Bucket() (string, bool) {
	var bucket string
	found := false
	for _, c := range p.Conditions {
		if bc, ok := c.(BucketCondition); ok {
			bucket, found = bc.Bucket, true
		}
	}
	return bucket, found
}

// MaxSize returns the maximum of the last content-length-range condition
func (p *UploadPolicy) MaxSize() (int64, bool) {
	var size int64
	found := false
	for _, c := range p.Conditions {
		if rc, ok := c.(ContentLengthRangeCondition); ok {
			size, found = rc.Max, true
		}
	}
	return size, found
}

// Credential returns the value of the last x-amz-credential condition
func (p *UploadPolicy) Credential() (string, bool) {
	var credential string
	found := false
	for _, c := range p.Conditions {
		if cc, ok := c.(CredentialCondition); ok {
			credential, found = cc.Credential, true
		}
	}
	return credential, found
}

// IsPolicyValid reports whether the policy targets expectedBucket and, when
// expectedMaxSize is set, declares exactly that maximum content length.
// A missing condition never validates.
func IsPolicyValid(policy *UploadPolicy, expectedBucket string, expectedMaxSize *int64) bool {
	if policy == nil {
		return false
	}

	var (
		bucket               string
		maxSize              int64
		hasBucket, hasMaxLen bool
	)
	for _, c := range policy.Conditions {
		switch c := c.(type) {
		case BucketCondition:
			bucket, hasBucket = c.Bucket, true
		case ContentLengthRangeCondition:
			maxSize, hasMaxLen = c.Max, true
		}
	}

	if !hasBucket || bucket != expectedBucket {
		return false
	}
	if expectedMaxSize == nil {
		return true
	}
	return hasMaxLen && maxSize == *expectedMaxSize
}
