package uploadsigner

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

const (
	// ServiceS3 is the service segment of an S3 credential scope
	ServiceS3 = "s3"

	// ScopeTerminator closes every SigV4 credential scope
	ScopeTerminator = "aws4_request"

	v4KeyPrefix = "AWS4"
)

func hmacSHA256(key []byte, data string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}

// SignLegacy computes the signature-version-2 signature: base64 of the raw
// HMAC-SHA1 digest of stringToSign keyed by secret.
func SignLegacy(stringToSign string, secret []byte) string {
	h := hmac.New(sha1.New, secret)
	h.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// DeriveV4SigningKey runs the SigV4 key derivation chain. Every step keys the
// next HMAC with the raw bytes of the previous one.
func DeriveV4SigningKey(secret []byte, date, region, service string) []byte {
	seed := make([]byte, 0, len(v4KeyPrefix)+len(secret))
	seed = append(seed, v4KeyPrefix...)
	seed = append(seed, secret...)

	dateKey := hmacSHA256(seed, date)
	dateRegionKey := hmacSHA256(dateKey, region)
	dateRegionServiceKey := hmacSHA256(dateRegionKey, service)
	return hmacSHA256(dateRegionServiceKey, ScopeTerminator)
}

// SignV4 returns the lowercase hex HMAC-SHA256 of stringToSign.
// Unlike SignLegacy the result is hex, never base64.
func SignV4(signingKey []byte, stringToSign string) string {
	return hex.EncodeToString(hmacSHA256(signingKey, stringToSign))
}

// HashCanonicalRequest returns the lowercase hex SHA-256 of a canonical request
func HashCanonicalRequest(canonicalRequest string) string {
	sum := sha256.Sum256([]byte(canonicalRequest))
	return hex.EncodeToString(sum[:])
}
