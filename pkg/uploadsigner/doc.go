// Package uploadsigner signs upload authorizations for browsers that upload
// straight to S3-compatible storage.
//
// The browser never holds storage credentials. It sends the policy document
// (simple uploads) or the REST string-to-sign (chunked and multipart uploads)
// to the backend, which checks that the request targets the expected bucket,
// host and maximum size before signing it with the client secret.
//
// # Signing
//
//	signer := uploadsigner.NewSigner(
//	    uploadsigner.WithClientSecret(secret),
//	    uploadsigner.WithExpectedBucket("uploads"),
//	    uploadsigner.WithExpectedHost("uploads.s3.amazonaws.com"),
//	    uploadsigner.WithPolicyMaxSize(5<<20),
//	)
//	result, err := signer.Sign(body, r.URL.Query().Has("v4"))
//
// Two schemes are supported:
//
//   - v2: base64(HMAC-SHA1(secret, stringToSign))
//   - v4: hex(HMAC-SHA256(signingKey, stringToSign)), where signingKey is
//     derived from the credential scope date and region
//
// A request that fails validation yields SigningResult{Invalid: true} and is
// never signed.
//
// # Verifying uploads
//
// Policy conditions are not enforced on every upload path, so the stored
// object size is checked again once the uploader reports success:
//
//	verifier := uploadsigner.NewVerifier(store, uploadsigner.WithMaxSize(5<<20))
//	result, err := verifier.Verify(ctx, notification)
//	if errors.Is(err, uploadsigner.ErrFileTooBig) {
//	    // object was deleted; tell the uploader not to retry
//	}
package uploadsigner
