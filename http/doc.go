// Package http provides HTTP clients, handlers and a signing proxy for
// Oracle Cloud Infrastructure request signatures.
//
// Client Components:
//   - SigningTransport: RoundTripper that signs outgoing requests
//   - NewClient: Creates an http.Client with automatic request signing
//
// Server Components:
//   - Verifier: Verifies incoming request signatures
//   - Wrap: Runs verification in front of an existing handler
//   - Proxy: Accepts a JSON description of a call, signs it, forwards it
//     and optionally reconstructs OCR text from the response
//
// # Basic Client Usage
//
//	creds, err := ocisig.NewCredentials(keyID, pemString)
//	if err != nil {
//		return err
//	}
//
//	// All requests will be automatically signed
//	client := http.NewClient(creds)
//	resp, err := client.Get("https://objectstorage.ap-singapore-1.oraclecloud.com/n/")
//
// # Basic Server Usage
//
//	verifier := http.NewVerifier(&http.StaticKeyResolver{Key: publicKey})
//	handler := http.Wrap(myHandler, http.WithVerifier(verifier))
//
// # Proxy
//
//	proxy := http.NewProxy(creds, http.WithLogger(logger))
//	mux.Handle("/api/sign-oci", proxy)
//
// A proxy request looks like
//
//	{"method": "POST", "path": "/20221109/actions/analyzeDocument",
//	 "service": "document", "body": {...}, "extractText": true}
//
// and is answered with {"status", "statusText", "data", "rawText"}.
package http
