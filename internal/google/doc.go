// Package google implements the credential lifecycle of the dashboard.
//
// It provides the Credential record, the CredentialStore abstraction with a
// file-backed and an in-memory implementation, and the Flow controller that
// drives the OAuth 2.0 authorization code flow: building the consent URL,
// exchanging the code at the token endpoint, persisting the resulting
// credential and resolving the signed-in user's email address.
//
// Only one credential exists per process. There is no refresh logic; an
// expired access token surfaces as an error from the provider API that
// uses it.
package google
