// Package auth provides JWT token issuance and validation plus password
// verification for the management API. The API has a single admin principal;
// tokens carry "admin" as their subject.
package auth
