// Package translation defines the interface for translating and summarizing
// feed content using external language model services. This interface serves
// as a boundary between the application core and provider-specific clients,
// following the hexagonal architecture pattern.
package translation
