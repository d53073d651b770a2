// Package service contains the application services that coordinate feed
// refreshes, digest generation, and translator validation. Services submit
// long-running work to the task manager and coordinate between the stores,
// the fetcher, and the translation provider.
package service
